// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package backend 从服务端接口读取 session 的下注记录
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/33cn/betaudit/common/log"
	"github.com/33cn/betaudit/types"
	"github.com/kevinms/leakybucket-go"
	"github.com/pkg/errors"
)

var blog = log.New("module", "backend")

// maxBodySize 单个 session 的下注记录上限
const maxBodySize = 64 << 20

// Client GET {base}/api/sessions/{id}/bets
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *leakybucket.Collector
}

// NewClient 按配置创建, 请求按 host 限速
func NewClient(cfg *types.Backend) (*Client, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("backend url not configured")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "parse backend url %s", cfg.URL)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.Errorf("unsupported backend scheme %q", base.Scheme)
	}
	return &Client{
		base:    base,
		http:    &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
		limiter: leakybucket.NewCollector(cfg.Rate, cfg.Burst, true),
	}, nil
}

// BetsURL 记录接口地址
func (c *Client) BetsURL(sessionID uint64) string {
	u := *c.base
	u.Path = fmt.Sprintf("%s/api/sessions/%d/bets", u.Path, sessionID)
	return u.String()
}

// Raw 不做解析的原始记录, 新的在前
func (c *Client) Raw(ctx context.Context, sessionID uint64) ([]types.RawBetRecord, error) {
	host := c.base.Host
	if c.limiter.Remaining(host) <= 0 {
		return nil, errors.Wrapf(types.ErrDataUnavailable, "rate limited for %s", host)
	}
	c.limiter.Add(host, 1)

	target := c.BetsURL(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrapf(types.ErrDataUnavailable, "new request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		blog.Error("Bets", "url", target, "err", err)
		return nil, errors.Wrapf(types.ErrDataUnavailable, "get %s: %v", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(types.ErrDataUnavailable, "get %s: status %s", target, resp.Status)
	}

	var raws []types.RawBetRecord
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize))
	dec.UseNumber()
	if err := dec.Decode(&raws); err != nil {
		return nil, errors.Wrapf(types.ErrDataUnavailable, "decode %s: %v", target, err)
	}
	blog.Debug("Bets", "session", sessionID, "records", len(raws))
	return raws, nil
}

// Bets 读取并校验记录
func (c *Client) Bets(ctx context.Context, sessionID uint64) ([]*types.BetRecord, error) {
	raws, err := c.Raw(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return types.ParseBetRecords(raws)
}
