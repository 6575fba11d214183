// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"io/ioutil"
	"math/big"

	tml "github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// 默认值
const (
	defaultCacheSize      = 1024
	defaultBackendRate    = 5
	defaultBackendBurst   = 10
	defaultBackendTimeout = 30
)

func initCfgString(cfgstring string) (*Config, error) {
	var cfg Config
	if _, err := tml.Decode(cfgstring, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InitCfg 从文件加载配置, path 为空时使用默认配置
func InitCfg(path string) (*Config, error) {
	if path == "" {
		return InitCfgString(DefaultConfig)
	}
	cfgstring, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return InitCfgString(cfgstring)
}

// InitCfgString 解析配置字符串并填充默认值
func InitCfgString(cfgstring string) (*Config, error) {
	cfg, err := initCfgString(cfgstring)
	if err != nil {
		return nil, errors.Wrap(err, "InitCfgString")
	}
	fillDefaultValue(cfg)
	return cfg, nil
}

// ReadFile 读取配置文件
func ReadFile(path string) (string, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read config %s", path)
	}
	return string(data), nil
}

func fillDefaultValue(cfg *Config) {
	if cfg.Title == "" {
		cfg.Title = "betaudit"
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = 1
	}
	if cfg.Log == nil {
		cfg.Log = &Log{}
	}
	if cfg.Ledger == nil {
		cfg.Ledger = &Ledger{}
	}
	if cfg.Ledger.CacheSize <= 0 {
		cfg.Ledger.CacheSize = defaultCacheSize
	}
	if cfg.Backend == nil {
		cfg.Backend = &Backend{}
	}
	if cfg.Backend.Rate <= 0 {
		cfg.Backend.Rate = defaultBackendRate
	}
	if cfg.Backend.Burst <= 0 {
		cfg.Backend.Burst = defaultBackendBurst
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = defaultBackendTimeout
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &Metrics{}
	}
}

// GetChainID chain id as big.Int
func (c *Config) GetChainID() *big.Int {
	return big.NewInt(c.ChainID)
}

// Eras 把配置转换成 era 列表
func (c *Config) Eras() (*Eras, error) {
	eras := make([]*Era, 0, len(c.Era))
	for _, ec := range c.Era {
		if !common.IsHexAddress(ec.Contract) || !common.IsHexAddress(ec.Server) {
			return nil, errors.Wrapf(ErrEraAddress, "era %s", ec.Name)
		}
		max := ec.MaxSessionID
		if max == 0 {
			max = MaxSessionID
		}
		eras = append(eras, &Era{
			Name:         ec.Name,
			MinSessionID: ec.MinSessionID,
			MaxSessionID: max,
			Contract:     common.HexToAddress(ec.Contract),
			Server:       common.HexToAddress(ec.Server),
			SigVersion:   ec.SigVersion,
		})
	}
	return NewEras(eras)
}
