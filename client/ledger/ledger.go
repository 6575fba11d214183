// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ledger 从链上事件读取 session 的创建和结束信息
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/33cn/betaudit/common/log"
	"github.com/33cn/betaudit/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	etypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

var llog = log.New("module", "ledger")

// 合约事件名
const (
	EventCreated = "LogGameCreated"
	EventEnded   = "LogGameEnded"
)

// ChannelABI 合约中审计需要的两个事件
const ChannelABI = `[
	{"anonymous":false,"type":"event","name":"LogGameCreated","inputs":[
		{"indexed":true,"name":"user","type":"address"},
		{"indexed":true,"name":"gameId","type":"uint256"},
		{"indexed":true,"name":"serverEndHash","type":"bytes32"},
		{"indexed":false,"name":"userEndHash","type":"bytes32"},
		{"indexed":false,"name":"stake","type":"uint128"}]},
	{"anonymous":false,"type":"event","name":"LogGameEnded","inputs":[
		{"indexed":true,"name":"user","type":"address"},
		{"indexed":true,"name":"gameId","type":"uint256"},
		{"indexed":false,"name":"roundId","type":"uint32"},
		{"indexed":false,"name":"balance","type":"int256"},
		{"indexed":false,"name":"reason","type":"uint8"}]}
]`

// ReasonRegularEnded 双方签名正常结束, 其他值都是超时或者强制结束
const ReasonRegularEnded uint8 = 0

type createdData struct {
	UserEndHash [32]byte
	Stake       *big.Int
}

type endedData struct {
	RoundID uint32 `abi:"roundId"`
	Balance *big.Int
	Reason  uint8
}

// Reader session 结束后链上数据不会再变, 结果可以缓存
type Reader struct {
	filterer  ethereum.LogFilterer
	fromBlock *big.Int
	abi       abi.ABI
	cache     *lru.Cache
}

// NewReader filterer 一般是 *ethclient.Client
func NewReader(filterer ethereum.LogFilterer, fromBlock int64, cacheSize int) (*Reader, error) {
	parsed, err := abi.JSON(strings.NewReader(ChannelABI))
	if err != nil {
		return nil, errors.Wrap(err, "parse abi")
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "new cache")
	}
	return &Reader{
		filterer:  filterer,
		fromBlock: big.NewInt(fromBlock),
		abi:       parsed,
		cache:     cache,
	}, nil
}

// Dial 连接节点 rpc
func Dial(ctx context.Context, cfg *types.Ledger) (*Reader, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPC)
	if err != nil {
		return nil, errors.Wrapf(types.ErrDataUnavailable, "dial %s: %v", cfg.RPC, err)
	}
	return NewReader(client, cfg.FromBlock, cfg.CacheSize)
}

func cacheKey(sessionID uint64, contract common.Address) string {
	return fmt.Sprintf("%s-%d", contract.Hex(), sessionID)
}

// Endpoints 创建和结束事件各自必须恰好有一条
func (r *Reader) Endpoints(ctx context.Context, sessionID uint64, contract common.Address) (*types.SessionEndpoints, error) {
	key := cacheKey(sessionID, contract)
	if v, ok := r.cache.Get(key); ok {
		ep := *v.(*types.SessionEndpoints)
		return &ep, nil
	}

	created, err := r.uniqueLog(ctx, EventCreated, sessionID, contract)
	if err != nil {
		return nil, err
	}
	ended, err := r.uniqueLog(ctx, EventEnded, sessionID, contract)
	if err != nil {
		return nil, err
	}
	ep, err := r.decode(sessionID, created, ended)
	if err != nil {
		return nil, err
	}
	cp := *ep
	r.cache.Add(key, &cp)
	llog.Debug("Endpoints", "session", sessionID, "contract", contract.Hex(), "rounds", ep.FinalRoundCount,
		"normal", ep.EndedNormally, "block", ended.BlockNumber)
	return ep, nil
}

func (r *Reader) uniqueLog(ctx context.Context, name string, sessionID uint64, contract common.Address) (*etypes.Log, error) {
	event := r.abi.Events[name]
	query := ethereum.FilterQuery{
		FromBlock: r.fromBlock,
		Addresses: []common.Address{contract},
		Topics: [][]common.Hash{
			{event.ID},
			nil,
			{common.BigToHash(new(big.Int).SetUint64(sessionID))},
		},
	}
	logs, err := r.filterer.FilterLogs(ctx, query)
	if err != nil {
		llog.Error("FilterLogs", "event", name, "session", sessionID, "err", err)
		return nil, errors.Wrapf(types.ErrDataUnavailable, "FilterLogs %s: %v", name, err)
	}
	var found []etypes.Log
	for _, l := range logs {
		if !l.Removed {
			found = append(found, l)
		}
	}
	if len(found) != 1 {
		return nil, errors.Wrapf(types.ErrLedgerIntegrity, "session %d: %d %s events", sessionID, len(found), name)
	}
	return &found[0], nil
}

func (r *Reader) decode(sessionID uint64, created, ended *etypes.Log) (*types.SessionEndpoints, error) {
	if len(created.Topics) != 4 {
		return nil, errors.Wrapf(types.ErrLedgerIntegrity, "%s has %d topics", EventCreated, len(created.Topics))
	}
	if len(ended.Topics) != 3 {
		return nil, errors.Wrapf(types.ErrLedgerIntegrity, "%s has %d topics", EventEnded, len(ended.Topics))
	}
	var c createdData
	if err := r.abi.UnpackIntoInterface(&c, EventCreated, created.Data); err != nil {
		return nil, errors.Wrapf(types.ErrLedgerIntegrity, "unpack %s: %v", EventCreated, err)
	}
	var e endedData
	if err := r.abi.UnpackIntoInterface(&e, EventEnded, ended.Data); err != nil {
		return nil, errors.Wrapf(types.ErrLedgerIntegrity, "unpack %s: %v", EventEnded, err)
	}
	user := common.BytesToAddress(created.Topics[1].Bytes())
	if endUser := common.BytesToAddress(ended.Topics[1].Bytes()); endUser != user {
		return nil, errors.Wrapf(types.ErrLedgerIntegrity, "created by %s, ended by %s", user.Hex(), endUser.Hex())
	}
	return &types.SessionEndpoints{
		SessionID:       sessionID,
		FinalRoundCount: e.RoundID,
		SettledBalance:  e.Balance,
		ServerChainHead: created.Topics[3],
		UserChainHead:   common.Hash(c.UserEndHash),
		EndedNormally:   e.Reason == ReasonRegularEnded,
		User:            user,
	}, nil
}
