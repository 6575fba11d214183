// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package game 游戏规则接口, 随机数以及余额计算
package game

import (
	"fmt"
	"math/big"
	"sort"
	"sync"

	bcommon "github.com/33cn/betaudit/common"
	"github.com/33cn/betaudit/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// 抽水比例 HouseEdge / HouseEdgeDivisor, 只从净赢额中扣
const (
	HouseEdge        int64 = 150
	HouseEdgeDivisor int64 = 10000
)

// Game 一种游戏的规则
type Game interface {
	Type() uint8
	Name() string
	// Range 随机数取值范围 [0, Range)
	Range() uint64
	ValidNum(num uint32) bool
	Won(result uint64, num uint32) bool
	// TotalWon 赢了以后拿回的总额, 包含本金
	TotalWon(value int64, num uint32) int64
}

var (
	games     = make(map[uint8]Game)
	gameMutex sync.Mutex
)

//Register 注册游戏
func Register(g Game) {
	gameMutex.Lock()
	defer gameMutex.Unlock()
	if g == nil {
		panic("game: Register game is nil")
	}
	if _, dup := games[g.Type()]; dup {
		panic(fmt.Sprintf("game: Register called twice for type %d", g.Type()))
	}
	games[g.Type()] = g
}

//Registered 按类型排序的已注册游戏
func Registered() []Game {
	gameMutex.Lock()
	defer gameMutex.Unlock()
	list := make([]Game, 0, len(games))
	for _, g := range games {
		list = append(list, g)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Type() < list[j].Type() })
	return list
}

// Engine 根据种子计算结果和余额, 只读, 可以并发使用
type Engine struct {
	games     map[uint8]Game
	houseEdge int64
}

// NewEngine 用指定的游戏创建
func NewEngine(list ...Game) *Engine {
	e := &Engine{games: make(map[uint8]Game, len(list)), houseEdge: HouseEdge}
	for _, g := range list {
		e.games[g.Type()] = g
	}
	return e
}

// DefaultEngine 使用所有已注册的游戏
func DefaultEngine() *Engine {
	return NewEngine(Registered()...)
}

// WithHouseEdge 返回使用另一个抽水比例的拷贝
func (e *Engine) WithHouseEdge(edge int64) *Engine {
	cp := &Engine{games: e.games, houseEdge: edge}
	return cp
}

// Game 按类型查找, 同时检查 num
func (e *Engine) Game(gameType uint8, num uint32) (Game, error) {
	g, ok := e.games[gameType]
	if !ok {
		return nil, errors.Wrapf(types.ErrInvalidRecord, "unknown game type %d", gameType)
	}
	if !g.ValidNum(num) {
		return nil, errors.Wrapf(types.ErrInvalidRecord, "invalid num %d for %s", num, g.Name())
	}
	return g, nil
}

// RandomNumber uint256(keccak256(serverSeed || userSeed))
func RandomNumber(serverSeed, userSeed common.Hash) *big.Int {
	return new(big.Int).SetBytes(bcommon.ShaKeccak256(serverSeed[:], userSeed[:]))
}

func resultNumber(g Game, serverSeed, userSeed common.Hash) uint64 {
	rnd := RandomNumber(serverSeed, userSeed)
	return rnd.Mod(rnd, new(big.Int).SetUint64(g.Range())).Uint64()
}

// ResultNumber 本局的结果
func (e *Engine) ResultNumber(gameType uint8, serverSeed, userSeed common.Hash, num uint32) (uint64, error) {
	g, err := e.Game(gameType, num)
	if err != nil {
		return 0, err
	}
	return resultNumber(g, serverSeed, userSeed), nil
}

// Profit 赢了以后的净收益(扣除抽水)
func (e *Engine) Profit(g Game, value int64, num uint32) int64 {
	totalWon := g.TotalWon(value, num)
	return totalWon - value - (totalWon-value)*e.houseEdge/HouseEdgeDivisor
}

// NewBalance 计算本局结束后的余额
func (e *Engine) NewBalance(gameType uint8, num uint32, value int64, serverSeed, userSeed common.Hash, prior int64) (int64, error) {
	g, err := e.Game(gameType, num)
	if err != nil {
		return 0, err
	}
	if value <= 0 || value > types.MaxBetValue {
		return 0, errors.Wrapf(types.ErrInvalidRecord, "value %d out of range", value)
	}
	if prior < -types.MaxBalance || prior > types.MaxBalance {
		return 0, errors.Wrapf(types.ErrInvalidRecord, "balance %d out of range", prior)
	}
	var balance int64
	if g.Won(resultNumber(g, serverSeed, userSeed), num) {
		balance = prior + e.Profit(g, value, num)
	} else {
		balance = prior - value
	}
	if balance < -types.MaxBalance || balance > types.MaxBalance {
		return 0, errors.Wrapf(types.ErrInvalidRecord, "balance %d overflow", balance)
	}
	return balance, nil
}
