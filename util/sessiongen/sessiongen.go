// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sessiongen 生成完整签名的测试 session, 用于测试和演示
package sessiongen

import (
	"crypto/ecdsa"
	"math/big"
	"math/rand"

	bcommon "github.com/33cn/betaudit/common"
	"github.com/33cn/betaudit/common/crypto"
	"github.com/33cn/betaudit/common/game"
	"github.com/33cn/betaudit/common/log"
	"github.com/33cn/betaudit/system/game/choose"
	"github.com/33cn/betaudit/system/game/dice"
	"github.com/33cn/betaudit/system/game/flip"
	"github.com/33cn/betaudit/types"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	//初始化
	_ "github.com/33cn/betaudit/system/crypto/init"
)

var glog = log.New("module", "sessiongen")

// maxGenValue 随机下注的上限 (gwei)
const maxGenValue = 1000000

// BetFunc 决定第 round 局下什么注
type BetFunc func(round int, rnd *rand.Rand) (gameType uint8, num uint32, value int64)

// Options 生成参数, 零值字段使用默认值
type Options struct {
	SessionID  uint64
	Rounds     int
	ChainID    *big.Int
	Contract   common.Address
	SigVersion int
	ServerKey  *ecdsa.PrivateKey
	UserKey    *ecdsa.PrivateKey
	// Forced 超时或者强制结束, 最后没有结算轮
	Forced bool
	Engine *game.Engine
	Bet    BetFunc
	// Seed 随机下注和哈希链末端种子
	Seed int64
}

// Session 生成结果, Records 和后端接口一样新的在前
type Session struct {
	Endpoints *types.SessionEndpoints
	Records   []*types.BetRecord
	ServerKey *ecdsa.PrivateKey
	UserKey   *ecdsa.PrivateKey
	// FinalBalance 重放得到的最终余额 (gwei)
	FinalBalance int64
}

// NewKey 生成 secp256k1 私钥
func NewKey() (*ecdsa.PrivateKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "NewKey")
	}
	return ethcrypto.ToECDSA(priv.Serialize())
}

// RandomBet 在内置的四种游戏中随机选择
func RandomBet(round int, rnd *rand.Rand) (uint8, uint32, int64) {
	value := 1 + rnd.Int63n(maxGenValue)
	switch rnd.Intn(4) {
	case 0:
		return dice.TypeLower, uint32(1 + rnd.Intn(98)), value
	case 1:
		return dice.TypeHigher, uint32(1 + rnd.Intn(98)), value
	case 2:
		return choose.TypeChooseFrom12, uint32(1 + rnd.Intn(4094)), value
	default:
		return flip.TypeFlipACoin, uint32(rnd.Intn(2)), value
	}
}

func (opts *Options) fill() error {
	if opts.Rounds < 0 {
		return errors.Errorf("negative rounds %d", opts.Rounds)
	}
	if opts.ChainID == nil {
		opts.ChainID = big.NewInt(1)
	}
	if opts.SigVersion == 0 {
		opts.SigVersion = types.SigVersionEIP712
	}
	if opts.Engine == nil {
		opts.Engine = game.DefaultEngine()
	}
	if opts.Bet == nil {
		opts.Bet = RandomBet
	}
	var err error
	if opts.ServerKey == nil {
		if opts.ServerKey, err = NewKey(); err != nil {
			return err
		}
	}
	if opts.UserKey == nil {
		if opts.UserKey, err = NewKey(); err != nil {
			return err
		}
	}
	return nil
}

func randomHash(rnd *rand.Rand) (h common.Hash) {
	rnd.Read(h[:])
	return h
}

// Generate 生成一个合法的 session
func Generate(opts Options) (*Session, error) {
	if err := opts.fill(); err != nil {
		return nil, err
	}
	rnd := rand.New(rand.NewSource(opts.Seed))
	n := opts.Rounds
	serverChain := bcommon.HashChain(randomHash(rnd), n)
	userChain := bcommon.HashChain(randomHash(rnd), n)
	user := ethcrypto.PubkeyToAddress(opts.UserKey.PublicKey)

	records := make([]*types.BetRecord, n)
	balance := int64(0)
	for i := 1; i <= n; i++ {
		gameType, num, value := opts.Bet(i, rnd)
		rec := &types.BetRecord{
			RoundID:    uint32(i),
			GameType:   gameType,
			Num:        num,
			Value:      value,
			Balance:    balance,
			ServerHash: serverChain[i-1],
			UserHash:   userChain[i-1],
			ServerSeed: serverChain[i],
			UserSeed:   userChain[i],
			SessionID:  opts.SessionID,
			User:       user,
		}
		result, err := opts.Engine.ResultNumber(gameType, rec.ServerSeed, rec.UserSeed, num)
		if err != nil {
			return nil, errors.Wrapf(err, "round %d", i)
		}
		rec.ResultNum = result
		if err := Sign(rec, opts.ChainID, opts.Contract, opts.SigVersion, opts.ServerKey, opts.UserKey); err != nil {
			return nil, errors.Wrapf(err, "round %d", i)
		}
		balance, err = opts.Engine.NewBalance(gameType, num, value, rec.ServerSeed, rec.UserSeed, balance)
		if err != nil {
			return nil, errors.Wrapf(err, "round %d", i)
		}
		records[n-i] = rec
	}

	final := uint32(n)
	if !opts.Forced {
		final++
	}
	glog.Debug("Generate", "session", opts.SessionID, "rounds", n, "balance", balance, "forced", opts.Forced)
	return &Session{
		Endpoints: &types.SessionEndpoints{
			SessionID:       opts.SessionID,
			FinalRoundCount: final,
			SettledBalance:  types.GweiToWei(balance),
			ServerChainHead: serverChain[0],
			UserChainHead:   userChain[0],
			EndedNormally:   !opts.Forced,
			User:            user,
		},
		Records:      records,
		ServerKey:    opts.ServerKey,
		UserKey:      opts.UserKey,
		FinalBalance: balance,
	}, nil
}

// Sign 双方对记录签名, 修改了记录内容后可以用来重新签名
func Sign(rec *types.BetRecord, chainID *big.Int, contract common.Address, version int, server, user *ecdsa.PrivateKey) error {
	var err error
	bet := rec.Bet()
	if rec.ServerSig, err = crypto.Sign(bet, chainID, contract, version, server); err != nil {
		return err
	}
	rec.UserSig, err = crypto.Sign(bet, chainID, contract, version, user)
	return err
}

// Ascending 按 round id 升序的拷贝
func (s *Session) Ascending() []*types.BetRecord {
	out := make([]*types.BetRecord, len(s.Records))
	for i, rec := range s.Records {
		out[len(out)-1-i] = rec.Clone()
	}
	return out
}

// CloneRecords 深拷贝, 保持原顺序
func (s *Session) CloneRecords() []*types.BetRecord {
	out := make([]*types.BetRecord, len(s.Records))
	for i, rec := range s.Records {
		out[i] = rec.Clone()
	}
	return out
}

// Dump 离线审计文件
func (s *Session) Dump() *types.SessionDump {
	dump := &types.SessionDump{Endpoints: s.Endpoints.ToRaw()}
	dump.Bets = make([]types.RawBetRecord, len(s.Records))
	for i, rec := range s.Records {
		dump.Bets[i] = rec.ToRaw()
	}
	return dump
}
