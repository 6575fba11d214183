// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package audit 复核一个已经结束的 session: 签名、哈希链、每局结果和余额
package audit

import (
	"math/big"
	"sort"

	"github.com/33cn/betaudit/common/crypto"
	"github.com/33cn/betaudit/common/game"
	"github.com/33cn/betaudit/common/log"
	"github.com/33cn/betaudit/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var alog = log.New("module", "audit")

// Verifier 无状态, 可以并发复核不同的 session
type Verifier struct {
	eras    *types.Eras
	chainID *big.Int
	engine  *game.Engine
}

// NewVerifier new
func NewVerifier(eras *types.Eras, chainID *big.Int, engine *game.Engine) *Verifier {
	return &Verifier{
		eras:    eras,
		chainID: new(big.Int).Set(chainID),
		engine:  engine,
	}
}

// Era 查找 session 所在的 era
func (v *Verifier) Era(sessionID uint64) (*types.Era, error) {
	return v.eras.Resolve(sessionID)
}

// Verify 返回复核通过的下注记录条数, records 按任意顺序给出, 不会被修改
func (v *Verifier) Verify(sessionID uint64, ep *types.SessionEndpoints, records []*types.BetRecord) (int, error) {
	era, err := v.eras.Resolve(sessionID)
	if err != nil {
		return 0, err
	}
	if ep == nil {
		return 0, errors.Wrap(types.ErrInvalidRecord, "missing session endpoints")
	}
	if ep.SessionID != sessionID {
		return 0, errors.Wrapf(types.ErrInvalidRecord, "endpoints belong to session %d, not %d", ep.SessionID, sessionID)
	}
	for i, rec := range records {
		if rec == nil {
			return 0, errors.Wrapf(types.ErrInvalidRecord, "record #%d is nil", i)
		}
		if rec.SessionID != sessionID {
			return 0, types.NewVerifyError(types.ErrInvalidRecord, rec.RoundID, types.SideNone,
				"record belongs to session %d", rec.SessionID)
		}
	}

	expected := ep.ExpectedRecords()
	if len(records) != expected {
		return 0, types.NewVerifyError(types.ErrCountMismatch, 0, types.SideNone,
			"final round count %d (normal end %v) needs %d records, got %d",
			ep.FinalRoundCount, ep.EndedNormally, expected, len(records))
	}
	if expected == 0 {
		alog.Debug("Verify empty session", "session", sessionID, "era", era.Name)
		return 0, nil
	}

	sorted := make([]*types.BetRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RoundID < sorted[j].RoundID })

	if err := ValidateHashChain(sorted, ep.ServerChainHead, ep.UserChainHead); err != nil {
		return 0, err
	}

	user := ep.User
	if user == (common.Address{}) {
		user = sorted[0].User
	}
	balance := int64(0)
	for i, rec := range sorted {
		if rec.RoundID != uint32(i+1) {
			return 0, types.NewVerifyError(types.ErrInvalidRecord, rec.RoundID, types.SideNone,
				"expected round %d", i+1)
		}
		if err := v.checkSignatures(era, user, rec); err != nil {
			return 0, err
		}
		if err := CheckCommitments(rec); err != nil {
			return 0, err
		}
		result, err := v.engine.ResultNumber(rec.GameType, rec.ServerSeed, rec.UserSeed, rec.Num)
		if err != nil {
			return 0, types.NewVerifyError(types.ErrInvalidRecord, rec.RoundID, types.SideNone, "%v", err)
		}
		if result != rec.ResultNum {
			return 0, types.NewVerifyError(types.ErrBadOutcome, rec.RoundID, types.SideNone,
				"declared result %d, seeds give %d", rec.ResultNum, result)
		}
		if rec.Balance != balance {
			return 0, types.NewVerifyError(types.ErrBalanceMismatch, rec.RoundID, types.SideNone,
				"declared balance %d, replayed %d", rec.Balance, balance)
		}
		balance, err = v.engine.NewBalance(rec.GameType, rec.Num, rec.Value, rec.ServerSeed, rec.UserSeed, balance)
		if err != nil {
			return 0, types.NewVerifyError(types.ErrInvalidRecord, rec.RoundID, types.SideNone, "%v", err)
		}
	}

	// 超时或者强制结束时链上余额由合约裁定, 不和签名余额比较
	if ep.EndedNormally && !types.BalanceEqual(balance, ep.SettledBalance) {
		return 0, types.NewVerifyError(types.ErrFinalBalanceMismatch, 0, types.SideNone,
			"settled %s gwei, replayed %d gwei", types.WeiToGwei(ep.SettledBalance).String(), balance)
	}
	alog.Debug("Verify ok", "session", sessionID, "era", era.Name, "rounds", len(sorted), "balance", balance)
	return len(sorted), nil
}

func (v *Verifier) checkSignatures(era *types.Era, user common.Address, rec *types.BetRecord) error {
	if rec.User != user {
		return types.NewVerifyError(types.ErrInvalidSignature, rec.RoundID, types.SideUser,
			"record user %s is not session user %s", rec.User.Hex(), user.Hex())
	}
	bet := rec.Bet()
	if !crypto.Verify(bet, v.chainID, era.Contract, era.Server, rec.ServerSig, era.SigVersion) {
		return types.NewVerifyError(types.ErrInvalidSignature, rec.RoundID, types.SideServer,
			"not signed by %s (%s)", era.Server.Hex(), types.SigVersionName(era.SigVersion))
	}
	if !crypto.Verify(bet, v.chainID, era.Contract, user, rec.UserSig, era.SigVersion) {
		return types.NewVerifyError(types.ErrInvalidSignature, rec.RoundID, types.SideUser,
			"not signed by %s (%s)", user.Hex(), types.SigVersionName(era.SigVersion))
	}
	return nil
}
