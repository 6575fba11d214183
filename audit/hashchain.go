// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package audit

import (
	bcommon "github.com/33cn/betaudit/common"
	"github.com/33cn/betaudit/types"
	"github.com/ethereum/go-ethereum/common"
)

/*
双方各自持有一条哈希链 c[0..n], c[k] = keccak256(c[k+1]), c[0] 在创建 session 时上链。
第 i 局公开的 hash 是 c[i-1], 结束后公开的 seed 是 c[i], 所以
  keccak256(seed_i) == hash_i
  keccak256(hash_i) == hash_{i-1}
  hash_1 == c[0]
*/

// CommitmentOf keccak256(seed)
func CommitmentOf(seed common.Hash) common.Hash {
	return bcommon.Keccak256Hash(seed[:])
}

// CheckCommitments 检查双方公开的种子确实是本局承诺的原像
func CheckCommitments(rec *types.BetRecord) error {
	if CommitmentOf(rec.ServerSeed) != rec.ServerHash {
		return types.NewVerifyError(types.ErrBrokenHashChain, rec.RoundID, types.SideServer,
			"seed %s does not open hash %s", rec.ServerSeed.Hex(), rec.ServerHash.Hex())
	}
	if CommitmentOf(rec.UserSeed) != rec.UserHash {
		return types.NewVerifyError(types.ErrBrokenHashChain, rec.RoundID, types.SideUser,
			"seed %s does not open hash %s", rec.UserSeed.Hex(), rec.UserHash.Hex())
	}
	return nil
}

func checkLink(rec *types.BetRecord, side types.Side, hash, prev common.Hash) error {
	if CommitmentOf(hash) != prev {
		return types.NewVerifyError(types.ErrBrokenHashChain, rec.RoundID, side,
			"hash %s does not link to previous %s", hash.Hex(), prev.Hex())
	}
	return nil
}

// ValidateHashChain records 必须已经按 round id 升序排好, 返回第一个不满足的位置
func ValidateHashChain(records []*types.BetRecord, serverHead, userHead common.Hash) error {
	for i, rec := range records {
		if i == 0 {
			if rec.ServerHash != serverHead {
				return types.NewVerifyError(types.ErrBrokenHashChain, rec.RoundID, types.SideServer,
					"hash %s is not chain head %s", rec.ServerHash.Hex(), serverHead.Hex())
			}
			if rec.UserHash != userHead {
				return types.NewVerifyError(types.ErrBrokenHashChain, rec.RoundID, types.SideUser,
					"hash %s is not chain head %s", rec.UserHash.Hex(), userHead.Hex())
			}
		} else {
			prev := records[i-1]
			if err := checkLink(rec, types.SideServer, rec.ServerHash, prev.ServerHash); err != nil {
				return err
			}
			if err := checkLink(rec, types.SideUser, rec.UserHash, prev.UserHash); err != nil {
				return err
			}
		}
		if err := CheckCommitments(rec); err != nil {
			return err
		}
	}
	return nil
}
