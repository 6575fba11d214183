// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package legacytyped 第一版签名编码: 旧版 typed data (eth_signTypedData v1)
package legacytyped

import (
	"encoding/binary"
	"math/big"

	bcommon "github.com/33cn/betaudit/common"
	"github.com/33cn/betaudit/common/crypto"
	"github.com/33cn/betaudit/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
)

// Name 驱动名
const Name = "legacy-typed-data"

// schema 的顺序和签名内容的打包顺序一致
var schema = []string{
	"uint256 Chain Id",
	"address Contract Address",
	"uint32 Round Id",
	"uint8 Game Type",
	"uint32 Number",
	"uint Value (Gwei)",
	"int Balance (Gwei)",
	"bytes32 Server Hash",
	"bytes32 User Hash",
	"uint Session Id",
}

var schemaHash = func() []byte {
	parts := make([][]byte, len(schema))
	for i, s := range schema {
		parts[i] = []byte(s)
	}
	return bcommon.ShaKeccak256(parts...)
}()

func init() {
	crypto.Register(types.SigVersionLegacy, Driver{})
}

// Driver 驱动
type Driver struct{}

// Name 驱动名
func (Driver) Name() string { return Name }

// Digest keccak256(keccak256(schema) || keccak256(values))
func (Driver) Digest(bet *types.Bet, chainID *big.Int, contract common.Address) ([]byte, error) {
	if chainID.Sign() < 0 || chainID.BitLen() > 256 {
		return nil, errors.Errorf("invalid chain id %s", chainID)
	}
	valueHash := bcommon.ShaKeccak256(
		math.PaddedBigBytes(chainID, 32),
		contract.Bytes(),
		uint32Bytes(bet.RoundID),
		[]byte{bet.GameType},
		uint32Bytes(bet.Num),
		math.U256Bytes(big.NewInt(bet.Value)),
		math.U256Bytes(big.NewInt(bet.Balance)),
		bet.ServerHash.Bytes(),
		bet.UserHash.Bytes(),
		math.U256Bytes(new(big.Int).SetUint64(bet.SessionID)),
	)
	return bcommon.ShaKeccak256(schemaHash, valueHash), nil
}

func uint32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
