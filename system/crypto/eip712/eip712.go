// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package eip712 第二版签名编码: EIP-712 结构化签名
package eip712

import (
	"math/big"

	bcommon "github.com/33cn/betaudit/common"
	"github.com/33cn/betaudit/common/crypto"
	"github.com/33cn/betaudit/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
)

// Name 驱动名
const Name = "eip712"

// 签名域
const (
	DomainName    = "Fair Channel"
	DomainVersion = "2"
	PrimaryType   = "Bet"
)

var betTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	PrimaryType: {
		{Name: "roundId", Type: "uint32"},
		{Name: "gameType", Type: "uint8"},
		{Name: "num", Type: "uint32"},
		{Name: "value", Type: "uint256"},
		{Name: "balance", Type: "int256"},
		{Name: "serverHash", Type: "bytes32"},
		{Name: "userHash", Type: "bytes32"},
		{Name: "sessionId", Type: "uint256"},
	},
}

func init() {
	crypto.Register(types.SigVersionEIP712, Driver{})
}

// Driver 驱动
type Driver struct{}

// Name 驱动名
func (Driver) Name() string { return Name }

// TypedData 构造 eth_signTypedData_v4 请求的数据, 钱包签的就是这个结构
func TypedData(bet *types.Bet, chainID *big.Int, contract common.Address) *apitypes.TypedData {
	// apitypes 编码整数时会原地修改 big.Int, 每次都要新建
	num := func(v *big.Int) *math.HexOrDecimal256 { return (*math.HexOrDecimal256)(v) }
	return &apitypes.TypedData{
		Types:       betTypes,
		PrimaryType: PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              DomainName,
			Version:           DomainVersion,
			ChainId:           num(new(big.Int).Set(chainID)),
			VerifyingContract: contract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"roundId":    num(big.NewInt(int64(bet.RoundID))),
			"gameType":   num(big.NewInt(int64(bet.GameType))),
			"num":        num(big.NewInt(int64(bet.Num))),
			"value":      num(big.NewInt(bet.Value)),
			"balance":    num(big.NewInt(bet.Balance)),
			"serverHash": bet.ServerHash.Hex(),
			"userHash":   bet.UserHash.Hex(),
			"sessionId":  num(new(big.Int).SetUint64(bet.SessionID)),
		},
	}
}

// Digest keccak256("\x19\x01" || domainSeparator || hashStruct(bet))
func (Driver) Digest(bet *types.Bet, chainID *big.Int, contract common.Address) ([]byte, error) {
	if bet.Value < 0 {
		return nil, errors.Errorf("negative value %d", bet.Value)
	}
	td := TypedData(bet, chainID, contract)
	domainSeparator, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return nil, errors.Wrap(err, "hash domain")
	}
	structHash, err := td.HashStruct(td.PrimaryType, td.Message)
	if err != nil {
		return nil, errors.Wrap(err, "hash bet")
	}
	return bcommon.ShaKeccak256([]byte("\x19\x01"), domainSeparator, structHash), nil
}
