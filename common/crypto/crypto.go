// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crypto 下注签名内容编码以及签名验证
package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/33cn/betaudit/types"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Scheme 一种签名内容的编码方式, chainID 和合约地址属于签名域, 不属于下注内容
type Scheme interface {
	Name() string
	Digest(bet *types.Bet, chainID *big.Int, contract common.Address) ([]byte, error)
}

var (
	drivers     = make(map[int]Scheme)
	driverMutex sync.Mutex
)

// ErrUnknownScheme 未注册的签名版本
var ErrUnknownScheme = errors.New("ErrUnknownScheme")

//Register 注册
func Register(version int, scheme Scheme) {
	driverMutex.Lock()
	defer driverMutex.Unlock()
	if scheme == nil {
		panic("crypto: Register scheme is nil")
	}
	if _, dup := drivers[version]; dup {
		panic(fmt.Sprintf("crypto: Register called twice for version %d", version))
	}
	drivers[version] = scheme
}

//Load 按版本获取编码方式
func Load(version int) (Scheme, error) {
	driverMutex.Lock()
	defer driverMutex.Unlock()
	s, ok := drivers[version]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownScheme, "version %d", version)
	}
	return s, nil
}

// Digest 计算签名摘要
func Digest(bet *types.Bet, chainID *big.Int, contract common.Address, version int) ([]byte, error) {
	s, err := Load(version)
	if err != nil {
		return nil, err
	}
	return s.Digest(bet, chainID, contract)
}

// normalize 把 r||s||v 转成 go-ethereum 需要的 v∈{0,1} 形式
func normalize(sig []byte) ([]byte, error) {
	if len(sig) != types.SignatureLength {
		return nil, fmt.Errorf("signature length %d", len(sig))
	}
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return nil, fmt.Errorf("invalid recovery id %d", sig[64])
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	// 合约里用 ecrecover 验证, 不限制 s 在低半区
	if !ethcrypto.ValidateSignatureValues(v, r, s, false) {
		return nil, errors.New("signature values out of range")
	}
	out := common.CopyBytes(sig)
	out[64] = v
	return out, nil
}

// Recover 从摘要和签名恢复签名地址
func Recover(digest, sig []byte) (common.Address, error) {
	norm, err := normalize(sig)
	if err != nil {
		return common.Address{}, err
	}
	pub, err := ethcrypto.SigToPub(digest, norm)
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}

// Verify 验证 sig 是 signer 对 bet 的签名, 任何格式错误都返回 false
func Verify(bet *types.Bet, chainID *big.Int, contract, signer common.Address, sig []byte, version int) bool {
	if bet == nil || chainID == nil {
		return false
	}
	digest, err := Digest(bet, chainID, contract, version)
	if err != nil {
		return false
	}
	addr, err := Recover(digest, sig)
	if err != nil {
		return false
	}
	return addr == signer
}

// Sign 对下注签名, v 取 27/28
func Sign(bet *types.Bet, chainID *big.Int, contract common.Address, version int, key *ecdsa.PrivateKey) ([]byte, error) {
	digest, err := Digest(bet, chainID, contract, version)
	if err != nil {
		return nil, err
	}
	sig, err := ethcrypto.Sign(digest, key)
	if err != nil {
		return nil, errors.Wrap(err, "Sign")
	}
	sig[64] += 27
	return sig, nil
}
