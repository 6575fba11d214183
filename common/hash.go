// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"encoding/hex"

	ecommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

//ToHex []byte -> hex
func ToHex(b []byte) string {
	hex := Bytes2Hex(b)
	// Prefer output of "0x0" instead of "0x"
	if len(hex) == 0 {
		return ""
	}
	return "0x" + hex
}

//Bytes2Hex []byte -> hex
func Bytes2Hex(d []byte) string {
	return hex.EncodeToString(d)
}

//ShaKeccak256 legacy keccak256, 与以太坊 keccak256 一致(不是 NIST SHA3-256)
func ShaKeccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

//Keccak256Hash keccak256 结果转成 32 字节哈希
func Keccak256Hash(data ...[]byte) (h ecommon.Hash) {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// HashChain 从末端种子生成一条长度为 n+1 的哈希链, chain[n] = tail, chain[i] = keccak256(chain[i+1])
func HashChain(tail ecommon.Hash, n int) []ecommon.Hash {
	chain := make([]ecommon.Hash, n+1)
	chain[n] = tail
	for i := n - 1; i >= 0; i-- {
		chain[i] = Keccak256Hash(chain[i+1][:])
	}
	return chain
}
