// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import "math"

// Version betaudit 版本号
const Version = "1.2.0"

// 金额单位: session 内部余额以 gwei 计, 链上结算以 wei 计
const (
	GweiDecimals       = 9
	WeiPerGwei   int64 = 1e9
	// MaxBetValue 单局下注上限 (gwei)
	MaxBetValue int64 = 1e12
	// MaxBalance 余额绝对值上限 (gwei), 超过视为非法数据
	MaxBalance int64 = 1e17
)

// MaxSessionID 最后一个era的默认上限(不包含)
const MaxSessionID uint64 = math.MaxUint64

// 签名编码版本
const (
	SigVersionLegacy = 1
	SigVersionEIP712 = 2
)

// SigVersionName returns a printable name for a signature encoding version.
func SigVersionName(version int) string {
	switch version {
	case SigVersionLegacy:
		return "legacy-typed-data"
	case SigVersionEIP712:
		return "eip712"
	}
	return "unknown"
}
