// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package choose 12 选若干, num 是选中数字的位图
package choose

import (
	"math/bits"

	"github.com/33cn/betaudit/common/game"
)

// TypeChooseFrom12 game type
const TypeChooseFrom12 uint8 = 3

const (
	chooseRange = 12
	// 至少选一个, 不能全选
	maxNum = 1<<chooseRange - 2
)

func init() {
	game.Register(From12{})
}

// From12 结果对应的位被选中则赢
type From12 struct{}

// Type type
func (From12) Type() uint8 { return TypeChooseFrom12 }

// Name name
func (From12) Name() string { return "ChooseFrom12" }

// Range range
func (From12) Range() uint64 { return chooseRange }

// ValidNum 1..4094
func (From12) ValidNum(num uint32) bool { return num >= 1 && num <= maxNum }

// Won bit result of num is set
func (From12) Won(result uint64, num uint32) bool {
	return result < chooseRange && num&(1<<result) != 0
}

// TotalWon value * 12 / 选中个数
func (From12) TotalWon(value int64, num uint32) int64 {
	return value * chooseRange / int64(bits.OnesCount32(num))
}
