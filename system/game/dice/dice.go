// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dice 掷骰子, 结果在 [0, 100)
package dice

import "github.com/33cn/betaudit/common/game"

// game types
const (
	TypeLower  uint8 = 1
	TypeHigher uint8 = 2
)

const (
	diceRange  = 100
	minNum     = 1
	maxNum     = 98
	winningMax = 99
)

func init() {
	game.Register(Lower{})
	game.Register(Higher{})
}

// Lower 结果小于 num 赢
type Lower struct{}

// Type type
func (Lower) Type() uint8 { return TypeLower }

// Name name
func (Lower) Name() string { return "DiceLower" }

// Range range
func (Lower) Range() uint64 { return diceRange }

// ValidNum 1..98
func (Lower) ValidNum(num uint32) bool { return num >= minNum && num <= maxNum }

// Won result < num
func (Lower) Won(result uint64, num uint32) bool { return result < uint64(num) }

// TotalWon 有 num 个赢的结果
func (Lower) TotalWon(value int64, num uint32) int64 {
	return value * diceRange / int64(num)
}

// Higher 结果大于 num 赢
type Higher struct{}

// Type type
func (Higher) Type() uint8 { return TypeHigher }

// Name name
func (Higher) Name() string { return "DiceHigher" }

// Range range
func (Higher) Range() uint64 { return diceRange }

// ValidNum 1..98
func (Higher) ValidNum(num uint32) bool { return num >= minNum && num <= maxNum }

// Won result > num
func (Higher) Won(result uint64, num uint32) bool { return result > uint64(num) }

// TotalWon 有 99-num 个赢的结果
func (Higher) TotalWon(value int64, num uint32) int64 {
	return value * diceRange / (winningMax - int64(num))
}
