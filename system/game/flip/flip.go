// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flip 抛硬币
package flip

import "github.com/33cn/betaudit/common/game"

// TypeFlipACoin game type
const TypeFlipACoin uint8 = 4

func init() {
	game.Register(Coin{})
}

// Coin 猜中正反面赢双倍
type Coin struct{}

// Type type
func (Coin) Type() uint8 { return TypeFlipACoin }

// Name name
func (Coin) Name() string { return "FlipACoin" }

// Range range
func (Coin) Range() uint64 { return 2 }

// ValidNum 0 or 1
func (Coin) ValidNum(num uint32) bool { return num <= 1 }

// Won result == num
func (Coin) Won(result uint64, num uint32) bool { return result == uint64(num) }

// TotalWon value * 2
func (Coin) TotalWon(value int64, num uint32) int64 { return value * 2 }
