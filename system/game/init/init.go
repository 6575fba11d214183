// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package init 初始化所有游戏
package init

import (
	//初始化
	_ "github.com/33cn/betaudit/system/game/choose"
	_ "github.com/33cn/betaudit/system/game/dice"
	_ "github.com/33cn/betaudit/system/game/flip"
)
