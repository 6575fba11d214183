// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

/*
era 描述一段历史时期内合约地址、服务端签名地址和签名编码版本。
session id 单调递增, 所以 era 用 [MinSessionID, MaxSessionID) 的区间来切分,
区间之间必须首尾相接, 不允许重叠或者空洞。
*/

// Era 一个协议时期
type Era struct {
	Name         string
	MinSessionID uint64
	MaxSessionID uint64
	Contract     common.Address
	Server       common.Address
	SigVersion   int
}

// Contains 判断 session id 是否落在该era内
func (e *Era) Contains(sessionID uint64) bool {
	return sessionID >= e.MinSessionID && sessionID < e.MaxSessionID
}

func (e *Era) String() string {
	return fmt.Sprintf("%s[%d,%d) contract=%s server=%s sig=%s",
		e.Name, e.MinSessionID, e.MaxSessionID, e.Contract.Hex(), e.Server.Hex(), SigVersionName(e.SigVersion))
}

// Eras 按 MinSessionID 排好序的era列表, 创建后只读
type Eras struct {
	eras []*Era
}

// NewEras 校验并创建era列表
func NewEras(eras []*Era) (*Eras, error) {
	if len(eras) == 0 {
		return nil, ErrEraEmpty
	}
	list := make([]*Era, len(eras))
	for i, e := range eras {
		if e == nil {
			return nil, errors.Wrapf(ErrEraEmpty, "era #%d is nil", i)
		}
		cp := *e
		list[i] = &cp
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].MinSessionID < list[j].MinSessionID
	})
	for i, e := range list {
		if e.MinSessionID >= e.MaxSessionID {
			return nil, errors.Wrapf(ErrEraRange, "era %s: min %d >= max %d", e.Name, e.MinSessionID, e.MaxSessionID)
		}
		if e.Contract == (common.Address{}) || e.Server == (common.Address{}) {
			return nil, errors.Wrapf(ErrEraAddress, "era %s", e.Name)
		}
		if e.SigVersion != SigVersionLegacy && e.SigVersion != SigVersionEIP712 {
			return nil, errors.Wrapf(ErrEraSigVersion, "era %s: version %d", e.Name, e.SigVersion)
		}
		if i > 0 && list[i-1].MaxSessionID != e.MinSessionID {
			return nil, errors.Wrapf(ErrEraGap, "era %s ends at %d, era %s starts at %d",
				list[i-1].Name, list[i-1].MaxSessionID, e.Name, e.MinSessionID)
		}
	}
	return &Eras{eras: list}, nil
}

// Resolve 根据 session id 查找创建 session 时生效的 era
func (es *Eras) Resolve(sessionID uint64) (*Era, error) {
	first, last := es.eras[0], es.eras[len(es.eras)-1]
	if sessionID < first.MinSessionID {
		return nil, errors.Wrapf(ErrUnsupportedSession, "session %d below first era %s (min %d)", sessionID, first.Name, first.MinSessionID)
	}
	if sessionID >= last.MaxSessionID {
		return nil, errors.Wrapf(ErrUnsupportedSession, "session %d beyond last era %s (max %d)", sessionID, last.Name, last.MaxSessionID)
	}
	i := sort.Search(len(es.eras), func(i int) bool {
		return es.eras[i].MaxSessionID > sessionID
	})
	e := *es.eras[i]
	return &e, nil
}

// MinSessionID 最小可审计的 session id
func (es *Eras) MinSessionID() uint64 {
	return es.eras[0].MinSessionID
}

// All 返回所有era的拷贝
func (es *Eras) All() []*Era {
	out := make([]*Era, len(es.eras))
	for i, e := range es.eras {
		cp := *e
		out[i] = &cp
	}
	return out
}
