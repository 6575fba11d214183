// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// SignatureLength r || s || v
const SignatureLength = 65

// Bet 双方签名覆盖的内容, 只有这些字段
type Bet struct {
	RoundID    uint32
	GameType   uint8
	Num        uint32
	Value      int64
	Balance    int64
	ServerHash common.Hash
	UserHash   common.Hash
	SessionID  uint64
}

// BetRecord 一局已签名的下注以及事后公开的种子
type BetRecord struct {
	RoundID    uint32
	GameType   uint8
	Num        uint32
	Value      int64
	Balance    int64
	ServerHash common.Hash
	UserHash   common.Hash
	ServerSeed common.Hash
	UserSeed   common.Hash
	ResultNum  uint64
	ServerSig  []byte
	UserSig    []byte
	SessionID  uint64
	User       common.Address
}

// Bet 返回签名内容
func (r *BetRecord) Bet() *Bet {
	return &Bet{
		RoundID:    r.RoundID,
		GameType:   r.GameType,
		Num:        r.Num,
		Value:      r.Value,
		Balance:    r.Balance,
		ServerHash: r.ServerHash,
		UserHash:   r.UserHash,
		SessionID:  r.SessionID,
	}
}

// Clone deep copy
func (r *BetRecord) Clone() *BetRecord {
	cp := *r
	cp.ServerSig = common.CopyBytes(r.ServerSig)
	cp.UserSig = common.CopyBytes(r.UserSig)
	return &cp
}

// SessionEndpoints 链上 session 创建和结束两个事件给出的信息
type SessionEndpoints struct {
	SessionID       uint64
	FinalRoundCount uint32
	// SettledBalance wei
	SettledBalance  *big.Int
	ServerChainHead common.Hash
	UserChainHead   common.Hash
	EndedNormally   bool
	// User 创建 session 的用户, 零地址表示未知
	User            common.Address
}

// ExpectedRecords 正常结束时最后还有一局不带下注的结算轮
func (e *SessionEndpoints) ExpectedRecords() int {
	if e.EndedNormally {
		if e.FinalRoundCount == 0 {
			return 0
		}
		return int(e.FinalRoundCount) - 1
	}
	return int(e.FinalRoundCount)
}

// WeiToGwei 链上金额转换到 session 余额单位, 精确十进制计算
func WeiToGwei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -GweiDecimals)
}

// GweiToWei gwei -> wei
func GweiToWei(gwei int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(gwei), big.NewInt(WeiPerGwei))
}

// BalanceEqual 比较 gwei 余额和 wei 结算金额
func BalanceEqual(gwei int64, wei *big.Int) bool {
	return decimal.NewFromInt(gwei).Equal(WeiToGwei(wei))
}

// RawBetRecord 后端接口返回的下注记录, 字段类型宽松, 需要经过 ParseBetRecord 校验
type RawBetRecord struct {
	RoundID    json.Number `json:"roundId"`
	GameType   json.Number `json:"gameType"`
	Num        json.Number `json:"num"`
	Value      json.Number `json:"value"`
	Balance    json.Number `json:"balance"`
	ServerHash string      `json:"serverHash"`
	UserHash   string      `json:"userHash"`
	ServerSeed string      `json:"serverSeed"`
	UserSeed   string      `json:"userSeed"`
	ResultNum  json.Number `json:"resultNum"`
	ServerSig  string      `json:"serverSig"`
	UserSig    string      `json:"userSig"`
	SessionID  json.Number `json:"sessionId"`
	User       string      `json:"userAddress"`
}

// RawEndpoints 离线审计文件中的链上信息
type RawEndpoints struct {
	SessionID       json.Number `json:"sessionId"`
	FinalRoundCount json.Number `json:"finalRoundCount"`
	SettledBalance  string      `json:"settledBalance"`
	ServerEndHash   string      `json:"serverEndHash"`
	UserEndHash     string      `json:"userEndHash"`
	EndedNormally   bool        `json:"endedNormally"`
	User            string      `json:"userAddress,omitempty"`
}

// SessionDump 离线审计文件格式, bets 按接口顺序(新的在前)
type SessionDump struct {
	Endpoints RawEndpoints   `json:"endpoints"`
	Bets      []RawBetRecord `json:"bets"`
}

type fieldParser struct {
	round string
	err   error
}

func (p *fieldParser) fail(field string, format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	p.err = errors.Wrapf(ErrInvalidRecord, "round %s: %s: "+format, append([]interface{}{p.round, field}, args...)...)
}

func (p *fieldParser) unsigned(field string, n json.Number, bits int) uint64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseUint(n.String(), 10, bits)
	if err != nil {
		p.fail(field, "%v", err)
		return 0
	}
	return v
}

func (p *fieldParser) signed(field string, n json.Number) int64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		p.fail(field, "%v", err)
		return 0
	}
	return v
}

func (p *fieldParser) hash(field, s string) common.Hash {
	if p.err != nil {
		return common.Hash{}
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		p.fail(field, "%v", err)
		return common.Hash{}
	}
	if len(b) != common.HashLength {
		p.fail(field, "length %d", len(b))
		return common.Hash{}
	}
	return common.BytesToHash(b)
}

func (p *fieldParser) sig(field, s string) []byte {
	if p.err != nil {
		return nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		p.fail(field, "%v", err)
		return nil
	}
	if len(b) != SignatureLength {
		p.fail(field, "length %d", len(b))
		return nil
	}
	return b
}

func (p *fieldParser) address(field, s string) common.Address {
	if p.err != nil {
		return common.Address{}
	}
	if !common.IsHexAddress(s) {
		p.fail(field, "invalid address %q", s)
		return common.Address{}
	}
	return common.HexToAddress(s)
}

// ParseBetRecord 边界校验: 类型、长度、取值范围
func ParseBetRecord(raw *RawBetRecord) (*BetRecord, error) {
	p := &fieldParser{round: raw.RoundID.String()}
	rec := &BetRecord{
		RoundID:    uint32(p.unsigned("roundId", raw.RoundID, 32)),
		GameType:   uint8(p.unsigned("gameType", raw.GameType, 8)),
		Num:        uint32(p.unsigned("num", raw.Num, 32)),
		Value:      p.signed("value", raw.Value),
		Balance:    p.signed("balance", raw.Balance),
		ServerHash: p.hash("serverHash", raw.ServerHash),
		UserHash:   p.hash("userHash", raw.UserHash),
		ServerSeed: p.hash("serverSeed", raw.ServerSeed),
		UserSeed:   p.hash("userSeed", raw.UserSeed),
		ResultNum:  p.unsigned("resultNum", raw.ResultNum, 64),
		ServerSig:  p.sig("serverSig", raw.ServerSig),
		UserSig:    p.sig("userSig", raw.UserSig),
		SessionID:  p.unsigned("sessionId", raw.SessionID, 64),
		User:       p.address("userAddress", raw.User),
	}
	if p.err != nil {
		return nil, p.err
	}
	if rec.RoundID == 0 {
		p.fail("roundId", "must be positive")
	}
	if rec.Value <= 0 || rec.Value > MaxBetValue {
		p.fail("value", "%d out of range (0, %d]", rec.Value, MaxBetValue)
	}
	if rec.Balance < -MaxBalance || rec.Balance > MaxBalance {
		p.fail("balance", "%d out of range", rec.Balance)
	}
	if p.err != nil {
		return nil, p.err
	}
	return rec, nil
}

// ParseBetRecords 逐条解析, 保持原顺序
func ParseBetRecords(raws []RawBetRecord) ([]*BetRecord, error) {
	recs := make([]*BetRecord, 0, len(raws))
	for i := range raws {
		rec, err := ParseBetRecord(&raws[i])
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ParseEndpoints 解析离线文件中的链上信息
func ParseEndpoints(raw *RawEndpoints) (*SessionEndpoints, error) {
	p := &fieldParser{round: "-"}
	ep := &SessionEndpoints{
		SessionID:       p.unsigned("sessionId", raw.SessionID, 64),
		FinalRoundCount: uint32(p.unsigned("finalRoundCount", raw.FinalRoundCount, 32)),
		ServerChainHead: p.hash("serverEndHash", raw.ServerEndHash),
		UserChainHead:   p.hash("userEndHash", raw.UserEndHash),
		EndedNormally:   raw.EndedNormally,
	}
	if raw.User != "" {
		ep.User = p.address("userAddress", raw.User)
	}
	if p.err != nil {
		return nil, p.err
	}
	balance, ok := new(big.Int).SetString(raw.SettledBalance, 10)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidRecord, "settledBalance %q", raw.SettledBalance)
	}
	ep.SettledBalance = balance
	return ep, nil
}

// ToRaw 转换成接口格式, 用于导出离线审计文件
func (r *BetRecord) ToRaw() RawBetRecord {
	return RawBetRecord{
		RoundID:    json.Number(strconv.FormatUint(uint64(r.RoundID), 10)),
		GameType:   json.Number(strconv.FormatUint(uint64(r.GameType), 10)),
		Num:        json.Number(strconv.FormatUint(uint64(r.Num), 10)),
		Value:      json.Number(strconv.FormatInt(r.Value, 10)),
		Balance:    json.Number(strconv.FormatInt(r.Balance, 10)),
		ServerHash: r.ServerHash.Hex(),
		UserHash:   r.UserHash.Hex(),
		ServerSeed: r.ServerSeed.Hex(),
		UserSeed:   r.UserSeed.Hex(),
		ResultNum:  json.Number(strconv.FormatUint(r.ResultNum, 10)),
		ServerSig:  hexutil.Encode(r.ServerSig),
		UserSig:    hexutil.Encode(r.UserSig),
		SessionID:  json.Number(strconv.FormatUint(r.SessionID, 10)),
		User:       r.User.Hex(),
	}
}

// ToRaw 转换成离线文件格式
func (e *SessionEndpoints) ToRaw() RawEndpoints {
	balance := "0"
	if e.SettledBalance != nil {
		balance = e.SettledBalance.String()
	}
	raw := RawEndpoints{
		SessionID:       json.Number(strconv.FormatUint(e.SessionID, 10)),
		FinalRoundCount: json.Number(strconv.FormatUint(uint64(e.FinalRoundCount), 10)),
		SettledBalance:  balance,
		ServerEndHash:   e.ServerChainHead.Hex(),
		UserEndHash:     e.UserChainHead.Hex(),
		EndedNormally:   e.EndedNormally,
	}
	if e.User != (common.Address{}) {
		raw.User = e.User.Hex()
	}
	return raw
}
