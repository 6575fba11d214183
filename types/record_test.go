// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hashA = "0x" + strings.Repeat("a1", 32)
	hashB = "0x" + strings.Repeat("b2", 32)
	hashC = "0x" + strings.Repeat("c3", 32)
	hashD = "0x" + strings.Repeat("d4", 32)
	sig65 = "0x" + strings.Repeat("0f", 64) + "1b"
	user  = "0x4444444444444444444444444444444444444444"
)

const rawJSON = `{
	"roundId": 3,
	"gameType": "1",
	"num": 50,
	"value": 1000,
	"balance": -250,
	"serverHash": "%s",
	"userHash": "%s",
	"serverSeed": "%s",
	"userSeed": "%s",
	"resultNum": 42,
	"serverSig": "%s",
	"userSig": "%s",
	"sessionId": 12,
	"userAddress": "%s"
}`

func newRaw() *RawBetRecord {
	return &RawBetRecord{
		RoundID:    "3",
		GameType:   "1",
		Num:        "50",
		Value:      "1000",
		Balance:    "-250",
		ServerHash: hashA,
		UserHash:   hashB,
		ServerSeed: hashC,
		UserSeed:   hashD,
		ResultNum:  "42",
		ServerSig:  sig65,
		UserSig:    sig65,
		SessionID:  "12",
		User:       user,
	}
}

func TestParseBetRecordJSON(t *testing.T) {
	js := rawJSON
	for _, v := range []string{hashA, hashB, hashC, hashD, sig65, sig65, user} {
		js = strings.Replace(js, "%s", v, 1)
	}
	var raw RawBetRecord
	require.Nil(t, json.Unmarshal([]byte(js), &raw))

	rec, err := ParseBetRecord(&raw)
	require.Nil(t, err)
	assert.Equal(t, uint32(3), rec.RoundID)
	assert.Equal(t, uint8(1), rec.GameType)
	assert.Equal(t, uint32(50), rec.Num)
	assert.Equal(t, int64(1000), rec.Value)
	assert.Equal(t, int64(-250), rec.Balance)
	assert.Equal(t, common.HexToHash(hashA), rec.ServerHash)
	assert.Equal(t, common.HexToHash(hashD), rec.UserSeed)
	assert.Equal(t, uint64(42), rec.ResultNum)
	assert.Len(t, rec.ServerSig, SignatureLength)
	assert.Equal(t, uint64(12), rec.SessionID)
	assert.Equal(t, common.HexToAddress(user), rec.User)

	bet := rec.Bet()
	assert.Equal(t, rec.RoundID, bet.RoundID)
	assert.Equal(t, rec.UserHash, bet.UserHash)
	assert.Equal(t, rec.SessionID, bet.SessionID)
}

func TestParseBetRecordRoundTrip(t *testing.T) {
	rec, err := ParseBetRecord(newRaw())
	require.Nil(t, err)
	raw := rec.ToRaw()
	rec2, err := ParseBetRecord(&raw)
	require.Nil(t, err)
	assert.Equal(t, rec, rec2)
}

func TestParseBetRecordInvalid(t *testing.T) {
	cases := map[string]func(r *RawBetRecord){
		"round zero":      func(r *RawBetRecord) { r.RoundID = "0" },
		"round overflow":  func(r *RawBetRecord) { r.RoundID = "4294967296" },
		"round float":     func(r *RawBetRecord) { r.RoundID = "1.5" },
		"game overflow":   func(r *RawBetRecord) { r.GameType = "256" },
		"negative num":    func(r *RawBetRecord) { r.Num = "-1" },
		"zero value":      func(r *RawBetRecord) { r.Value = "0" },
		"huge value":      func(r *RawBetRecord) { r.Value = "1000000000001" },
		"huge balance":    func(r *RawBetRecord) { r.Balance = "-100000000000000001" },
		"missing result":  func(r *RawBetRecord) { r.ResultNum = "" },
		"short hash":      func(r *RawBetRecord) { r.ServerHash = "0x1234" },
		"no prefix":       func(r *RawBetRecord) { r.UserSeed = strings.Repeat("ab", 32) },
		"short signature": func(r *RawBetRecord) { r.UserSig = "0x" + strings.Repeat("00", 64) },
		"bad address":     func(r *RawBetRecord) { r.User = "0x12" },
	}
	for name, mutate := range cases {
		raw := newRaw()
		mutate(raw)
		_, err := ParseBetRecord(raw)
		assert.True(t, errors.Is(err, ErrInvalidRecord), name)
	}
}

func TestParseBetRecords(t *testing.T) {
	r1, r2 := newRaw(), newRaw()
	r2.RoundID = "2"
	recs, err := ParseBetRecords([]RawBetRecord{*r1, *r2})
	require.Nil(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, uint32(3), recs[0].RoundID)
	assert.Equal(t, uint32(2), recs[1].RoundID)

	r2.Value = "x"
	_, err = ParseBetRecords([]RawBetRecord{*r1, *r2})
	assert.True(t, errors.Is(err, ErrInvalidRecord))
}

func TestParseEndpoints(t *testing.T) {
	raw := &RawEndpoints{
		SessionID:       "12",
		FinalRoundCount: "4",
		SettledBalance:  "-400000000000",
		ServerEndHash:   hashA,
		UserEndHash:     hashB,
		EndedNormally:   true,
	}
	ep, err := ParseEndpoints(raw)
	require.Nil(t, err)
	assert.Equal(t, uint64(12), ep.SessionID)
	assert.Equal(t, 3, ep.ExpectedRecords())
	assert.Equal(t, big.NewInt(-400000000000), ep.SettledBalance)
	assert.True(t, BalanceEqual(-400, ep.SettledBalance))
	assert.Equal(t, *raw, ep.ToRaw())

	raw.SettledBalance = "12x"
	_, err = ParseEndpoints(raw)
	assert.True(t, errors.Is(err, ErrInvalidRecord))
}

func TestExpectedRecords(t *testing.T) {
	ep := &SessionEndpoints{FinalRoundCount: 0, EndedNormally: true}
	assert.Equal(t, 0, ep.ExpectedRecords())
	ep = &SessionEndpoints{FinalRoundCount: 1, EndedNormally: true}
	assert.Equal(t, 0, ep.ExpectedRecords())
	ep = &SessionEndpoints{FinalRoundCount: 5, EndedNormally: false}
	assert.Equal(t, 5, ep.ExpectedRecords())
}

func TestUnitConversion(t *testing.T) {
	assert.Equal(t, "400", WeiToGwei(big.NewInt(400000000000)).String())
	assert.Equal(t, big.NewInt(400000000000), GweiToWei(400))
	assert.True(t, BalanceEqual(400, GweiToWei(400)))
	assert.False(t, BalanceEqual(399, GweiToWei(400)))
	// 不是整 gwei 的结算金额不会和任何余额相等
	assert.False(t, BalanceEqual(400, big.NewInt(400000000001)))
	assert.True(t, BalanceEqual(0, nil))
}

func TestVerifyError(t *testing.T) {
	err := error(NewVerifyError(ErrBrokenHashChain, 7, SideUser, "hash %d", 1))
	assert.Equal(t, "ErrBrokenHashChain round=7 side=user: hash 1", err.Error())
	assert.True(t, errors.Is(err, ErrBrokenHashChain))
	assert.Equal(t, ErrBrokenHashChain, errors.Cause(err))
	assert.Equal(t, ErrBrokenHashChain, ErrorKind(errors.Wrap(err, "outer")))
	round, ok := FailedRound(errors.Wrap(err, "outer"))
	assert.True(t, ok)
	assert.Equal(t, uint32(7), round)
	assert.False(t, IsRetryable(err))
	assert.True(t, IsRetryable(errors.Wrap(ErrDataUnavailable, "x")))
	assert.Nil(t, ErrorKind(errors.New("other")))
}
