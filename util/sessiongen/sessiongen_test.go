// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sessiongen

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/33cn/betaudit/common/crypto"
	"github.com/33cn/betaudit/types"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contract = common.HexToAddress("0x2222222222222222222222222222222222222222")

func TestGenerate(t *testing.T) {
	s, err := Generate(Options{SessionID: 2001, Rounds: 6, Contract: contract, Seed: 3})
	require.Nil(t, err)
	require.Len(t, s.Records, 6)
	assert.Equal(t, uint32(7), s.Endpoints.FinalRoundCount)
	assert.True(t, s.Endpoints.EndedNormally)
	assert.Equal(t, types.GweiToWei(s.FinalBalance), s.Endpoints.SettledBalance)

	server := ethcrypto.PubkeyToAddress(s.ServerKey.PublicKey)
	user := ethcrypto.PubkeyToAddress(s.UserKey.PublicKey)
	assert.Equal(t, user, s.Endpoints.User)

	asc := s.Ascending()
	assert.Equal(t, s.Endpoints.ServerChainHead, asc[0].ServerHash)
	assert.Equal(t, s.Endpoints.UserChainHead, asc[0].UserHash)
	assert.Equal(t, int64(0), asc[0].Balance)
	for i, rec := range asc {
		// 新的在前
		assert.Equal(t, s.Records[len(s.Records)-1-i], rec)
		assert.Equal(t, uint32(i+1), rec.RoundID)
		assert.Equal(t, uint64(2001), rec.SessionID)
		assert.Equal(t, rec.ServerHash, ethcrypto.Keccak256Hash(rec.ServerSeed[:]))
		if i > 0 {
			assert.Equal(t, asc[i-1].ServerSeed, rec.ServerHash)
			assert.Equal(t, asc[i-1].UserSeed, rec.UserHash)
		}
		bet := rec.Bet()
		assert.True(t, crypto.Verify(bet, big.NewInt(1), contract, server, rec.ServerSig, types.SigVersionEIP712))
		assert.True(t, crypto.Verify(bet, big.NewInt(1), contract, user, rec.UserSig, types.SigVersionEIP712))
	}
}

func TestGenerateDeterministicBets(t *testing.T) {
	key, err := NewKey()
	require.Nil(t, err)
	opts := Options{SessionID: 5, Rounds: 4, Forced: true, ServerKey: key, UserKey: key, Seed: 42}
	s1, err := Generate(opts)
	require.Nil(t, err)
	s2, err := Generate(opts)
	require.Nil(t, err)
	assert.Equal(t, s1.Endpoints, s2.Endpoints)
	assert.Equal(t, uint32(4), s1.Endpoints.FinalRoundCount)
	assert.False(t, s1.Endpoints.EndedNormally)
	for i := range s1.Records {
		assert.Equal(t, s1.Records[i].Bet(), s2.Records[i].Bet())
		assert.Equal(t, s1.Records[i].ResultNum, s2.Records[i].ResultNum)
	}
}

func TestGenerateInvalid(t *testing.T) {
	_, err := Generate(Options{Rounds: -1})
	assert.NotNil(t, err)
	_, err = Generate(Options{Rounds: 1, SigVersion: 7})
	assert.NotNil(t, err)
}

func TestDump(t *testing.T) {
	s, err := Generate(Options{SessionID: 9, Rounds: 3, Seed: 1})
	require.Nil(t, err)
	data, err := json.Marshal(s.Dump())
	require.Nil(t, err)

	var dump types.SessionDump
	require.Nil(t, json.Unmarshal(data, &dump))
	ep, err := types.ParseEndpoints(&dump.Endpoints)
	require.Nil(t, err)
	assert.Equal(t, s.Endpoints.SettledBalance.String(), ep.SettledBalance.String())
	ep.SettledBalance = s.Endpoints.SettledBalance
	assert.Equal(t, s.Endpoints, ep)
	recs, err := types.ParseBetRecords(dump.Bets)
	require.Nil(t, err)
	assert.Equal(t, s.Records, recs)
}

func TestNewKey(t *testing.T) {
	k1, err := NewKey()
	require.Nil(t, err)
	k2, err := NewKey()
	require.Nil(t, err)
	assert.NotEqual(t, ethcrypto.FromECDSA(k1), ethcrypto.FromECDSA(k2))
}
