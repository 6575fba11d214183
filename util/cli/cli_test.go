// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/33cn/betaudit/audit"
	"github.com/33cn/betaudit/types"
	"github.com/33cn/betaudit/util/sessiongen"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = `
Title="betaudit-test"
ChainID=5

[[era]]
name = "old"
minSessionID = 1
maxSessionID = 100
contract = "0x1111111111111111111111111111111111111111"
server = "%s"
sigVersion = 1

[[era]]
name = "new"
minSessionID = 100
contract = "0x2222222222222222222222222222222222222222"
server = "%s"
sigVersion = 2
`

func writeConfig(t *testing.T, dir string) string {
	key, err := sessiongen.NewKey()
	require.Nil(t, err)
	server := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()
	path := filepath.Join(dir, "betaudit.toml")
	require.Nil(t, ioutil.WriteFile(path, []byte(fmt.Sprintf(testCfg, server, server)), 0644))
	return hex.EncodeToString(ethcrypto.FromECDSA(key))
}

func execute(args ...string) (string, error) {
	root := NewRootCmd("")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func decodeReport(t *testing.T, out string) *audit.Report {
	var report audit.Report
	dec := json.NewDecoder(bytes.NewBufferString(out))
	require.Nil(t, dec.Decode(&report))
	return &report
}

func TestVersion(t *testing.T) {
	out, err := execute("version")
	require.Nil(t, err)
	assert.Contains(t, out, "betaudit "+types.Version)
	assert.Contains(t, out, "game 3 ChooseFrom12")
}

func TestEra(t *testing.T) {
	out, err := execute("era", "--session", "2500")
	require.Nil(t, err)
	assert.Contains(t, out, `"name": "v2"`)
	assert.Contains(t, out, `"sigVersion": "eip712"`)

	out, err = execute("era")
	require.Nil(t, err)
	assert.Contains(t, out, `"maxSessionID": "unbounded"`)

	_, err = execute("era", "--session", "0")
	assert.Nil(t, err)
}

func TestGenAndVerifyFile(t *testing.T) {
	dir := t.TempDir()
	keyHex := writeConfig(t, dir)
	conf := filepath.Join(dir, "betaudit.toml")

	for _, c := range []struct {
		session string
		era     string
		forced  bool
	}{
		{"42", "old", false},
		{"150", "new", false},
		{"151", "new", true},
	} {
		dump := filepath.Join(dir, "session-"+c.session+".json")
		args := []string{"gen", "--conf", conf, "--session", c.session, "--rounds", "6", "--server-key", keyHex, "--out", dump}
		if c.forced {
			args = append(args, "--forced")
		}
		_, err := execute(args...)
		require.Nil(t, err, c.session)

		textfile := filepath.Join(dir, "audit-"+c.session+".prom")
		out, err := execute("verify", "--conf", conf, "--file", dump, "--prom-textfile", textfile)
		require.Nil(t, err, out)
		report := decodeReport(t, out)
		assert.True(t, report.OK())
		assert.Equal(t, 6, report.Rounds)
		assert.Equal(t, c.era, report.Era)

		prom, err := ioutil.ReadFile(textfile)
		require.Nil(t, err)
		assert.Contains(t, string(prom), "betaudit_audit_verified_total 1")
	}
}

func TestVerifyFileWrongServer(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	conf := filepath.Join(dir, "betaudit.toml")
	dump := filepath.Join(dir, "session.json")

	// 随机 server key, 和配置里的 server 地址不一致
	_, err := execute("gen", "--conf", conf, "--session", "7", "--rounds", "2", "--out", dump)
	require.Nil(t, err)

	out, err := execute("verify", "--conf", conf, "--file", dump, "--metrics")
	require.NotNil(t, err)
	report := decodeReport(t, out)
	assert.Equal(t, "ErrInvalidSignature", report.Kind)
	assert.Equal(t, uint32(1), report.FailedRound)
	assert.Contains(t, out, "audit.failed.ErrInvalidSignature")
}

func TestVerifyArgs(t *testing.T) {
	_, err := execute("verify")
	assert.NotNil(t, err)

	_, err = execute("verify", "--file", filepath.Join(t.TempDir(), "missing.json"))
	assert.NotNil(t, err)
}
