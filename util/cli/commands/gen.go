// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/33cn/betaudit/util/sessiongen"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// GenCmd 生成一个签名完整的 session dump, 用于测试和演示
func GenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a signed session dump for offline auditing",
		RunE:  gen,
	}
	addGenFlags(cmd)
	return cmd
}

func addGenFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64P("session", "s", 0, "session id, decides the era")
	cmd.MarkFlagRequired("session")
	cmd.Flags().IntP("rounds", "r", 10, "recorded rounds")
	cmd.Flags().Bool("forced", false, "session ended by timeout or force, no settling round")
	cmd.Flags().StringP("out", "o", "", "output file, stdout if empty")
	cmd.Flags().String("server-key", "", "hex server private key, random if empty")
	cmd.Flags().Int64("seed", 1, "random seed of bets and hash chains")
}

func parseKey(s string) (*ecdsa.PrivateKey, error) {
	if s == "" {
		return nil, nil
	}
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "server-key")
	}
	return key, nil
}

func gen(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetUint64("session")
	rounds, _ := cmd.Flags().GetInt("rounds")
	forced, _ := cmd.Flags().GetBool("forced")
	out, _ := cmd.Flags().GetString("out")
	keyHex, _ := cmd.Flags().GetString("server-key")
	seed, _ := cmd.Flags().GetInt64("seed")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eras, err := cfg.Eras()
	if err != nil {
		return err
	}
	era, err := eras.Resolve(sessionID)
	if err != nil {
		return err
	}
	serverKey, err := parseKey(keyHex)
	if err != nil {
		return err
	}
	s, err := sessiongen.Generate(sessiongen.Options{
		SessionID:  sessionID,
		Rounds:     rounds,
		ChainID:    cfg.GetChainID(),
		Contract:   era.Contract,
		SigVersion: era.SigVersion,
		ServerKey:  serverKey,
		Forced:     forced,
		Seed:       seed,
	})
	if err != nil {
		return err
	}
	if server := ethcrypto.PubkeyToAddress(s.ServerKey.PublicKey); server != era.Server {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: server key %s is not the %s era server %s\n", server.Hex(), era.Name, era.Server.Hex())
	}

	data, err := json.MarshalIndent(s.Dump(), "", "    ")
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	return ioutil.WriteFile(out, data, 0644)
}
