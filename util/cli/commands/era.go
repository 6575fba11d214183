// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"

	"github.com/33cn/betaudit/types"
	"github.com/spf13/cobra"
)

// EraCmd 查看协议时期
func EraCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "era",
		Short: "List configured eras or resolve the era of a session",
		RunE:  era,
	}
	addEraFlags(cmd)
	return cmd
}

func addEraFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64P("session", "s", 0, "session id to resolve, 0 lists all eras")
}

type eraResult struct {
	Name         string `json:"name"`
	MinSessionID uint64 `json:"minSessionID"`
	MaxSessionID string `json:"maxSessionID"`
	Contract     string `json:"contract"`
	Server       string `json:"server"`
	SigVersion   string `json:"sigVersion"`
}

func toEraResult(e *types.Era) *eraResult {
	max := fmt.Sprint(e.MaxSessionID)
	if e.MaxSessionID == types.MaxSessionID {
		max = "unbounded"
	}
	return &eraResult{
		Name:         e.Name,
		MinSessionID: e.MinSessionID,
		MaxSessionID: max,
		Contract:     e.Contract.Hex(),
		Server:       e.Server.Hex(),
		SigVersion:   types.SigVersionName(e.SigVersion),
	}
}

func era(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetUint64("session")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eras, err := cfg.Eras()
	if err != nil {
		return err
	}
	if sessionID != 0 {
		e, err := eras.Resolve(sessionID)
		if err != nil {
			return err
		}
		return printJSON(cmd, toEraResult(e))
	}
	var result []*eraResult
	for _, e := range eras.All() {
		result = append(result, toEraResult(e))
	}
	return printJSON(cmd, result)
}
