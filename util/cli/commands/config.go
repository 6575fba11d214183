// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commands betaudit-cli 子命令
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/33cn/betaudit/common/log"
	"github.com/33cn/betaudit/types"
	"github.com/spf13/cobra"
)

func loadConfig(cmd *cobra.Command) (*types.Config, error) {
	path, _ := cmd.Flags().GetString("conf")
	cfg, err := types.InitCfg(path)
	if err != nil {
		return nil, err
	}
	log.SetFileLog(cfg.Log)
	return cfg, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
