// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"os"

	"github.com/33cn/betaudit/common/log"
	"github.com/33cn/betaudit/util/cli/commands"
	"github.com/spf13/cobra"

	_ "github.com/33cn/betaudit/system/crypto/init" //register signature schemes
	_ "github.com/33cn/betaudit/system/game/init"   //register games
)

// NewRootCmd betaudit-cli 根命令
func NewRootCmd(confPath string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "betaudit-cli",
		Short:        "betaudit client tools",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("conf", confPath, "config file, empty for the builtin config")
	rootCmd.AddCommand(
		commands.VerifyCmd(),
		commands.EraCmd(),
		commands.GenCmd(),
		commands.VersionCmd(),
	)
	return rootCmd
}

//Run :
func Run(confPath string) {
	log.SetLogLevel("error")
	if err := NewRootCmd(confPath).Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
