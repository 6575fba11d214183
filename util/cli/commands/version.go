// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"

	"github.com/33cn/betaudit/common/game"
	"github.com/33cn/betaudit/types"
	"github.com/spf13/cobra"
)

// VersionCmd version command
func VersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Get betaudit version",
		Run:   version,
	}
	return cmd
}

func version(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "betaudit", types.Version)
	for _, g := range game.Registered() {
		fmt.Fprintf(out, "game %d %s\n", g.Type(), g.Name())
	}
}
