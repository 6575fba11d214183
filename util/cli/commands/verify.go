// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"encoding/json"
	"io/ioutil"

	"github.com/33cn/betaudit/audit"
	"github.com/33cn/betaudit/client/backend"
	"github.com/33cn/betaudit/client/ledger"
	"github.com/33cn/betaudit/common/game"
	"github.com/33cn/betaudit/metrics"
	"github.com/33cn/betaudit/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// VerifyCmd 审计一个 session
func VerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Audit a betting session from the ledger and the game backend, or from a dump file",
		RunE:  verify,
	}
	addVerifyFlags(cmd)
	return cmd
}

func addVerifyFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64P("session", "s", 0, "session id, may be omitted with --file")
	cmd.Flags().StringP("file", "f", "", "session dump file, audit offline")
	cmd.Flags().Bool("metrics", false, "print metrics after the audit")
	cmd.Flags().String("prom-textfile", "", "write prometheus metrics to this .prom file")
}

func readDump(path string) (*types.SessionEndpoints, []*types.BetRecord, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read dump %s", path)
	}
	var dump types.SessionDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, nil, errors.Wrapf(types.ErrInvalidRecord, "decode dump %s: %v", path, err)
	}
	ep, err := types.ParseEndpoints(&dump.Endpoints)
	if err != nil {
		return nil, nil, err
	}
	records, err := types.ParseBetRecords(dump.Bets)
	if err != nil {
		return nil, nil, err
	}
	return ep, records, nil
}

func verify(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetUint64("session")
	file, _ := cmd.Flags().GetString("file")
	showMetrics, _ := cmd.Flags().GetBool("metrics")
	textfile, _ := cmd.Flags().GetString("prom-textfile")
	if sessionID == 0 && file == "" {
		return errors.New("either --session or --file is required")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eras, err := cfg.Eras()
	if err != nil {
		return err
	}
	verifier := audit.NewVerifier(eras, cfg.GetChainID(), game.DefaultEngine())

	var opts []audit.Option
	var rec *metrics.Recorder
	if showMetrics || textfile != "" || cfg.Metrics.EnableMetrics {
		rec = metrics.NewRecorder()
		opts = append(opts, audit.WithRecorder(rec))
	}

	var report *audit.Report
	if file != "" {
		ep, records, err := readDump(file)
		if err != nil {
			return err
		}
		if sessionID == 0 {
			sessionID = ep.SessionID
		}
		report = audit.NewAuditor(verifier, nil, nil, opts...).Check(sessionID, ep, records)
	} else {
		ctx := context.Background()
		reader, err := ledger.Dial(ctx, cfg.Ledger)
		if err != nil {
			return err
		}
		client, err := backend.NewClient(cfg.Backend)
		if err != nil {
			return err
		}
		report, _ = audit.NewAuditor(verifier, reader, client, opts...).Audit(ctx, sessionID)
	}

	if err := printJSON(cmd, report); err != nil {
		return err
	}
	if rec != nil {
		if showMetrics {
			rec.WriteOnce(cmd.OutOrStdout())
		}
		if textfile != "" {
			if err := rec.WriteTextfile(textfile); err != nil {
				return err
			}
		}
	}
	return report.Err
}
