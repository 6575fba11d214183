// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package audit

import (
	"context"
	"time"

	"github.com/33cn/betaudit/metrics"
	"github.com/33cn/betaudit/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// LedgerReader 读取链上 session 的创建和结束信息
type LedgerReader interface {
	Endpoints(ctx context.Context, sessionID uint64, contract common.Address) (*types.SessionEndpoints, error)
}

// BetProvider 读取 session 的下注记录, 新的在前
type BetProvider interface {
	Bets(ctx context.Context, sessionID uint64) ([]*types.BetRecord, error)
}

// Report 一次审计的结果
type Report struct {
	RunID       string        `json:"runId"`
	SessionID   uint64        `json:"sessionId"`
	Era         string        `json:"era,omitempty"`
	Rounds      int           `json:"rounds"`
	Duration    time.Duration `json:"duration"`
	Kind        string        `json:"kind,omitempty"`
	FailedRound uint32        `json:"failedRound,omitempty"`
	Retryable   bool          `json:"retryable,omitempty"`
	Error       string        `json:"error,omitempty"`
	Err         error         `json:"-"`
}

// OK 审计通过
func (r *Report) OK() bool {
	return r.Err == nil
}

func (r *Report) fail(err error) {
	r.Err = err
	r.Error = err.Error()
	if kind := types.ErrorKind(err); kind != nil {
		r.Kind = kind.Error()
	}
	r.FailedRound, _ = types.FailedRound(err)
	r.Retryable = types.IsRetryable(err)
}

// Option auditor 选项
type Option func(*Auditor)

// WithRecorder 记录统计信息
func WithRecorder(rec *metrics.Recorder) Option {
	return func(a *Auditor) {
		a.recorder = rec
	}
}

// WithNow 替换时钟, 测试使用
func WithNow(now func() time.Time) Option {
	return func(a *Auditor) {
		a.now = now
	}
}

// Auditor 先取数据再同步复核
type Auditor struct {
	verifier *Verifier
	ledger   LedgerReader
	bets     BetProvider
	recorder *metrics.Recorder
	now      func() time.Time
}

// NewAuditor new
func NewAuditor(verifier *Verifier, ledger LedgerReader, bets BetProvider, opts ...Option) *Auditor {
	a := &Auditor{
		verifier: verifier,
		ledger:   ledger,
		bets:     bets,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// collaborator 返回的错误如果不属于审计错误类型, 统一视为暂时拿不到数据
func unavailable(err error, source string) error {
	if types.ErrorKind(err) != nil {
		return err
	}
	return errors.Wrapf(types.ErrDataUnavailable, "%s: %v", source, err)
}

// Audit 从链上和后端取数据, 复核 session; 返回的 error 和 Report.Err 相同
func (a *Auditor) Audit(ctx context.Context, sessionID uint64) (*Report, error) {
	start := a.now()
	report := &Report{RunID: uuid.New().String(), SessionID: sessionID}
	llog := alog.New("run", report.RunID, "session", sessionID)

	err := a.fetchAndVerify(ctx, report)
	a.finish(report, start, err)
	if err != nil {
		llog.Error("Audit failed", "era", report.Era, "kind", report.Kind, "retryable", report.Retryable, "err", err)
		return report, err
	}
	llog.Info("Audit ok", "era", report.Era, "rounds", report.Rounds, "cost", report.Duration)
	return report, nil
}

func (a *Auditor) fetchAndVerify(ctx context.Context, report *Report) error {
	era, err := a.verifier.Era(report.SessionID)
	if err != nil {
		return err
	}
	report.Era = era.Name
	ep, err := a.ledger.Endpoints(ctx, report.SessionID, era.Contract)
	if err != nil {
		return unavailable(err, "ledger")
	}
	records, err := a.bets.Bets(ctx, report.SessionID)
	if err != nil {
		return unavailable(err, "backend")
	}
	report.Rounds, err = a.verifier.Verify(report.SessionID, ep, records)
	return err
}

// Check 复核已经拿到的数据, 用于离线文件
func (a *Auditor) Check(sessionID uint64, ep *types.SessionEndpoints, records []*types.BetRecord) *Report {
	start := a.now()
	report := &Report{RunID: uuid.New().String(), SessionID: sessionID}
	llog := alog.New("run", report.RunID, "session", sessionID)

	var err error
	if era, eerr := a.verifier.Era(sessionID); eerr == nil {
		report.Era = era.Name
	}
	report.Rounds, err = a.verifier.Verify(sessionID, ep, records)
	a.finish(report, start, err)
	if err != nil {
		llog.Error("Check failed", "era", report.Era, "kind", report.Kind, "err", err)
	} else {
		llog.Info("Check ok", "era", report.Era, "rounds", report.Rounds)
	}
	return report
}

func (a *Auditor) finish(report *Report, start time.Time, err error) {
	report.Duration = a.now().Sub(start)
	if err != nil {
		report.Rounds = 0
		report.fail(err)
		a.recorder.Failure(report.Kind, report.Duration)
		return
	}
	a.recorder.Success(report.Rounds, report.Duration)
}
