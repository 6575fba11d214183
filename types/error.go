// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// 审计结论类错误, 除 ErrDataUnavailable 外都是确定性的, 重试没有意义
var (
	ErrUnsupportedSession   = errors.New("ErrUnsupportedSession")
	ErrDataUnavailable      = errors.New("ErrDataUnavailable")
	ErrLedgerIntegrity      = errors.New("ErrLedgerIntegrity")
	ErrInvalidRecord        = errors.New("ErrInvalidRecord")
	ErrCountMismatch        = errors.New("ErrCountMismatch")
	ErrBrokenHashChain      = errors.New("ErrBrokenHashChain")
	ErrInvalidSignature     = errors.New("ErrInvalidSignature")
	ErrBadOutcome           = errors.New("ErrBadOutcome")
	ErrBalanceMismatch      = errors.New("ErrBalanceMismatch")
	ErrFinalBalanceMismatch = errors.New("ErrFinalBalanceMismatch")
)

// 配置错误
var (
	ErrEraEmpty      = errors.New("ErrEraEmpty")
	ErrEraRange      = errors.New("ErrEraRange")
	ErrEraGap        = errors.New("ErrEraGap")
	ErrEraAddress    = errors.New("ErrEraAddress")
	ErrEraSigVersion = errors.New("ErrEraSigVersion")
)

// Side 哈希链/签名的哪一方
type Side string

// side
const (
	SideNone   Side = ""
	SideServer Side = "server"
	SideUser   Side = "user"
)

// VerifyError 带轮次和方向信息的审计错误
type VerifyError struct {
	Kind    error
	RoundID uint32
	Side    Side
	Detail  string
}

// NewVerifyError build a VerifyError, detail is formatted with fmt.Sprintf
func NewVerifyError(kind error, roundID uint32, side Side, format string, args ...interface{}) *VerifyError {
	return &VerifyError{
		Kind:    kind,
		RoundID: roundID,
		Side:    side,
		Detail:  fmt.Sprintf(format, args...),
	}
}

func (e *VerifyError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.RoundID != 0 {
		fmt.Fprintf(&b, " round=%d", e.RoundID)
	}
	if e.Side != SideNone {
		fmt.Fprintf(&b, " side=%s", e.Side)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Unwrap 支持 errors.Is(err, ErrXXX)
func (e *VerifyError) Unwrap() error { return e.Kind }

// Cause 兼容 github.com/pkg/errors
func (e *VerifyError) Cause() error { return e.Kind }

// IsRetryable 只有数据暂时拿不到的情况可以重试
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}

// FailedRound returns the round id attached to err, if any.
func FailedRound(err error) (uint32, bool) {
	var verr *VerifyError
	if errors.As(err, &verr) && verr.RoundID != 0 {
		return verr.RoundID, true
	}
	return 0, false
}

// ErrorKind maps err onto the sentinel it was built from, or nil if err does not belong to the
// audit taxonomy.
func ErrorKind(err error) error {
	for _, kind := range []error{
		ErrUnsupportedSession,
		ErrDataUnavailable,
		ErrLedgerIntegrity,
		ErrInvalidRecord,
		ErrCountMismatch,
		ErrBrokenHashChain,
		ErrInvalidSignature,
		ErrBadOutcome,
		ErrBalanceMismatch,
		ErrFinalBalanceMismatch,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
