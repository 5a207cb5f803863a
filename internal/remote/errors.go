package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gauthierbraillon/datinsight/internal/analysis"
	"github.com/gauthierbraillon/datinsight/internal/feed"
	"github.com/gauthierbraillon/datinsight/internal/server"
)

// Error is a failed call to the server. It matches the same sentinels the
// in-process service would return, chosen from the response code.
type Error struct {
	Op        string
	Status    int // 0 when the server was unreachable
	Code      string
	Message   string
	Details   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("remote %s", e.Op)
	if e.Status != 0 && e.Status != http.StatusOK {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case feed.ErrConfiguration:
		return e.Code == server.CodeConfiguration
	case feed.ErrAggregationFailed:
		return e.Code == server.CodeAggregationFailed
	case analysis.ErrContentAnalysis:
		return e.Code == server.CodeAnalysisFailed
	case context.DeadlineExceeded:
		return e.Code == server.CodeTimeout
	}
	return false
}

type wireError struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   string `json:"details"`
	Retryable bool   `json:"retryable"`
}

func decodeError(op string, status int, raw []byte) *Error {
	e := &Error{Op: op, Status: status}
	var w wireError
	if err := json.Unmarshal(raw, &w); err != nil || w.Error == "" {
		e.Message = http.StatusText(status)
		return e
	}
	e.Code = w.Code
	e.Message = w.Error
	e.Details = w.Details
	e.Retryable = w.Retryable
	return e
}
