package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gauthierbraillon/datinsight/internal/analysis"
	"github.com/gauthierbraillon/datinsight/internal/feed"
)

// Machine-readable error codes carried in errorBody.Code.
const (
	CodeConfiguration     = "configuration"
	CodeAggregationFailed = "aggregation_failed"
	CodeAnalysisFailed    = "analysis_failed"
	CodeTimeout           = "timeout"
	CodeBadRequest        = "bad_request"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// mapError converts a service error into an echo.HTTPError carrying an
// errorBody. action names the failed operation ("fetch news").
func mapError(err error, action string) *echo.HTTPError {
	body := errorBody{Error: "Failed to " + action, Code: CodeInternal, Details: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, feed.ErrConfiguration):
		body.Error = "Service not configured"
		body.Code = CodeConfiguration
	case errors.Is(err, feed.ErrAggregationFailed):
		status = http.StatusBadGateway
		body.Code = CodeAggregationFailed
	case errors.Is(err, analysis.ErrContentAnalysis):
		status = http.StatusBadGateway
		body.Code = CodeAnalysisFailed
		body.Retryable = true
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		body.Code = CodeTimeout
		body.Retryable = true
	}

	return echo.NewHTTPError(status, body).SetInternal(err)
}

func badRequest(msg, details string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: msg, Code: CodeBadRequest, Details: details})
}

// handleError renders every error as an errorBody.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := errorBody{Error: "Internal server error"}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch msg := he.Message.(type) {
		case errorBody:
			body = msg
		case string:
			body.Error = msg
		default:
			body.Error = fmt.Sprint(msg)
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.logger.Error("write error response", "error", err)
	}
}
