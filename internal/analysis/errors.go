package analysis

import (
	"errors"
	"fmt"
)

// ErrContentAnalysis matches every ContentAnalysisError.
var ErrContentAnalysis = errors.New("content analysis failed")

// Stages at which an analysis can fail.
const (
	StageGenerate = "generate"
	StageParse    = "parse"
	StageValidate = "validate"
)

// ContentAnalysisError reports a failed provider call or an answer that is not
// a well-formed analysis. Callers may retry.
type ContentAnalysisError struct {
	Stage string
	Err   error
}

func (e *ContentAnalysisError) Error() string {
	return fmt.Sprintf("content analysis failed at %s: %v", e.Stage, e.Err)
}

func (e *ContentAnalysisError) Unwrap() error { return e.Err }

func (e *ContentAnalysisError) Is(target error) bool { return target == ErrContentAnalysis }
