package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/gauthierbraillon/datinsight/internal/llm"
	"github.com/gauthierbraillon/datinsight/internal/metrics"
)

const (
	DefaultTemperature = 0.8
	DefaultMaxTokens   = 1500
)

var requiredKeys = []string{
	"summary",
	"deepInsights",
	"predictions",
	"whatHappensNext",
	"actionableInsights",
	"biasAnalysis",
	"relatedTrends",
}

// Option configures a Requestor.
type Option func(*Requestor)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(r *Requestor) {
		if t >= 0 {
			r.temperature = t
		}
	}
}

// WithMaxTokens overrides the completion budget.
func WithMaxTokens(n int) Option {
	return func(r *Requestor) {
		if n > 0 {
			r.maxTokens = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Requestor) {
		if l != nil {
			r.logger = l
		}
	}
}

// Requestor asks a Generator for an analysis and validates the answer.
type Requestor struct {
	gen         llm.Generator
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// NewRequestor creates a Requestor backed by gen.
func NewRequestor(gen llm.Generator, opts ...Option) *Requestor {
	r := &Requestor{
		gen:         gen,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Analyze runs one analysis. Every failure is a *ContentAnalysisError and no
// partial result is returned.
func (r *Requestor) Analyze(ctx context.Context, req Request) (Result, error) {
	result, err := r.analyze(ctx, req)
	if err != nil {
		metrics.RecordAnalysis("error")
		r.logger.Error("content analysis failed", "title", req.Title, "source", req.SourceLabel, "error", err)
		return Result{}, err
	}
	metrics.RecordAnalysis("ok")
	return result, nil
}

func (r *Requestor) analyze(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Title) == "" {
		return Result{}, &ContentAnalysisError{Stage: StageValidate, Err: errors.New("title is required")}
	}

	userPrompt, err := buildUserPrompt(req)
	if err != nil {
		return Result{}, &ContentAnalysisError{Stage: StageGenerate, Err: fmt.Errorf("encode user context: %w", err)}
	}

	resp, err := r.gen.Generate(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    r.maxTokens,
		Temperature:  r.temperature,
		JSONMode:     true,
	})
	if err != nil {
		return Result{}, &ContentAnalysisError{Stage: StageGenerate, Err: err}
	}
	r.logger.Debug("analysis generated", "model", resp.Model, "content_len", len(resp.Content))

	return Parse(resp.Content)
}

// wireResult mirrors Result with loose types so that shape errors can be
// reported precisely.
type wireResult struct {
	Summary            string       `json:"summary"`
	DeepInsights       DeepInsights `json:"deepInsights"`
	Predictions        []string     `json:"predictions"`
	WhatHappensNext    Outlook      `json:"whatHappensNext"`
	ActionableInsights []string     `json:"actionableInsights"`
	BiasAnalysis       struct {
		Overall    string   `json:"overall"`
		Confidence *float64 `json:"confidence"`
		Reasoning  string   `json:"reasoning"`
	} `json:"biasAnalysis"`
	RelatedTrends []string `json:"relatedTrends"`
}

// Parse extracts and validates an analysis from generated text.
func Parse(text string) (Result, error) {
	body := extractJSON(text)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &keys); err != nil {
		return Result{}, &ContentAnalysisError{Stage: StageParse, Err: err}
	}
	for _, k := range requiredKeys {
		v, ok := keys[k]
		if !ok || string(v) == "null" {
			return Result{}, &ContentAnalysisError{Stage: StageValidate, Err: fmt.Errorf("missing key %q", k)}
		}
	}

	var w wireResult
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return Result{}, &ContentAnalysisError{Stage: StageParse, Err: err}
	}
	return w.toResult()
}

func (w wireResult) toResult() (Result, error) {
	if len(w.Predictions) != PredictionCount {
		return Result{}, &ContentAnalysisError{
			Stage: StageValidate,
			Err:   fmt.Errorf("expected %d predictions, got %d", PredictionCount, len(w.Predictions)),
		}
	}
	if w.DeepInsights == (DeepInsights{}) {
		return Result{}, &ContentAnalysisError{Stage: StageValidate, Err: errors.New("deepInsights is empty")}
	}
	if w.WhatHappensNext == (Outlook{}) {
		return Result{}, &ContentAnalysisError{Stage: StageValidate, Err: errors.New("whatHappensNext is empty")}
	}
	bias, err := ParseBias(w.BiasAnalysis.Overall)
	if err != nil {
		return Result{}, &ContentAnalysisError{Stage: StageValidate, Err: err}
	}
	if w.BiasAnalysis.Confidence == nil {
		return Result{}, &ContentAnalysisError{Stage: StageValidate, Err: errors.New("bias confidence is missing")}
	}
	c := *w.BiasAnalysis.Confidence
	if math.IsNaN(c) || c < 0 || c > 1 {
		return Result{}, &ContentAnalysisError{Stage: StageValidate, Err: fmt.Errorf("bias confidence %v outside [0,1]", c)}
	}

	res := Result{
		Summary:            w.Summary,
		DeepInsights:       w.DeepInsights,
		WhatHappensNext:    w.WhatHappensNext,
		ActionableInsights: w.ActionableInsights,
		BiasAnalysis: BiasAnalysis{
			Overall:    bias,
			Confidence: c,
			Reasoning:  w.BiasAnalysis.Reasoning,
		},
		RelatedTrends: w.RelatedTrends,
	}
	copy(res.Predictions[:], w.Predictions)
	return res, nil
}

// extractJSON drops markdown fences and any prose around the outermost object.
func extractJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return strings.TrimSpace(s)
}
