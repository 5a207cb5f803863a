// Package analysis turns one feed item into a structured "deep insight"
// analysis through a generative text provider.
//
// This package enables datinsight to:
// - Build the analyst prompt from an item and the user's context
// - Parse and strictly validate the provider's JSON answer
// - Surface any malformed answer as ContentAnalysisError
package analysis

import (
	"fmt"
	"strings"
)

// PredictionCount is the fixed number of predictions, in the order
// immediate, short-term, medium-term, long-term, wildcard.
const PredictionCount = 5

// Request is the input for one analysis.
type Request struct {
	Title       string       `json:"title"`
	Content     string       `json:"content,omitempty"`
	SourceLabel string       `json:"source"`
	UserContext *UserContext `json:"userContext,omitempty"`
}

// UserContext personalizes the actionable insights.
type UserContext struct {
	Goals          []string `json:"goals,omitempty" yaml:"goals,omitempty"`
	Background     string   `json:"background,omitempty" yaml:"background,omitempty"`
	Interests      []string `json:"interests,omitempty" yaml:"interests,omitempty"`
	AdditionalInfo string   `json:"additionalInfo,omitempty" yaml:"additionalInfo,omitempty"`
}

// IsZero reports whether no field is set.
func (u UserContext) IsZero() bool {
	return len(u.Goals) == 0 && u.Background == "" && len(u.Interests) == 0 && u.AdditionalInfo == ""
}

// Result is a validated analysis.
type Result struct {
	Summary            string                  `json:"summary"`
	DeepInsights       DeepInsights            `json:"deepInsights"`
	Predictions        [PredictionCount]string `json:"predictions"`
	WhatHappensNext    Outlook                 `json:"whatHappensNext"`
	ActionableInsights []string                `json:"actionableInsights"`
	BiasAnalysis       BiasAnalysis            `json:"biasAnalysis"`
	RelatedTrends      []string                `json:"relatedTrends"`
}

type DeepInsights struct {
	Motive        string `json:"motive"`
	Patterns      string `json:"patterns"`
	WhyNow        string `json:"whyNow"`
	Stakeholders  string `json:"stakeholders"`
	HiddenFactors string `json:"hiddenFactors"`
}

type Outlook struct {
	MostLikely string `json:"mostLikely"`
	BestCase   string `json:"bestCase"`
	WorstCase  string `json:"worstCase"`
	BlackSwan  string `json:"blackSwan"`
}

type BiasAnalysis struct {
	Overall    Bias    `json:"overall"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Bias is the detected political lean of a piece of content.
type Bias int

const (
	BiasLeft Bias = iota + 1
	BiasCenter
	BiasRight
	BiasMixed
)

func (b Bias) String() string {
	switch b {
	case BiasLeft:
		return "left"
	case BiasCenter:
		return "center"
	case BiasRight:
		return "right"
	case BiasMixed:
		return "mixed"
	default:
		return fmt.Sprintf("bias(%d)", int(b))
	}
}

// ParseBias accepts the lowercase labels in any case.
func ParseBias(s string) (Bias, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return BiasLeft, nil
	case "center", "centre":
		return BiasCenter, nil
	case "right":
		return BiasRight, nil
	case "mixed":
		return BiasMixed, nil
	default:
		return 0, fmt.Errorf("unknown bias label %q", s)
	}
}

func (b Bias) MarshalText() ([]byte, error) {
	if b < BiasLeft || b > BiasMixed {
		return nil, fmt.Errorf("invalid bias %d", int(b))
	}
	return []byte(b.String()), nil
}

func (b *Bias) UnmarshalText(text []byte) error {
	parsed, err := ParseBias(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
