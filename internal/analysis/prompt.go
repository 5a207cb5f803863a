package analysis

import (
	"encoding/json"
	"strings"
)

const noContent = "No additional content provided"

const systemPrompt = "You are an elite intelligence analyst. You look past the headline to " +
	"motives, patterns and likely futures, and you give strategic, actionable advice. " +
	"Answer with a single JSON object and nothing else."

const responseContract = `Return one JSON object with exactly these keys:

{
  "summary": "2-3 sentence summary",
  "deepInsights": {
    "motive": "underlying motives and driving forces",
    "patterns": "recurring themes and historical precedent",
    "whyNow": "what triggered this at this moment",
    "stakeholders": "who gains, who loses, and their interests",
    "hiddenFactors": "non-obvious factors that matter"
  },
  "predictions": [
    "immediate outcome (next 24-48 hours)",
    "short-term consequence (next week)",
    "medium-term impact (next month)",
    "long-term implication (next 6-12 months)",
    "wild card scenario"
  ],
  "whatHappensNext": {
    "mostLikely": "most probable outcome with reasoning",
    "bestCase": "best possible scenario",
    "worstCase": "worst possible scenario",
    "blackSwan": "unexpected but high-impact possibility"
  },
  "actionableInsights": ["3-5 practical takeaways for this reader"],
  "biasAnalysis": {
    "overall": "one of: left, center, right, mixed",
    "confidence": "number between 0 and 1",
    "reasoning": "brief explanation of the detected bias"
  },
  "relatedTrends": ["connected trend", "connected trend", "connected trend"]
}

"predictions" must contain exactly 5 strings in the order shown.
Focus on why it happened and what comes next, not only on what happened.`

func buildUserPrompt(req Request) (string, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		content = noContent
	}

	var b strings.Builder
	b.WriteString("Provide deep insights for this item.\n\n")
	b.WriteString("Title: " + strings.TrimSpace(req.Title) + "\n")
	b.WriteString("Content: " + content + "\n")
	b.WriteString("Source: " + strings.TrimSpace(req.SourceLabel) + "\n")

	if req.UserContext != nil && !req.UserContext.IsZero() {
		ctxJSON, err := json.Marshal(req.UserContext)
		if err != nil {
			return "", err
		}
		b.WriteString("User Context: " + string(ctxJSON) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(responseContract)
	return b.String(), nil
}
