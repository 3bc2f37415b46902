// Package judges contains the judge plugin implementations for the RAG
// auto-judge pipeline: nugget creation, qrels grading, and leaderboard
// scoring, plus LLM-free baseline judges.
package judges

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Measure names emitted by the leaderboard judges.
const (
	// MeasureCompleteness is the normalized qrels grade (grade / 3).
	MeasureCompleteness = "COMPLETENESS_SCORE"

	// MeasureAttribution is the fraction of extracted claims supported by
	// at least one source document.
	MeasureAttribution = "ATTRIBUTION_SCORE"

	// MeasureFinal is the unweighted mean of completeness and attribution.
	MeasureFinal = "FINAL_SCORE"

	// MeasureLength is the naive judge's response word count.
	MeasureLength = "LENGTH"

	// MeasureRandom is the naive judge's deterministic pseudo-random score.
	MeasureRandom = "RANDOM"
)

// Common errors returned by judge constructors and executions.
var (
	// ErrEmptyJudgeName is returned when a judge is created with an empty name.
	ErrEmptyJudgeName = errors.New("judge name cannot be empty")

	// ErrNilRunner is returned when a judge requiring LLM access is created
	// without a batch runner.
	ErrNilRunner = errors.New("batch runner cannot be nil")

	// ErrNilScorer is returned when the leaderboard judge is created without
	// an entailment scorer.
	ErrNilScorer = errors.New("entailment scorer cannot be nil")

	// ErrBatchSizeMismatch is returned when the runner violates its
	// length-preserving contract.
	ErrBatchSizeMismatch = errors.New("batch result count does not match request count")
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// extractJSONArray pulls a JSON array out of a model reply that may wrap it
// in markdown fences or surrounding prose. Returns "" when no array is
// found.
func extractJSONArray(response string) string {
	response = strings.TrimSpace(response)

	if idx := strings.Index(response, "```"); idx != -1 {
		rest := response[idx+3:]
		// Skip a language tag such as "json".
		if nl := strings.Index(rest, "\n"); nl != -1 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end != -1 {
			candidate := strings.TrimSpace(rest[:end])
			if strings.HasPrefix(candidate, "[") {
				response = candidate
			}
		}
	}

	start := strings.Index(response, "[")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escapeNext := false
	for i := start; i < len(response); i++ {
		c := response[i]
		if escapeNext {
			escapeNext = false
			continue
		}
		switch {
		case c == '\\':
			escapeNext = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	return ""
}
