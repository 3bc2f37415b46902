package judges

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"

	"github.com/minnaeval/ragjudge/internal/domain"
	"github.com/minnaeval/ragjudge/internal/ports"
)

var (
	_ ports.LeaderboardJudge = (*LexicalJudge)(nil)

	// foldCaser is a package-level Unicode case folder; folding is the
	// locale-independent way to compare text case-insensitively.
	foldCaser = cases.Fold()
)

// MeasureLexicalCoverage is the fraction of a topic's nuggets whose gold
// answer appears (fuzzily) in the response text.
const MeasureLexicalCoverage = "LEXICAL_COVERAGE"

// DefaultLexicalThreshold is the minimum normalized similarity for a gold
// answer to count as present.
const DefaultLexicalThreshold = 0.8

// LexicalLeaderboardSpec fixes the measures the lexical baseline emits.
var LexicalLeaderboardSpec = domain.LeaderboardSpec{Measures: []domain.MeasureSpec{
	{Name: MeasureLexicalCoverage},
}}

// LexicalJudgeConfig defines the settings for the lexical baseline judge.
type LexicalJudgeConfig struct {
	// Threshold is the minimum normalized Levenshtein similarity (0.0-1.0)
	// for a gold answer to count as matched.
	Threshold float64 `yaml:"threshold" json:"threshold" validate:"min=0.0,max=1.0"`

	// OnMissing selects the coverage policy applied at build time.
	OnMissing domain.OnMissing `yaml:"on_missing" json:"on_missing" validate:"required,oneof=fix_aggregate drop fail"`
}

// DefaultLexicalJudgeConfig returns the standard lexical judge settings.
func DefaultLexicalJudgeConfig() LexicalJudgeConfig {
	return LexicalJudgeConfig{
		Threshold: DefaultLexicalThreshold,
		OnMissing: domain.FixAggregate,
	}
}

// LexicalJudge is an LLM-free completeness proxy: it checks, per nugget,
// whether any gold answer fuzzy-matches a window of the response text
// using normalized Levenshtein similarity over case-folded words. It needs
// the nugget banks that nugget creation produced, provided at
// construction; topics without a bank are skipped the same way qrels
// creation skips them.
type LexicalJudge struct {
	name   string
	config LexicalJudgeConfig
	banks  domain.NuggetBanks
	tracer trace.Tracer
}

// NewLexicalJudge creates a LexicalJudge over the given nugget banks.
func NewLexicalJudge(name string, banks domain.NuggetBanks, config LexicalJudgeConfig) (*LexicalJudge, error) {
	if name == "" {
		return nil, ErrEmptyJudgeName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &LexicalJudge{
		name:   name,
		config: config,
		banks:  banks,
		tracer: otel.Tracer("lexical-judge"),
	}, nil
}

// Name returns the unique identifier for this judge instance.
func (lx *LexicalJudge) Name() string { return lx.name }

// Judge emits the lexical coverage measure per response and validates
// coverage against the topic list.
func (lx *LexicalJudge) Judge(
	ctx context.Context,
	responses []domain.Response,
	topics []domain.Topic,
	_ domain.Qrels,
) (domain.Leaderboard, error) {
	_, span := lx.tracer.Start(ctx, "LexicalJudge.Judge",
		trace.WithAttributes(
			attribute.String("judge.id", lx.name),
			attribute.Int("judge.responses", len(responses)),
			attribute.Float64("config.threshold", lx.config.Threshold),
		),
	)
	defer span.End()

	expectedTopicIDs := make([]string, len(topics))
	for i, t := range topics {
		expectedTopicIDs[i] = t.ID
	}

	builder := domain.NewLeaderboardBuilder(LexicalLeaderboardSpec)
	for _, response := range responses {
		bank, ok := lx.banks.Bank(response.TopicID)
		if !ok || len(bank.Nuggets) == 0 {
			continue
		}

		matched := 0
		for _, nugget := range bank.Nuggets {
			if lx.nuggetCovered(nugget, response.Text) {
				matched++
			}
		}

		values := map[string]float64{
			MeasureLexicalCoverage: float64(matched) / float64(len(bank.Nuggets)),
		}
		if err := builder.Add(response.RunID, response.TopicID, values); err != nil {
			return domain.Leaderboard{}, fmt.Errorf("judge %s: %w", lx.name, err)
		}
	}

	leaderboard, err := builder.Build(expectedTopicIDs, lx.config.OnMissing)
	if err != nil {
		span.RecordError(err)
		return domain.Leaderboard{}, fmt.Errorf("judge %s: %w", lx.name, err)
	}
	span.SetAttributes(attribute.Int("judge.entries", len(leaderboard.Entries)))
	return leaderboard, nil
}

// nuggetCovered reports whether any gold answer fuzzy-matches the response.
func (lx *LexicalJudge) nuggetCovered(nugget domain.Nugget, responseText string) bool {
	response := foldCaser.String(responseText)
	responseWords := strings.Fields(response)

	for _, gold := range nugget.GoldAnswers {
		folded := foldCaser.String(gold)
		if folded == "" {
			continue
		}
		if strings.Contains(response, folded) {
			return true
		}
		if bestWindowSimilarity(responseWords, folded) >= lx.config.Threshold {
			return true
		}
	}
	return false
}

// bestWindowSimilarity slides a window of the gold answer's word length
// over the response and returns the highest normalized Levenshtein
// similarity. Whole-string similarity would drown a short answer in a
// long response, so matching is windowed.
func bestWindowSimilarity(responseWords []string, gold string) float64 {
	goldLen := len(strings.Fields(gold))
	if goldLen == 0 || len(responseWords) < goldLen {
		return 0
	}

	best := 0.0
	for i := 0; i+goldLen <= len(responseWords); i++ {
		window := strings.Join(responseWords[i:i+goldLen], " ")
		if s := similarity(window, gold); s > best {
			best = s
		}
	}
	return best
}

// similarity is 1 minus the normalized Levenshtein distance.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
