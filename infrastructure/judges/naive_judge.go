package judges

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/minnaeval/ragjudge/internal/domain"
	"github.com/minnaeval/ragjudge/internal/ports"
)

var _ ports.LeaderboardJudge = (*NaiveJudge)(nil)

// NaiveLeaderboardSpec fixes the measures the naive baseline emits.
var NaiveLeaderboardSpec = domain.LeaderboardSpec{Measures: []domain.MeasureSpec{
	{Name: MeasureLength},
	{Name: MeasureRandom},
}}

// NaiveJudgeConfig defines the settings for the naive baseline judge.
type NaiveJudgeConfig struct {
	// OnMissing selects the coverage policy applied at build time.
	OnMissing domain.OnMissing `yaml:"on_missing" json:"on_missing" validate:"required,oneof=fix_aggregate drop fail"`
}

// DefaultNaiveJudgeConfig returns the standard naive judge settings.
func DefaultNaiveJudgeConfig() NaiveJudgeConfig {
	return NaiveJudgeConfig{OnMissing: domain.FixAggregate}
}

// NaiveJudge is an LLM-free baseline emitting the response word count and
// a pseudo-random score seeded deterministically from the (run, topic)
// key, so repeated invocations produce identical leaderboards. It ignores
// qrels entirely.
type NaiveJudge struct {
	name   string
	config NaiveJudgeConfig
	tracer trace.Tracer
}

// NewNaiveJudge creates a NaiveJudge with the given configuration.
func NewNaiveJudge(name string, config NaiveJudgeConfig) (*NaiveJudge, error) {
	if name == "" {
		return nil, ErrEmptyJudgeName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &NaiveJudge{
		name:   name,
		config: config,
		tracer: otel.Tracer("naive-judge"),
	}, nil
}

// Name returns the unique identifier for this judge instance.
func (nj *NaiveJudge) Name() string { return nj.name }

// Judge emits LENGTH and RANDOM measures per response and validates
// coverage against the topic list.
func (nj *NaiveJudge) Judge(
	ctx context.Context,
	responses []domain.Response,
	topics []domain.Topic,
	_ domain.Qrels,
) (domain.Leaderboard, error) {
	_, span := nj.tracer.Start(ctx, "NaiveJudge.Judge",
		trace.WithAttributes(
			attribute.String("judge.id", nj.name),
			attribute.Int("judge.responses", len(responses)),
		),
	)
	defer span.End()

	expectedTopicIDs := make([]string, len(topics))
	for i, t := range topics {
		expectedTopicIDs[i] = t.ID
	}

	builder := domain.NewLeaderboardBuilder(NaiveLeaderboardSpec)
	for _, response := range responses {
		values := map[string]float64{
			MeasureLength: float64(len(strings.Fields(response.Text))),
			MeasureRandom: seededRandom(response.RunID + response.TopicID),
		}
		if err := builder.Add(response.RunID, response.TopicID, values); err != nil {
			return domain.Leaderboard{}, fmt.Errorf("judge %s: %w", nj.name, err)
		}
	}

	leaderboard, err := builder.Build(expectedTopicIDs, nj.config.OnMissing)
	if err != nil {
		span.RecordError(err)
		return domain.Leaderboard{}, fmt.Errorf("judge %s: %w", nj.name, err)
	}
	span.SetAttributes(attribute.Int("judge.entries", len(leaderboard.Entries)))
	return leaderboard, nil
}

// seededRandom returns a uniform [0, 1) value fixed by the seed string.
func seededRandom(seed string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	// #nosec G404 - deterministic scores are the point of this baseline
	return rand.New(rand.NewSource(int64(h.Sum64()))).Float64()
}
