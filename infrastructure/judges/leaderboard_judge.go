package judges

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/minnaeval/ragjudge/internal/domain"
	"github.com/minnaeval/ragjudge/internal/ports"
)

var _ ports.LeaderboardJudge = (*LeaderboardJudge)(nil)

// Default configuration values for leaderboard judging.
const (
	DefaultEntailmentThreshold = 0.5
	DefaultClaimTemperature    = 0.0
)

const claimSystemPrompt = "You are a fact extractor. Extract only specific factual " +
	"assertions from this response that are: verifiable against a source document, " +
	"not common knowledge, and specific enough to be true or false. " +
	"Return ONLY a JSON array of strings with no other text."

// LeaderboardSpec fixes the measures the leaderboard judge emits.
var LeaderboardSpec = domain.LeaderboardSpec{Measures: []domain.MeasureSpec{
	{Name: MeasureCompleteness},
	{Name: MeasureAttribution},
	{Name: MeasureFinal},
}}

// LeaderboardJudgeConfig defines the settings for leaderboard scoring.
type LeaderboardJudgeConfig struct {
	// EntailmentThreshold is the minimum entailment probability for a
	// document to count as supporting a claim.
	EntailmentThreshold float64 `yaml:"entailment_threshold" json:"entailment_threshold" validate:"min=0.0,max=1.0"`

	// Temperature controls sampling randomness for claim extraction.
	Temperature float64 `yaml:"temperature" json:"temperature" validate:"min=0.0,max=1.0"`

	// OnMissing selects the coverage policy applied at build time.
	OnMissing domain.OnMissing `yaml:"on_missing" json:"on_missing" validate:"required,oneof=fix_aggregate drop fail"`
}

// DefaultLeaderboardJudgeConfig returns the standard judging settings.
func DefaultLeaderboardJudgeConfig() LeaderboardJudgeConfig {
	return LeaderboardJudgeConfig{
		EntailmentThreshold: DefaultEntailmentThreshold,
		Temperature:         DefaultClaimTemperature,
		OnMissing:           domain.FixAggregate,
	}
}

// LeaderboardJudge scores responses into a leaderboard by combining a
// completeness score from previously built qrels with an attribution score
// from entailment checks against each response's source documents.
//
// The pipeline per invocation:
//
//  1. One claim-extraction prompt per response, dispatched as a single
//     batch; replies are joined back by correlation key. A malformed reply
//     degrades that response's claim list to empty instead of failing.
//  2. Per response, completeness = qrels grade for (topic, hash of the
//     response's own text) / 3, defaulting to 0 when the row is absent.
//  3. Per claim, the response's documents are tested in slice order until
//     one entails the claim above the threshold; attribution is the
//     supported fraction, 0 when there are no claims.
//  4. FINAL_SCORE is the unweighted mean of the two, and the builder
//     validates coverage against the expected topic set under the
//     configured policy.
//
// Runner and scorer errors are fatal for the whole invocation; the judge
// performs no retries of its own.
type LeaderboardJudge struct {
	name   string
	config LeaderboardJudgeConfig
	runner ports.BatchRunner
	scorer ports.EntailmentScorer
	tracer trace.Tracer
}

// NewLeaderboardJudge creates a LeaderboardJudge with the given runner,
// entailment scorer, and configuration.
func NewLeaderboardJudge(
	name string,
	runner ports.BatchRunner,
	scorer ports.EntailmentScorer,
	config LeaderboardJudgeConfig,
) (*LeaderboardJudge, error) {
	if name == "" {
		return nil, ErrEmptyJudgeName
	}
	if runner == nil {
		return nil, ErrNilRunner
	}
	if scorer == nil {
		return nil, ErrNilScorer
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &LeaderboardJudge{
		name:   name,
		config: config,
		runner: runner,
		scorer: scorer,
		tracer: otel.Tracer("leaderboard-judge"),
	}, nil
}

// Name returns the unique identifier for this judge instance.
func (lj *LeaderboardJudge) Name() string { return lj.name }

// Judge scores all responses and builds the validated leaderboard.
func (lj *LeaderboardJudge) Judge(
	ctx context.Context,
	responses []domain.Response,
	topics []domain.Topic,
	qrels domain.Qrels,
) (domain.Leaderboard, error) {
	ctx, span := lj.tracer.Start(ctx, "LeaderboardJudge.Judge",
		trace.WithAttributes(
			attribute.String("judge.id", lj.name),
			attribute.Int("judge.responses", len(responses)),
			attribute.Int("judge.topics", len(topics)),
			attribute.Int("judge.qrels_rows", qrels.Len()),
			attribute.Float64("config.entailment_threshold", lj.config.EntailmentThreshold),
			attribute.String("config.on_missing", string(lj.config.OnMissing)),
		),
	)
	defer span.End()

	expectedTopicIDs := make([]string, len(topics))
	for i, t := range topics {
		expectedTopicIDs[i] = t.ID
	}

	claims, err := lj.extractClaims(ctx, responses)
	if err != nil {
		span.RecordError(err)
		return domain.Leaderboard{}, err
	}

	builder := domain.NewLeaderboardBuilder(LeaderboardSpec)
	for _, response := range responses {
		completeness := lj.completenessScore(qrels, response)

		attribution, err := lj.attributionScore(ctx, response, claims[response.Key()])
		if err != nil {
			span.RecordError(err)
			return domain.Leaderboard{}, fmt.Errorf("judge %s: attribution for run %q topic %q: %w",
				lj.name, response.RunID, response.TopicID, err)
		}

		values := map[string]float64{
			MeasureCompleteness: completeness,
			MeasureAttribution:  attribution,
			MeasureFinal:        (completeness + attribution) / 2,
		}
		if err := builder.Add(response.RunID, response.TopicID, values); err != nil {
			return domain.Leaderboard{}, fmt.Errorf("judge %s: %w", lj.name, err)
		}
	}

	leaderboard, err := builder.Build(expectedTopicIDs, lj.config.OnMissing)
	if err != nil {
		span.RecordError(err)
		return domain.Leaderboard{}, fmt.Errorf("judge %s: %w", lj.name, err)
	}

	report := domain.VerifyCoverage(leaderboard, expectedTopicIDs)
	span.SetAttributes(
		attribute.Int("judge.entries", len(leaderboard.Entries)),
		attribute.Int("judge.fabricated_entries", report.Fabricated),
		attribute.Int("judge.unexpected_entries", len(report.Unexpected)),
		attribute.Bool("judge.coverage_complete", report.Complete()),
	)
	return leaderboard, nil
}

// extractClaims runs one claim-extraction prompt per response as a single
// batch and joins the parsed claim lists back by (run, topic) key. A reply
// that is not a JSON array of strings yields an empty claim list for that
// response, degrading its attribution to 0 rather than failing the run.
func (lj *LeaderboardJudge) extractClaims(ctx context.Context, responses []domain.Response) (map[domain.RunTopicKey][]string, error) {
	requests := make([]ports.BatchRequest, len(responses))
	for i, response := range responses {
		requests[i] = ports.BatchRequest{
			ID:          fmt.Sprintf("%s/%s", response.RunID, response.TopicID),
			System:      claimSystemPrompt,
			User:        response.Text,
			Temperature: lj.config.Temperature,
		}
	}

	results, err := lj.runner.RunBatched(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("judge %s: claim extraction batch failed: %w", lj.name, err)
	}
	if len(results) != len(requests) {
		return nil, fmt.Errorf("judge %s: %w", lj.name, ErrBatchSizeMismatch)
	}

	claims := make(map[domain.RunTopicKey][]string, len(responses))
	for i, result := range results {
		if result.ID != requests[i].ID {
			return nil, fmt.Errorf("judge %s: result %d correlation %q does not match request %q",
				lj.name, i, result.ID, requests[i].ID)
		}
		claims[responses[i].Key()] = parseClaims(result.Text)
	}
	return claims, nil
}

// parseClaims decodes a claim-extraction reply, returning nil on any parse
// failure.
func parseClaims(text string) []string {
	jsonStr := extractJSONArray(text)
	if jsonStr == "" {
		return nil
	}
	var parsed []string
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil
	}
	return parsed
}

// completenessScore looks up the qrels grade keyed by the hash of the
// response's own text. The join requires the exact text that was graded;
// a missing row scores 0.
func (lj *LeaderboardJudge) completenessScore(qrels domain.Qrels, response domain.Response) float64 {
	grade, ok := qrels.Lookup(response.TopicID, domain.DocID(response.Text))
	if !ok {
		return 0.0
	}
	return float64(grade) / float64(domain.MaxGrade)
}

// attributionScore is the fraction of claims supported by at least one of
// the response's cited documents. Documents are tested in slice order and
// the search short-circuits on the first supporting document. Zero claims
// score 0.0 by definition, never a division by zero.
func (lj *LeaderboardJudge) attributionScore(ctx context.Context, response domain.Response, claims []string) (float64, error) {
	if len(claims) == 0 {
		return 0.0, nil
	}

	documents := response.CitedDocuments()
	supported := 0
	for _, claim := range claims {
		for _, doc := range documents {
			predictions, err := lj.scorer.Predict(ctx, []ports.EntailmentPair{
				{Premise: doc.Text, Hypothesis: claim},
			})
			if err != nil {
				return 0, err
			}
			if len(predictions) != 1 {
				return 0, fmt.Errorf("entailment scorer returned %d predictions for 1 pair: %w",
					len(predictions), ports.ErrInvalidResponse)
			}
			if predictions[0].Entailment > lj.config.EntailmentThreshold {
				supported++
				break
			}
		}
	}
	return float64(supported) / float64(len(claims)), nil
}
