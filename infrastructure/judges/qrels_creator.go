package judges

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/minnaeval/ragjudge/internal/domain"
	"github.com/minnaeval/ragjudge/internal/ports"
)

var _ ports.QrelsCreator = (*QrelsCreator)(nil)

// DefaultQrelsTemperature keeps binary grading deterministic.
const DefaultQrelsTemperature = 0.0

const qrelsSystemPrompt = "Does this response answer this question? Reply 1 for yes, 0 for no."

// QrelsCreatorConfig defines the settings for qrels grading.
type QrelsCreatorConfig struct {
	// Temperature controls sampling randomness for the binary queries.
	Temperature float64 `yaml:"temperature" json:"temperature" validate:"min=0.0,max=1.0"`
}

// DefaultQrelsCreatorConfig returns the standard qrels grading settings.
func DefaultQrelsCreatorConfig() QrelsCreatorConfig {
	return QrelsCreatorConfig{Temperature: DefaultQrelsTemperature}
}

// QrelsCreator grades each response on the 0-3 integer scale from the
// fraction of its topic's nuggets the response answers. Every (response,
// nugget) pair becomes one yes/no LLM query, all dispatched as a single
// batch; binary scores are accumulated per (run, topic) and the grade is
// round(3 x mean) with ties rounding half away from zero.
//
// Responses whose topic has no nugget bank are skipped silently, as are
// responses whose key never accumulates a score (a topic with zero
// nuggets). The emitted grade records hash the response text into the
// qrels doc ID; duplicate (topic, doc) keys keep the maximum grade.
type QrelsCreator struct {
	name   string
	config QrelsCreatorConfig
	runner ports.BatchRunner
	tracer trace.Tracer
}

// NewQrelsCreator creates a QrelsCreator with the given runner and
// configuration.
func NewQrelsCreator(name string, runner ports.BatchRunner, config QrelsCreatorConfig) (*QrelsCreator, error) {
	if name == "" {
		return nil, ErrEmptyJudgeName
	}
	if runner == nil {
		return nil, ErrNilRunner
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &QrelsCreator{
		name:   name,
		config: config,
		runner: runner,
		tracer: otel.Tracer("qrels-creator"),
	}, nil
}

// Name returns the unique identifier for this creator instance.
func (qc *QrelsCreator) Name() string { return qc.name }

// CreateQrels grades the responses and builds the deduplicated qrels table.
func (qc *QrelsCreator) CreateQrels(ctx context.Context, responses []domain.Response, banks domain.NuggetBanks) (domain.Qrels, error) {
	ctx, span := qc.tracer.Start(ctx, "QrelsCreator.CreateQrels",
		trace.WithAttributes(
			attribute.String("judge.id", qc.name),
			attribute.Int("qrels.responses", len(responses)),
			attribute.Int("qrels.topic_banks", banks.Len()),
		),
	)
	defer span.End()

	// One request per (response, nugget) pair, with the originating
	// (run, topic) key carried alongside so results join back by
	// correlation rather than by recomputing positions.
	var requests []ports.BatchRequest
	var keys []domain.RunTopicKey
	for _, response := range responses {
		bank, ok := banks.Bank(response.TopicID)
		if !ok {
			continue
		}
		for i, nugget := range bank.Nuggets {
			requests = append(requests, ports.BatchRequest{
				ID:          fmt.Sprintf("%s/%s#%d", response.RunID, response.TopicID, i),
				System:      qrelsSystemPrompt,
				User:        fmt.Sprintf("Question: %s\n\nResponse: %s", nugget.Question, response.Text),
				Temperature: qc.config.Temperature,
			})
			keys = append(keys, response.Key())
		}
	}

	results, err := qc.runner.RunBatched(ctx, requests)
	if err != nil {
		span.RecordError(err)
		return domain.Qrels{}, fmt.Errorf("judge %s: grading batch failed: %w", qc.name, err)
	}
	if len(results) != len(requests) {
		return domain.Qrels{}, fmt.Errorf("judge %s: %w", qc.name, ErrBatchSizeMismatch)
	}

	accumulator := domain.NewScoreAccumulator()
	unparseable := 0
	for i, result := range results {
		if result.ID != requests[i].ID {
			return domain.Qrels{}, fmt.Errorf("judge %s: result %d correlation %q does not match request %q",
				qc.name, i, result.ID, requests[i].ID)
		}
		verdict := ParseBinaryVerdict(result.Text)
		if verdict == VerdictUnparseable {
			unparseable++
		}
		accumulator.Add(keys[i], verdict.Score())
	}
	span.SetAttributes(
		attribute.Int("qrels.graded_pairs", len(results)),
		attribute.Int("qrels.unparseable_replies", unparseable),
	)

	var records []domain.GradeRecord
	for _, response := range responses {
		mean, ok := accumulator.Mean(response.Key())
		if !ok {
			// Topic missing from the banks or bank had zero nuggets.
			continue
		}
		records = append(records, domain.GradeRecord{
			TopicID: response.TopicID,
			Text:    response.Text,
			Grade:   gradeFromMean(mean),
		})
	}

	qrels, err := domain.BuildQrels(records)
	if err != nil {
		return domain.Qrels{}, fmt.Errorf("judge %s: %w", qc.name, err)
	}
	span.SetAttributes(attribute.Int("qrels.rows", qrels.Len()))
	return qrels, nil
}

// gradeFromMean maps the mean of binary nugget scores onto the 0-3 grade
// scale. Rounding is half away from zero: a mean of 0.5 grades as 2.
func gradeFromMean(mean float64) int {
	grade := int(math.Round(float64(domain.MaxGrade) * mean))
	if grade < domain.MinGrade {
		return domain.MinGrade
	}
	if grade > domain.MaxGrade {
		return domain.MaxGrade
	}
	return grade
}
