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

var _ ports.NuggetCreator = (*NuggetCreator)(nil)

// Default configuration values for nugget creation.
const (
	DefaultMaxNuggets        = 10
	DefaultNuggetTemperature = 0.0
)

const nuggetSystemPrompt = "Extract distinct sub-questions. " +
	"Return ONLY a JSON array with no other text. Each element must have " +
	"'question' and 'answer' fields. " +
	`Example: [{"question": "Why is the puppy so cute?", "answer": "Because he's chubby."}]`

// NuggetCreatorConfig defines the settings for nugget creation.
type NuggetCreatorConfig struct {
	// MaxNuggets caps the number of nuggets kept per topic.
	MaxNuggets int `yaml:"max_nuggets" json:"max_nuggets" validate:"required,min=1,max=100"`

	// Temperature controls sampling randomness for the decomposition
	// prompts; 0 keeps decomposition deterministic.
	Temperature float64 `yaml:"temperature" json:"temperature" validate:"min=0.0,max=1.0"`
}

// DefaultNuggetCreatorConfig returns the standard nugget creation settings.
func DefaultNuggetCreatorConfig() NuggetCreatorConfig {
	return NuggetCreatorConfig{
		MaxNuggets:  DefaultMaxNuggets,
		Temperature: DefaultNuggetTemperature,
	}
}

// NuggetCreator decomposes each topic's problem statement into sub-questions
// with gold answers by prompting an LLM once per topic, dispatched as a
// single batch. A non-JSON reply for any topic fails the whole invocation:
// nugget quality gates all downstream scoring and no partial-bank fallback
// is defined.
type NuggetCreator struct {
	name   string
	config NuggetCreatorConfig
	runner ports.BatchRunner
	tracer trace.Tracer
}

// nuggetItem is the expected JSON element of the decomposition reply.
type nuggetItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NewNuggetCreator creates a NuggetCreator with the given runner and
// configuration.
func NewNuggetCreator(name string, runner ports.BatchRunner, config NuggetCreatorConfig) (*NuggetCreator, error) {
	if name == "" {
		return nil, ErrEmptyJudgeName
	}
	if runner == nil {
		return nil, ErrNilRunner
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &NuggetCreator{
		name:   name,
		config: config,
		runner: runner,
		tracer: otel.Tracer("nugget-creator"),
	}, nil
}

// Name returns the unique identifier for this creator instance.
func (nc *NuggetCreator) Name() string { return nc.name }

// CreateNuggets builds one nugget bank per topic. Requests carry the topic
// ID as correlation ID; results are joined back by that ID.
func (nc *NuggetCreator) CreateNuggets(ctx context.Context, topics []domain.Topic) (domain.NuggetBanks, error) {
	ctx, span := nc.tracer.Start(ctx, "NuggetCreator.CreateNuggets",
		trace.WithAttributes(
			attribute.String("judge.id", nc.name),
			attribute.Int("nuggets.topics", len(topics)),
			attribute.Int("config.max_nuggets", nc.config.MaxNuggets),
		),
	)
	defer span.End()

	requests := make([]ports.BatchRequest, len(topics))
	for i, topic := range topics {
		requests[i] = ports.BatchRequest{
			ID:          topic.ID,
			System:      nuggetSystemPrompt,
			User:        topic.ProblemStatement,
			Temperature: nc.config.Temperature,
		}
	}

	results, err := nc.runner.RunBatched(ctx, requests)
	if err != nil {
		span.RecordError(err)
		return domain.NuggetBanks{}, fmt.Errorf("judge %s: nugget batch failed: %w", nc.name, err)
	}
	if len(results) != len(requests) {
		return domain.NuggetBanks{}, fmt.Errorf("judge %s: %w", nc.name, ErrBatchSizeMismatch)
	}

	byTopic := make(map[string]string, len(results))
	for _, res := range results {
		byTopic[res.ID] = res.Text
	}

	banks := make([]domain.NuggetBank, 0, len(topics))
	total := 0
	for _, topic := range topics {
		text, ok := byTopic[topic.ID]
		if !ok {
			return domain.NuggetBanks{}, fmt.Errorf("judge %s: no result for topic %q", nc.name, topic.ID)
		}

		bank, err := nc.parseBank(topic, text)
		if err != nil {
			span.RecordError(err)
			return domain.NuggetBanks{}, err
		}
		total += len(bank.Nuggets)
		banks = append(banks, bank)
	}

	span.SetAttributes(attribute.Int("nuggets.created", total))
	return domain.NewNuggetBanks(banks), nil
}

// parseBank converts one decomposition reply into a nugget bank,
// truncating to the configured maximum.
func (nc *NuggetCreator) parseBank(topic domain.Topic, text string) (domain.NuggetBank, error) {
	jsonStr := extractJSONArray(text)
	if jsonStr == "" {
		return domain.NuggetBank{}, fmt.Errorf("judge %s: no JSON array in reply for topic %q (reply length: %d)",
			nc.name, topic.ID, len(text))
	}

	var items []nuggetItem
	if err := json.Unmarshal([]byte(jsonStr), &items); err != nil {
		return domain.NuggetBank{}, fmt.Errorf("judge %s: malformed nugget JSON for topic %q: %w",
			nc.name, topic.ID, err)
	}

	if len(items) > nc.config.MaxNuggets {
		items = items[:nc.config.MaxNuggets]
	}

	title := topic.Title
	if title == "" {
		title = topic.ID
	}

	bank := domain.NuggetBank{TopicID: topic.ID, Title: title}
	for _, item := range items {
		bank.Nuggets = append(bank.Nuggets, domain.Nugget{
			Question:    item.Question,
			GoldAnswers: []string{item.Answer},
		})
	}
	return bank, nil
}
