// Package entailment provides a client for a textual-entailment scoring
// service. The cross-encoder model runs out of process behind a JSON HTTP
// endpoint; this package only knows the (premise, hypothesis) -> class
// probabilities contract.
package entailment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/minnaeval/ragjudge/internal/ports"
)

var _ ports.EntailmentScorer = (*HTTPScorer)(nil)

// DefaultTimeout bounds a single prediction request.
const DefaultTimeout = 60 * time.Second

var validate = validator.New()

// Config defines the settings for the HTTP entailment scorer.
type Config struct {
	// Endpoint is the prediction URL of the serving process.
	Endpoint string `yaml:"endpoint" validate:"required,url"`

	// TimeoutSeconds bounds each prediction call; 0 uses DefaultTimeout.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"min=0,max=3600"`
}

// HTTPScorer scores entailment pairs by POSTing them to a model server.
// It is stateless and safe for concurrent use.
type HTTPScorer struct {
	endpoint string
	client   *http.Client
	tracer   trace.Tracer
}

// NewHTTPScorer creates a scorer for the configured endpoint.
func NewHTTPScorer(config Config) (*HTTPScorer, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("entailment configuration: %w", err)
	}

	timeout := DefaultTimeout
	if config.TimeoutSeconds > 0 {
		timeout = time.Duration(config.TimeoutSeconds) * time.Second
	}

	return &HTTPScorer{
		endpoint: config.Endpoint,
		client:   &http.Client{Timeout: timeout},
		tracer:   otel.Tracer("entailment-scorer"),
	}, nil
}

type predictRequest struct {
	Pairs [][2]string `json:"pairs"`
}

type predictResponse struct {
	// Scores holds one probability row per pair. Rows carry either
	// [not_entailed, entailed] or [contradiction, entailment, neutral];
	// index 1 is the entailment probability in both layouts.
	Scores [][]float64 `json:"scores"`
}

// Predict returns one prediction per pair, in input order.
func (s *HTTPScorer) Predict(ctx context.Context, pairs []ports.EntailmentPair) ([]ports.EntailmentPrediction, error) {
	ctx, span := s.tracer.Start(ctx, "HTTPScorer.Predict",
		trace.WithAttributes(attribute.Int("entailment.pairs", len(pairs))),
	)
	defer span.End()

	if len(pairs) == 0 {
		return nil, nil
	}

	reqBody := predictRequest{Pairs: make([][2]string, len(pairs))}
	for i, p := range pairs {
		reqBody.Pairs[i] = [2]string{p.Premise, p.Hypothesis}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode prediction request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build prediction request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("entailment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("entailment service returned status %d: %w", resp.StatusCode, ports.ErrInvalidResponse)
		span.RecordError(err)
		return nil, err
	}

	var decoded predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode prediction response: %w", err)
	}
	if len(decoded.Scores) != len(pairs) {
		return nil, fmt.Errorf("entailment service returned %d rows for %d pairs: %w",
			len(decoded.Scores), len(pairs), ports.ErrInvalidResponse)
	}

	predictions := make([]ports.EntailmentPrediction, len(pairs))
	for i, row := range decoded.Scores {
		if len(row) < 2 {
			return nil, fmt.Errorf("entailment row %d has %d probabilities: %w",
				i, len(row), ports.ErrInvalidResponse)
		}
		predictions[i] = ports.EntailmentPrediction{
			Contradiction: row[0],
			Entailment:    row[1],
		}
		if len(row) > 2 {
			predictions[i].Neutral = row[2]
		}
	}
	return predictions, nil
}
