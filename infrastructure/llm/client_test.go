package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoreLLM(t *testing.T) {
	t.Run("empty API key", func(t *testing.T) {
		_, err := NewCoreLLM("openai", ClientConfig{})
		assert.ErrorIs(t, err, ErrEmptyAPIKey)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewCoreLLM("nonexistent", ClientConfig{APIKey: "key"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})

	t.Run("registered providers construct", func(t *testing.T) {
		for _, provider := range []string{"openai", "anthropic", "google"} {
			core, err := NewCoreLLM(provider, ClientConfig{APIKey: "test-key"})
			require.NoError(t, err, provider)
			assert.NotEmpty(t, core.Model(), provider)
		}
	})

	t.Run("middleware applies first outermost", func(t *testing.T) {
		RegisterProviderFactory("fake", func(_ ClientConfig) (CoreLLM, error) {
			return &mockCoreLLM{
				completeFunc: func(_ context.Context, _ Request) (Response, error) {
					return Response{Text: "base"}, nil
				},
			}, nil
		})

		tag := func(label string) Middleware {
			return func(next CoreLLM) CoreLLM {
				return &taggingLLM{next: next, label: label}
			}
		}

		core, err := NewCoreLLM("fake", ClientConfig{APIKey: "key"}, tag("outer"), tag("inner"))
		require.NoError(t, err)

		resp, err := core.Complete(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, "base+inner+outer", resp.Text)
	})
}

// taggingLLM appends its label to responses so middleware ordering is
// observable.
type taggingLLM struct {
	next  CoreLLM
	label string
}

func (l *taggingLLM) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := l.next.Complete(ctx, req)
	if err != nil {
		return resp, err
	}
	resp.Text += "+" + l.label
	return resp, nil
}

func (l *taggingLLM) Model() string { return l.next.Model() }

func TestAPIKeyFromEnv(t *testing.T) {
	t.Run("named variable wins", func(t *testing.T) {
		t.Setenv("CUSTOM_KEY", "custom")
		t.Setenv("FALLBACK_KEY", "fallback")
		assert.Equal(t, "custom", apiKeyFromEnv("CUSTOM_KEY", "FALLBACK_KEY"))
	})

	t.Run("falls back to conventional variable", func(t *testing.T) {
		t.Setenv("FALLBACK_KEY", "fallback")
		assert.Equal(t, "fallback", apiKeyFromEnv("", "FALLBACK_KEY"))
	})
}
