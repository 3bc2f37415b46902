// Package testutils provides deterministic mocks and fixtures for testing
// the judge pipeline without live LLM or entailment services.
package testutils

import (
	"context"
	"strings"
	"sync"

	"github.com/minnaeval/ragjudge/internal/ports"
)

// MockBatchRunner implements ports.BatchRunner with scripted replies.
// Replies resolve by exact correlation ID first, then by substring match
// against the user content, then a default. The zero default is the empty
// string, which parses as an unparseable binary verdict and an empty
// claim list.
type MockBatchRunner struct {
	mu sync.Mutex

	// byID maps correlation IDs to replies.
	byID map[string]string

	// byPattern maps user-content substrings to replies, checked in
	// insertion order.
	patterns []patternReply

	// Default is returned when nothing matches.
	Default string

	// Err, when set, fails every batch; judges must treat it as fatal.
	Err error

	// Requests records every request seen, in order, across batches.
	Requests []ports.BatchRequest
}

type patternReply struct {
	pattern string
	reply   string
}

// NewMockBatchRunner creates an empty scripted runner.
func NewMockBatchRunner() *MockBatchRunner {
	return &MockBatchRunner{byID: make(map[string]string)}
}

// ReplyTo scripts a reply for an exact correlation ID.
func (m *MockBatchRunner) ReplyTo(id, reply string) *MockBatchRunner {
	m.byID[id] = reply
	return m
}

// ReplyMatching scripts a reply for requests whose user content contains
// the substring.
func (m *MockBatchRunner) ReplyMatching(substring, reply string) *MockBatchRunner {
	m.patterns = append(m.patterns, patternReply{pattern: substring, reply: reply})
	return m
}

// RunBatched resolves one scripted reply per request, preserving order
// and echoing correlation IDs.
func (m *MockBatchRunner) RunBatched(_ context.Context, requests []ports.BatchRequest) ([]ports.BatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	results := make([]ports.BatchResult, len(requests))
	for i, req := range requests {
		m.Requests = append(m.Requests, req)
		results[i] = ports.BatchResult{ID: req.ID, Text: m.resolve(req)}
	}
	return results, nil
}

func (m *MockBatchRunner) resolve(req ports.BatchRequest) string {
	if reply, ok := m.byID[req.ID]; ok {
		return reply
	}
	for _, p := range m.patterns {
		if strings.Contains(req.User, p.pattern) {
			return p.reply
		}
	}
	return m.Default
}
