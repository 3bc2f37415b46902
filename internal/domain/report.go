// Package domain contains pure, dependency-free domain models for the
// RAG auto-judge pipeline.
package domain

// Topic identifies a question posed to the RAG systems under evaluation.
// Topics are loaded once per evaluation run and treated as immutable.
type Topic struct {
	// ID uniquely identifies this topic across the evaluation.
	ID string `json:"request_id"`

	// Title is a short human-readable label for the topic.
	Title string `json:"title"`

	// ProblemStatement is the full question text given to the RAG systems.
	ProblemStatement string `json:"problem_statement"`
}

// Document is a source document cited or retrieved by a RAG response.
type Document struct {
	// ID identifies the document within its response.
	ID string `json:"doc_id"`

	// Text is the full document text. Entailment checks run against the
	// complete text, not individual sentences.
	Text string `json:"text"`
}

// Sentence is a single response sentence with its citation list.
type Sentence struct {
	Text string `json:"text"`

	// Citations holds document IDs cited by this sentence. Empty means
	// the sentence is uncited.
	Citations []string `json:"citations"`
}

// Response is one RAG system's answer to one topic. Exactly one response
// per (run, topic) pair is assumed; uniqueness is not enforced here.
type Response struct {
	// RunID identifies the RAG system (run) that produced this response.
	RunID string `json:"run_id"`

	// TopicID links the response to its topic.
	TopicID string `json:"topic_id"`

	// Text is the full response text. Its content hash serves as the
	// join key into qrels, so it must not be re-tokenized between qrels
	// creation and judging.
	Text string `json:"text"`

	// Documents are the response's source documents in insertion order.
	// The slice order is the document evaluation order for attribution,
	// keeping attribution scores reproducible across runs.
	Documents []Document `json:"documents"`

	// Sentences is the response text segmented with per-sentence citations.
	Sentences []Sentence `json:"sentences"`
}

// Key returns the (run, topic) accumulator key for this response.
func (r Response) Key() RunTopicKey {
	return RunTopicKey{RunID: r.RunID, TopicID: r.TopicID}
}

// CitedDocuments returns the documents referenced by at least one sentence
// citation, preserving the Documents slice order. Responses without
// sentence-level citations fall back to the full document list.
func (r Response) CitedDocuments() []Document {
	cited := make(map[string]bool)
	for _, s := range r.Sentences {
		for _, c := range s.Citations {
			cited[c] = true
		}
	}
	if len(cited) == 0 {
		return r.Documents
	}

	docs := make([]Document, 0, len(cited))
	for _, d := range r.Documents {
		if cited[d.ID] {
			docs = append(docs, d)
		}
	}
	return docs
}
