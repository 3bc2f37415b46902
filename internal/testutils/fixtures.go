package testutils

import "github.com/minnaeval/ragjudge/internal/domain"

// SampleTopic returns a minimal topic fixture.
func SampleTopic(id string) domain.Topic {
	return domain.Topic{
		ID:               id,
		Title:            "Topic " + id,
		ProblemStatement: "What should a complete answer to " + id + " cover?",
	}
}

// SampleResponse returns a response fixture with one cited document.
func SampleResponse(runID, topicID, text string) domain.Response {
	return domain.Response{
		RunID:   runID,
		TopicID: topicID,
		Text:    text,
		Documents: []domain.Document{
			{ID: "d1", Text: "Source document for " + topicID + "."},
		},
		Sentences: []domain.Sentence{
			{Text: text, Citations: []string{"d1"}},
		},
	}
}

// SampleBank returns a nugget bank fixture with the given questions, each
// with a single gold answer equal to "gold: " + question.
func SampleBank(topicID string, questions ...string) domain.NuggetBank {
	bank := domain.NuggetBank{TopicID: topicID, Title: "Topic " + topicID}
	for _, q := range questions {
		bank.Nuggets = append(bank.Nuggets, domain.Nugget{
			Question:    q,
			GoldAnswers: []string{"gold: " + q},
		})
	}
	return bank
}
