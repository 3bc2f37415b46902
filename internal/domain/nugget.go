package domain

// Nugget is an atomic sub-question with gold answers, used as a unit of
// expected content coverage when grading responses.
type Nugget struct {
	// Question is the sub-question derived from a topic's problem statement.
	Question string `json:"question"`

	// GoldAnswers holds the accepted answers for this sub-question.
	GoldAnswers []string `json:"gold_answers"`
}

// NuggetBank is the ordered set of nuggets for a single topic.
// Banks are created once per topic and read-only afterward.
type NuggetBank struct {
	// TopicID is the topic this bank belongs to.
	TopicID string `json:"topic_id"`

	// Title is the topic title, kept for report readability.
	Title string `json:"title"`

	// Nuggets preserves creation order.
	Nuggets []Nugget `json:"nuggets"`
}

// NuggetBanks maps topic IDs to their nugget banks.
type NuggetBanks struct {
	Banks map[string]NuggetBank `json:"banks"`
}

// NewNuggetBanks builds a NuggetBanks collection from a bank list.
// Later banks for the same topic replace earlier ones.
func NewNuggetBanks(banks []NuggetBank) NuggetBanks {
	nb := NuggetBanks{Banks: make(map[string]NuggetBank, len(banks))}
	for _, b := range banks {
		nb.Banks[b.TopicID] = b
	}
	return nb
}

// Bank returns the bank for a topic and whether it exists. Topics absent
// from the collection are skipped entirely during qrels creation.
func (nb NuggetBanks) Bank(topicID string) (NuggetBank, bool) {
	b, ok := nb.Banks[topicID]
	return b, ok
}

// Len returns the number of topic banks.
func (nb NuggetBanks) Len() int { return len(nb.Banks) }
