package domain

import (
	"crypto/md5" // #nosec G401 - content hashing for join keys, not security
	"encoding/hex"
	"fmt"
)

// Grade bounds for qrels rows. The grading step fixes the integer scale.
const (
	MinGrade = 0
	MaxGrade = 3
)

// DocID returns the deterministic content hash of UTF-8 text used as the
// join key between qrels rows and responses. Any change to the response
// text between qrels creation and judging changes the key and silently
// yields completeness 0.
func DocID(text string) string {
	sum := md5.Sum([]byte(text)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// GradeRecord is one graded response prior to qrels deduplication.
type GradeRecord struct {
	// TopicID is the topic the graded response answered.
	TopicID string

	// Text is the full response text; its hash becomes the qrels doc ID.
	Text string

	// Grade is the completeness grade in [MinGrade, MaxGrade].
	Grade int
}

// QrelsRow is a single relevance judgment keyed by (topic, document hash).
type QrelsRow struct {
	TopicID string `json:"topic_id"`
	DocID   string `json:"doc_id"`
	Grade   int    `json:"grade"`
}

// Qrels is the deduplicated relevance-judgment table. Rows preserves the
// first-seen insertion order of (topic, doc) keys for stable serialization.
type Qrels struct {
	Rows []QrelsRow `json:"rows"`

	index map[qrelsKey]int
}

type qrelsKey struct {
	topicID string
	docID   string
}

// BuildQrels converts grade records into a qrels table, hashing each
// record's text into a doc ID. Duplicate (topic, doc) keys keep the
// maximum grade. Records with out-of-range grades are rejected.
func BuildQrels(records []GradeRecord) (Qrels, error) {
	q := Qrels{index: make(map[qrelsKey]int, len(records))}
	for i, rec := range records {
		if rec.Grade < MinGrade || rec.Grade > MaxGrade {
			return Qrels{}, fmt.Errorf("grade record %d: grade %d outside [%d, %d]",
				i, rec.Grade, MinGrade, MaxGrade)
		}

		key := qrelsKey{topicID: rec.TopicID, docID: DocID(rec.Text)}
		if idx, ok := q.index[key]; ok {
			if rec.Grade > q.Rows[idx].Grade {
				q.Rows[idx].Grade = rec.Grade
			}
			continue
		}

		q.index[key] = len(q.Rows)
		q.Rows = append(q.Rows, QrelsRow{TopicID: key.topicID, DocID: key.docID, Grade: rec.Grade})
	}
	return q, nil
}

// NewQrels rebuilds a Qrels table from previously serialized rows,
// applying the same keep-max deduplication.
func NewQrels(rows []QrelsRow) Qrels {
	q := Qrels{index: make(map[qrelsKey]int, len(rows))}
	for _, row := range rows {
		key := qrelsKey{topicID: row.TopicID, docID: row.DocID}
		if idx, ok := q.index[key]; ok {
			if row.Grade > q.Rows[idx].Grade {
				q.Rows[idx].Grade = row.Grade
			}
			continue
		}
		q.index[key] = len(q.Rows)
		q.Rows = append(q.Rows, row)
	}
	return q
}

// Lookup returns the grade for a (topic, doc) key and whether the row
// exists. A missing row is not an error; judging treats it as grade 0.
func (q Qrels) Lookup(topicID, docID string) (int, bool) {
	idx, ok := q.index[qrelsKey{topicID: topicID, docID: docID}]
	if !ok {
		return 0, false
	}
	return q.Rows[idx].Grade, true
}

// Len returns the number of deduplicated rows.
func (q Qrels) Len() int { return len(q.Rows) }
