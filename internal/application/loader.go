package application

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minnaeval/ragjudge/internal/domain"
)

// maxLineBytes bounds a single JSONL record; RAG responses carry full
// document texts and routinely exceed bufio's default line limit.
const maxLineBytes = 16 * 1024 * 1024

// LoadTopics reads evaluation topics from a JSONL file, one topic per line.
func LoadTopics(path string) ([]domain.Topic, error) {
	var topics []domain.Topic
	err := readJSONL(path, func(line []byte) error {
		var t domain.Topic
		if err := json.Unmarshal(line, &t); err != nil {
			return err
		}
		if t.ID == "" {
			return fmt.Errorf("topic missing request_id")
		}
		topics = append(topics, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load topics from %s: %w", path, err)
	}
	return topics, nil
}

// LoadResponses reads RAG responses from a JSONL file, one response per
// line.
func LoadResponses(path string) ([]domain.Response, error) {
	var responses []domain.Response
	err := readJSONL(path, func(line []byte) error {
		var r domain.Response
		if err := json.Unmarshal(line, &r); err != nil {
			return err
		}
		if r.RunID == "" || r.TopicID == "" {
			return fmt.Errorf("response missing run_id or topic_id")
		}
		responses = append(responses, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load responses from %s: %w", path, err)
	}
	return responses, nil
}

func readJSONL(path string, handle func(line []byte) error) error {
	f, err := os.Open(path) // #nosec G304 - paths come from workflow config
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := handle(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

// SaveNuggetBanks persists nugget banks as indented JSON.
func SaveNuggetBanks(banks domain.NuggetBanks, path string) error {
	return writeJSON(path, banks)
}

// LoadNuggetBanks reads previously created nugget banks.
func LoadNuggetBanks(path string) (domain.NuggetBanks, error) {
	var banks domain.NuggetBanks
	if err := readJSON(path, &banks); err != nil {
		return domain.NuggetBanks{}, fmt.Errorf("load nugget banks from %s: %w", path, err)
	}
	if banks.Banks == nil {
		banks.Banks = map[string]domain.NuggetBank{}
	}
	return banks, nil
}

// SaveQrels persists the qrels rows as indented JSON.
func SaveQrels(qrels domain.Qrels, path string) error {
	return writeJSON(path, qrels)
}

// LoadQrels reads a qrels table, rebuilding its lookup index with the
// same keep-max deduplication used at creation.
func LoadQrels(path string) (domain.Qrels, error) {
	var serialized struct {
		Rows []domain.QrelsRow `json:"rows"`
	}
	if err := readJSON(path, &serialized); err != nil {
		return domain.Qrels{}, fmt.Errorf("load qrels from %s: %w", path, err)
	}
	return domain.NewQrels(serialized.Rows), nil
}

// SaveLeaderboard persists the leaderboard as indented JSON.
func SaveLeaderboard(lb domain.Leaderboard, path string) error {
	return writeJSON(path, lb)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path) // #nosec G304 - paths come from workflow config
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
