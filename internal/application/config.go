// Package application wires the judge plugins into a configurable
// evaluation workflow: loading topics and responses, running the nugget,
// qrels, and judging phases, and persisting their outputs.
package application

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/minnaeval/ragjudge/infrastructure/entailment"
	"github.com/minnaeval/ragjudge/infrastructure/judges"
	"github.com/minnaeval/ragjudge/infrastructure/llm"
)

// Metadata labels a workflow for reports and logs.
type Metadata struct {
	// Name identifies the workflow.
	Name string `yaml:"name" validate:"required,min=1,max=255"`

	// Description explains the workflow's purpose.
	Description string `yaml:"description" validate:"max=1000"`
}

// DataConfig names the input and output files of a workflow run.
type DataConfig struct {
	// Topics is the JSONL file of evaluation topics.
	Topics string `yaml:"topics" validate:"required"`

	// Responses is the JSONL file of RAG responses under evaluation.
	Responses string `yaml:"responses" validate:"required"`

	// Nuggets is the JSON file nugget banks are written to and read from.
	Nuggets string `yaml:"nuggets" validate:"required"`

	// Qrels is the JSON file the qrels table is written to and read from.
	Qrels string `yaml:"qrels" validate:"required"`

	// Leaderboard is the JSON file the final leaderboard is written to.
	Leaderboard string `yaml:"leaderboard" validate:"required"`
}

// WorkflowConfig is the full YAML specification of an evaluation workflow.
type WorkflowConfig struct {
	Metadata Metadata `yaml:"metadata" validate:"required"`

	// LLM configures the batched runner shared by all LLM phases.
	LLM llm.RunnerConfig `yaml:"llm" validate:"required"`

	// Entailment configures the entailment scoring service client.
	Entailment entailment.Config `yaml:"entailment" validate:"required"`

	Data DataConfig `yaml:"data" validate:"required"`

	// NuggetSettings configures the nugget creation phase.
	NuggetSettings judges.NuggetCreatorConfig `yaml:"nugget_settings" validate:"required"`

	// QrelsSettings configures the qrels grading phase.
	QrelsSettings judges.QrelsCreatorConfig `yaml:"qrels_settings"`

	// JudgeSettings configures the leaderboard judging phase.
	JudgeSettings judges.LeaderboardJudgeConfig `yaml:"judge_settings" validate:"required"`
}

var validate = validator.New()

// DefaultWorkflowConfig returns a config with every phase at its default
// settings, ready to be overlaid by a YAML file.
func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		NuggetSettings: judges.DefaultNuggetCreatorConfig(),
		QrelsSettings:  judges.DefaultQrelsCreatorConfig(),
		JudgeSettings:  judges.DefaultLeaderboardJudgeConfig(),
	}
}

// LoadWorkflowConfig reads and validates a workflow YAML file. Unknown
// fields are rejected to catch typos in phase settings.
func LoadWorkflowConfig(path string) (WorkflowConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from the CLI flag
	if err != nil {
		return WorkflowConfig{}, fmt.Errorf("read workflow config: %w", err)
	}

	config := DefaultWorkflowConfig()
	if err := unmarshalStrict(data, &config); err != nil {
		return WorkflowConfig{}, fmt.Errorf("parse workflow config %s: %w", path, err)
	}

	if err := validate.Struct(config); err != nil {
		return WorkflowConfig{}, fmt.Errorf("workflow config validation failed: %w", err)
	}
	return config, nil
}

func unmarshalStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}
