package application

import (
	"context"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/minnaeval/ragjudge/infrastructure/entailment"
	"github.com/minnaeval/ragjudge/infrastructure/judges"
	"github.com/minnaeval/ragjudge/infrastructure/llm"
	"github.com/minnaeval/ragjudge/internal/domain"
	"github.com/minnaeval/ragjudge/internal/ports"
)

// Phase names accepted by Workflow.Run.
const (
	PhaseNuggets = "nuggets"
	PhaseQrels   = "qrels"
	PhaseJudge   = "judge"
	PhaseAll     = "all"
)

// Workflow executes the evaluation phases described by a WorkflowConfig,
// persisting each phase's output so later phases (or separate
// invocations) can reuse it.
type Workflow struct {
	config WorkflowConfig
	runner ports.BatchRunner
	scorer ports.EntailmentScorer
}

// NewWorkflow builds the shared infrastructure for a workflow: the batched
// LLM runner (with metrics registered on reg when non-nil) and the
// entailment scorer client.
func NewWorkflow(config WorkflowConfig, reg prometheus.Registerer) (*Workflow, error) {
	runner, err := llm.NewRunnerFromConfig(config.LLM, reg)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", config.Metadata.Name, err)
	}

	scorer, err := entailment.NewHTTPScorer(config.Entailment)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", config.Metadata.Name, err)
	}

	return &Workflow{config: config, runner: runner, scorer: scorer}, nil
}

// Run executes one named phase, or all phases in order.
func (w *Workflow) Run(ctx context.Context, phase string) error {
	switch phase {
	case PhaseNuggets:
		return w.runNuggets(ctx)
	case PhaseQrels:
		return w.runQrels(ctx)
	case PhaseJudge:
		return w.runJudge(ctx)
	case PhaseAll:
		if err := w.runNuggets(ctx); err != nil {
			return err
		}
		if err := w.runQrels(ctx); err != nil {
			return err
		}
		return w.runJudge(ctx)
	default:
		return fmt.Errorf("unknown phase %q", phase)
	}
}

func (w *Workflow) runNuggets(ctx context.Context) error {
	topics, err := LoadTopics(w.config.Data.Topics)
	if err != nil {
		return err
	}

	creator, err := judges.NewNuggetCreator("nugget_creator", w.runner, w.config.NuggetSettings)
	if err != nil {
		return err
	}

	banks, err := creator.CreateNuggets(ctx, topics)
	if err != nil {
		return err
	}

	if err := SaveNuggetBanks(banks, w.config.Data.Nuggets); err != nil {
		return err
	}
	log.Printf("created nugget banks for %d topics -> %s", banks.Len(), w.config.Data.Nuggets)
	return nil
}

func (w *Workflow) runQrels(ctx context.Context) error {
	responses, err := LoadResponses(w.config.Data.Responses)
	if err != nil {
		return err
	}
	banks, err := LoadNuggetBanks(w.config.Data.Nuggets)
	if err != nil {
		return err
	}

	creator, err := judges.NewQrelsCreator("qrels_creator", w.runner, w.config.QrelsSettings)
	if err != nil {
		return err
	}

	qrels, err := creator.CreateQrels(ctx, responses, banks)
	if err != nil {
		return err
	}

	if err := SaveQrels(qrels, w.config.Data.Qrels); err != nil {
		return err
	}
	log.Printf("created qrels with %d rows -> %s", qrels.Len(), w.config.Data.Qrels)
	return nil
}

func (w *Workflow) runJudge(ctx context.Context) error {
	topics, err := LoadTopics(w.config.Data.Topics)
	if err != nil {
		return err
	}
	responses, err := LoadResponses(w.config.Data.Responses)
	if err != nil {
		return err
	}

	// Qrels may come from a separate invocation; judging tolerates their
	// absence by scoring completeness 0 for every response.
	qrels, err := LoadQrels(w.config.Data.Qrels)
	if err != nil {
		log.Printf("no usable qrels at %s (%v); completeness will be 0", w.config.Data.Qrels, err)
		qrels = domain.NewQrels(nil)
	}

	judge, err := judges.NewLeaderboardJudge("leaderboard_judge", w.runner, w.scorer, w.config.JudgeSettings)
	if err != nil {
		return err
	}

	leaderboard, err := judge.Judge(ctx, responses, topics, qrels)
	if err != nil {
		return err
	}

	if err := SaveLeaderboard(leaderboard, w.config.Data.Leaderboard); err != nil {
		return err
	}
	log.Printf("built leaderboard with %d entries -> %s", len(leaderboard.Entries), w.config.Data.Leaderboard)
	return nil
}
