package ports

import (
	"context"

	"github.com/minnaeval/ragjudge/internal/domain"
)

// NuggetCreator decomposes topics into per-topic banks of sub-questions
// with gold answers. Creation happens once; banks are read-only afterward.
type NuggetCreator interface {
	// CreateNuggets produces one bank per topic. A malformed LLM reply for
	// any topic is fatal for the invocation; nugget quality gates all
	// downstream scoring and no partial-bank fallback is defined.
	CreateNuggets(ctx context.Context, topics []domain.Topic) (domain.NuggetBanks, error)
}

// QrelsCreator grades responses against nugget banks into a qrels table.
type QrelsCreator interface {
	// CreateQrels grades each response on the 0-3 integer scale from the
	// fraction of its topic's nuggets it answers. Responses whose topic has
	// no bank are skipped silently.
	CreateQrels(ctx context.Context, responses []domain.Response, banks domain.NuggetBanks) (domain.Qrels, error)
}

// LeaderboardJudge scores responses into a leaderboard.
type LeaderboardJudge interface {
	// Judge computes measure values per (run, topic) pair and validates
	// coverage against the topics list. Qrels may be empty; missing rows
	// degrade completeness to 0 rather than failing.
	Judge(ctx context.Context, responses []domain.Response, topics []domain.Topic, qrels domain.Qrels) (domain.Leaderboard, error)
}
