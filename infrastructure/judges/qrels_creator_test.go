package judges

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnaeval/ragjudge/internal/domain"
	"github.com/minnaeval/ragjudge/internal/testutils"
)

func TestGradeFromMean(t *testing.T) {
	tests := []struct {
		mean float64
		want int
	}{
		{0.0, 0},
		{1.0, 3},
		{0.5, 2},  // 1.5 rounds half away from zero
		{1.0 / 3.0, 1},
		{2.0 / 3.0, 2},
		{0.1, 0},
		{0.17, 1}, // 0.51 rounds up
		{0.83, 2},
		{0.84, 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("mean %.2f", tt.mean), func(t *testing.T) {
			assert.Equal(t, tt.want, gradeFromMean(tt.mean))
		})
	}
}

func TestNewQrelsCreator(t *testing.T) {
	runner := testutils.NewMockBatchRunner()

	t.Run("empty name", func(t *testing.T) {
		_, err := NewQrelsCreator("", runner, DefaultQrelsCreatorConfig())
		assert.ErrorIs(t, err, ErrEmptyJudgeName)
	})

	t.Run("nil runner", func(t *testing.T) {
		_, err := NewQrelsCreator("qrels", nil, DefaultQrelsCreatorConfig())
		assert.ErrorIs(t, err, ErrNilRunner)
	})

	t.Run("invalid temperature", func(t *testing.T) {
		_, err := NewQrelsCreator("qrels", runner, QrelsCreatorConfig{Temperature: 1.5})
		require.Error(t, err)
	})
}

func TestCreateQrels(t *testing.T) {
	ctx := context.Background()
	banks := domain.NewNuggetBanks([]domain.NuggetBank{
		testutils.SampleBank("t1", "q1", "q2"),
	})

	t.Run("all yes grades 3", func(t *testing.T) {
		runner := testutils.NewMockBatchRunner()
		runner.Default = "1"

		qc, err := NewQrelsCreator("qrels", runner, DefaultQrelsCreatorConfig())
		require.NoError(t, err)

		response := testutils.SampleResponse("run1", "t1", "covers everything")
		qrels, err := qc.CreateQrels(ctx, []domain.Response{response}, banks)
		require.NoError(t, err)

		grade, ok := qrels.Lookup("t1", domain.DocID(response.Text))
		require.True(t, ok)
		assert.Equal(t, 3, grade)
	})

	t.Run("mixed verdicts grade by rounded mean", func(t *testing.T) {
		// One yes of two nuggets: mean 0.5, grade round(1.5) = 2.
		runner := testutils.NewMockBatchRunner().
			ReplyTo("run1/t1#0", "1").
			ReplyTo("run1/t1#1", "0")

		qc, err := NewQrelsCreator("qrels", runner, DefaultQrelsCreatorConfig())
		require.NoError(t, err)

		response := testutils.SampleResponse("run1", "t1", "half coverage")
		qrels, err := qc.CreateQrels(ctx, []domain.Response{response}, banks)
		require.NoError(t, err)

		grade, ok := qrels.Lookup("t1", domain.DocID(response.Text))
		require.True(t, ok)
		assert.Equal(t, 2, grade)
	})

	t.Run("unparseable replies score zero", func(t *testing.T) {
		runner := testutils.NewMockBatchRunner().
			ReplyTo("run1/t1#0", "1").
			ReplyTo("run1/t1#1", "perhaps")

		qc, err := NewQrelsCreator("qrels", runner, DefaultQrelsCreatorConfig())
		require.NoError(t, err)

		response := testutils.SampleResponse("run1", "t1", "vague answer")
		qrels, err := qc.CreateQrels(ctx, []domain.Response{response}, banks)
		require.NoError(t, err)

		// Mean 0.5 over two nuggets still grades 2.
		grade, ok := qrels.Lookup("t1", domain.DocID(response.Text))
		require.True(t, ok)
		assert.Equal(t, 2, grade)
	})

	t.Run("sends one request per response nugget pair", func(t *testing.T) {
		runner := testutils.NewMockBatchRunner()
		runner.Default = "0"

		qc, err := NewQrelsCreator("qrels", runner, DefaultQrelsCreatorConfig())
		require.NoError(t, err)

		responses := []domain.Response{
			testutils.SampleResponse("run1", "t1", "first"),
			testutils.SampleResponse("run2", "t1", "second"),
		}
		_, err = qc.CreateQrels(ctx, responses, banks)
		require.NoError(t, err)

		require.Len(t, runner.Requests, 4)
		assert.Equal(t, "run1/t1#0", runner.Requests[0].ID)
		assert.Equal(t, "run1/t1#1", runner.Requests[1].ID)
		assert.Equal(t, "run2/t1#0", runner.Requests[2].ID)
		assert.Contains(t, runner.Requests[0].User, "q1")
		assert.Contains(t, runner.Requests[0].User, "first")
	})

	t.Run("skips responses without a bank", func(t *testing.T) {
		runner := testutils.NewMockBatchRunner()
		runner.Default = "1"

		qc, err := NewQrelsCreator("qrels", runner, DefaultQrelsCreatorConfig())
		require.NoError(t, err)

		responses := []domain.Response{
			testutils.SampleResponse("run1", "t1", "graded"),
			testutils.SampleResponse("run1", "t-unknown", "ignored"),
		}
		qrels, err := qc.CreateQrels(ctx, responses, banks)
		require.NoError(t, err)

		assert.Equal(t, 1, qrels.Len())
		_, ok := qrels.Lookup("t-unknown", domain.DocID("ignored"))
		assert.False(t, ok)
	})

	t.Run("skips responses whose bank has zero nuggets", func(t *testing.T) {
		emptyBanks := domain.NewNuggetBanks([]domain.NuggetBank{{TopicID: "t1"}})
		runner := testutils.NewMockBatchRunner()

		qc, err := NewQrelsCreator("qrels", runner, DefaultQrelsCreatorConfig())
		require.NoError(t, err)

		qrels, err := qc.CreateQrels(ctx, []domain.Response{
			testutils.SampleResponse("run1", "t1", "anything"),
		}, emptyBanks)
		require.NoError(t, err)
		assert.Equal(t, 0, qrels.Len())
	})

	t.Run("duplicate response text keeps the maximum grade", func(t *testing.T) {
		runner := testutils.NewMockBatchRunner().
			ReplyTo("run1/t1#0", "0").
			ReplyTo("run1/t1#1", "0").
			ReplyTo("run2/t1#0", "1").
			ReplyTo("run2/t1#1", "1")

		qc, err := NewQrelsCreator("qrels", runner, DefaultQrelsCreatorConfig())
		require.NoError(t, err)

		responses := []domain.Response{
			testutils.SampleResponse("run1", "t1", "identical text"),
			testutils.SampleResponse("run2", "t1", "identical text"),
		}
		qrels, err := qc.CreateQrels(ctx, responses, banks)
		require.NoError(t, err)

		require.Equal(t, 1, qrels.Len())
		grade, ok := qrels.Lookup("t1", domain.DocID("identical text"))
		require.True(t, ok)
		assert.Equal(t, 3, grade)
	})

	t.Run("runner error is fatal", func(t *testing.T) {
		runner := testutils.NewMockBatchRunner()
		runner.Err = errors.New("provider down")

		qc, err := NewQrelsCreator("qrels", runner, DefaultQrelsCreatorConfig())
		require.NoError(t, err)

		_, err = qc.CreateQrels(ctx, []domain.Response{
			testutils.SampleResponse("run1", "t1", "text"),
		}, banks)
		require.Error(t, err)
	})
}
