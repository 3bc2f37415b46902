package judges

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBinaryVerdict(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  BinaryVerdict
	}{
		{"bare one", "1", VerdictYes},
		{"one with whitespace", "  1 \n", VerdictYes},
		{"yes word", "Yes", VerdictYes},
		{"yes with trailing prose", "yes, the response answers it", VerdictYes},
		{"bare zero", "0", VerdictNo},
		{"no word", "No.", VerdictNo},
		{"no with prose", "no - it does not address the question", VerdictNo},
		{"empty reply", "", VerdictUnparseable},
		{"whitespace only", "   ", VerdictUnparseable},
		{"hedging prose", "I think the answer is probably 1", VerdictUnparseable},
		{"unrelated text", "maybe", VerdictUnparseable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBinaryVerdict(tt.reply))
		})
	}
}

func TestBinaryVerdictScore(t *testing.T) {
	assert.Equal(t, 1, VerdictYes.Score())
	assert.Equal(t, 0, VerdictNo.Score())
	assert.Equal(t, 0, VerdictUnparseable.Score())
}

func TestBinaryVerdictString(t *testing.T) {
	assert.Equal(t, "yes", VerdictYes.String())
	assert.Equal(t, "no", VerdictNo.String())
	assert.Equal(t, "unparseable", VerdictUnparseable.String())
}
