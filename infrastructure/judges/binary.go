package judges

import "strings"

// BinaryVerdict is the strict outcome of parsing a yes/no grading reply.
// Unparseable is distinct from No so unparseable replies stay visible in
// observability, even though both score 0.
type BinaryVerdict int

const (
	// VerdictNo means the model answered no.
	VerdictNo BinaryVerdict = iota

	// VerdictYes means the model answered yes.
	VerdictYes

	// VerdictUnparseable means the reply matched neither form.
	VerdictUnparseable
)

// String returns the verdict name for logging and span attributes.
func (v BinaryVerdict) String() string {
	switch v {
	case VerdictYes:
		return "yes"
	case VerdictNo:
		return "no"
	default:
		return "unparseable"
	}
}

// Score returns the binary grading contribution: 1 for yes, 0 otherwise.
func (v BinaryVerdict) Score() int {
	if v == VerdictYes {
		return 1
	}
	return 0
}

// ParseBinaryVerdict classifies a grading reply. After trimming and case
// folding, a reply starting with "1" or "yes" is yes, one starting with
// "0" or "no" is no, and anything else (including the empty reply) is
// unparseable.
func ParseBinaryVerdict(text string) BinaryVerdict {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.HasPrefix(t, "1") || strings.HasPrefix(t, "yes"):
		return VerdictYes
	case strings.HasPrefix(t, "0") || strings.HasPrefix(t, "no"):
		return VerdictNo
	default:
		return VerdictUnparseable
	}
}
