package domain

import "strings"

// Condition is a question registered on the ConditionalTokens contract.
type Condition struct {
	ID               string
	Oracle           string
	QuestionID       string
	OutcomeSlotCount int
	Resolved         bool
	Payouts          []string // decimal fractions, one per outcome slot; nil until resolved
}

// ConditionIndexSet pairs a condition with the outcome subset chosen on it.
type ConditionIndexSet struct {
	ConditionID string
	IndexSet    string
}

func equalHex(a, b string) bool {
	return strings.EqualFold(trimHexPrefix(a), trimHexPrefix(b))
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// SameAddress reports whether a and b name the same hex address or hash,
// ignoring case and an optional 0x prefix.
func SameAddress(a, b string) bool {
	return equalHex(a, b)
}
