package domain

// Position is a CTF position: collateral plus one index set per condition it
// depends on. ConditionIDs and IndexSets are parallel slices.
type Position struct {
	ID              string
	CollateralToken string
	ConditionIDs    []string
	IndexSets       []string // decimal-encoded bitmasks
	Balance         string   // raw token units, decimal
}

// ConditionIndex returns the position of conditionID in p.ConditionIDs, or -1.
// Condition ids are compared case-insensitively since hex casing varies
// between sources.
func (p Position) ConditionIndex(conditionID string) int {
	for i, id := range p.ConditionIDs {
		if equalHex(id, conditionID) {
			return i
		}
	}
	return -1
}

// Without returns a copy of p with the condition at index i removed. The ID
// and balance are cleared since they no longer describe the result.
func (p Position) Without(i int) Position {
	out := Position{CollateralToken: p.CollateralToken}
	out.ConditionIDs = make([]string, 0, len(p.ConditionIDs))
	out.IndexSets = make([]string, 0, len(p.IndexSets))
	for j := range p.ConditionIDs {
		if j == i {
			continue
		}
		out.ConditionIDs = append(out.ConditionIDs, p.ConditionIDs[j])
		out.IndexSets = append(out.IndexSets, p.IndexSets[j])
	}
	return out
}

// Clone returns a deep copy of p.
func (p Position) Clone() Position {
	out := p
	out.ConditionIDs = append([]string(nil), p.ConditionIDs...)
	out.IndexSets = append([]string(nil), p.IndexSets...)
	return out
}
