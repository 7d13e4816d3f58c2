package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
)

// positionInput is the JSON shape of a position, matching the subgraph's
// field names.
type positionInput struct {
	ID              string   `json:"id"`
	CollateralToken string   `json:"collateralToken"`
	ConditionIDs    []string `json:"conditionIds"`
	IndexSets       []string `json:"indexSets"`
	Balance         string   `json:"balance"`
}

func (p positionInput) toDomain() domain.Position {
	return domain.Position{
		ID:              p.ID,
		CollateralToken: p.CollateralToken,
		ConditionIDs:    p.ConditionIDs,
		IndexSets:       p.IndexSets,
		Balance:         p.Balance,
	}
}

// conditionInput is the JSON shape of a condition.
type conditionInput struct {
	ID               string   `json:"id"`
	Oracle           string   `json:"oracle"`
	QuestionID       string   `json:"questionId"`
	OutcomeSlotCount int      `json:"outcomeSlotCount"`
	Resolved         bool     `json:"resolved"`
	Payouts          []string `json:"payouts"`
}

func (c conditionInput) toDomain() domain.Condition {
	return domain.Condition{
		ID:               c.ID,
		Oracle:           c.Oracle,
		QuestionID:       c.QuestionID,
		OutcomeSlotCount: c.OutcomeSlotCount,
		Resolved:         c.Resolved,
		Payouts:          c.Payouts,
	}
}

type splitInput struct {
	Collateral       string   `json:"collateralToken"`
	ConditionIDs     []string `json:"conditionIds"`
	IndexSets        []string `json:"indexSets"`
	ConditionID      string   `json:"conditionId"`
	OutcomeSlotCount int      `json:"outcomeSlotCount"`
	Partition        []string `json:"partition"`
	Amount           string   `json:"amount"`
}

type mergeInput struct {
	Positions        []positionInput `json:"positions"`
	ConditionID      string          `json:"conditionId"`
	OutcomeSlotCount int             `json:"outcomeSlotCount"`
	Amount           string          `json:"amount"`
}

type redeemInput struct {
	Position  positionInput  `json:"position"`
	Condition conditionInput `json:"condition"`
}

// readInput decodes the JSON document at path into v. "-" reads stdin.
func readInput(path string, stdin io.Reader, v any) error {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
