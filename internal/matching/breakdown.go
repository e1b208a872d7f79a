package matching

import (
	"encoding/json"
	"fmt"
)

// FactorScore is one factor's contribution to the total, with a
// human-readable rationale surfaced in the UI and kept for audit.
type FactorScore struct {
	Factor string `json:"factor"`
	Points int    `json:"points"`
	Max    int    `json:"max"`
	Reason string `json:"reason"`
}

// Breakdown is the full explanation of a match score. It is stored alongside
// the match as a compact JSON document.
type Breakdown struct {
	Total   int           `json:"total"`
	Factors []FactorScore `json:"factors"`
}

// Marshal serializes the breakdown for storage
func (b Breakdown) Marshal() ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal score breakdown: %w", err)
	}
	return data, nil
}

// UnmarshalBreakdown is the structural inverse of Marshal
func UnmarshalBreakdown(data []byte) (Breakdown, error) {
	var b Breakdown
	if err := json.Unmarshal(data, &b); err != nil {
		return Breakdown{}, fmt.Errorf("failed to unmarshal score breakdown: %w", err)
	}
	return b, nil
}
