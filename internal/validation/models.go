package validation

import (
	"guardian/internal/decision"
	"guardian/internal/evidence/registry"
)

// ValidationResult is the per-record output of one upload.
type ValidationResult struct {
	Identifier     string                `json:"identifier"`
	Name           string                `json:"name"`
	Status         decision.Status       `json:"status"`
	Confidence     int                   `json:"confidence"`
	Issues         []string              `json:"issues"`
	EvidenceSource string                `json:"evidence_source"`
	EvidenceType   registry.EvidenceType `json:"evidence_type"`
	EvidenceData   map[string]any        `json:"evidence_data"`
}

// Summary counts results by status.
type Summary struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Flagged  int `json:"flagged"`
	Unknown  int `json:"unknown"`
}

func Summarize(results []ValidationResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case decision.StatusVerified:
			s.Verified++
		case decision.StatusFlagged:
			s.Flagged++
		case decision.StatusUnknown:
			s.Unknown++
		}
	}
	return s
}
