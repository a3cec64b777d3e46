package validation

import (
	"guardian/internal/decision"
	"guardian/internal/evidence/registry"
	"guardian/internal/ingest"
)

// Assemble combines the claimed identity, the verdict and the evidence
// pointer into one result. Slices and maps are never nil so the JSON
// rendering always carries [] and {}.
func Assemble(record ingest.InputRecord, res registry.Resolution, verdict decision.Verdict) ValidationResult {
	issues := verdict.Issues
	if issues == nil {
		issues = []string{}
	}
	data := res.EvidenceData
	if data == nil {
		data = map[string]any{}
	}
	source := res.EvidenceSource
	if source == "" {
		source = registry.NotFoundSource
	}
	evidenceType := res.EvidenceType
	if evidenceType == "" {
		evidenceType = registry.EvidenceNone
	}

	return ValidationResult{
		Identifier:     record.Identifier(),
		Name:           record.FullName(),
		Status:         verdict.Status,
		Confidence:     verdict.Confidence,
		Issues:         issues,
		EvidenceSource: source,
		EvidenceType:   evidenceType,
		EvidenceData:   data,
	}
}
