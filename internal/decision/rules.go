package decision

import (
	"fmt"
	"strings"

	"guardian/internal/evidence/registry"
	"guardian/internal/ingest"
	"guardian/internal/similarity"
)

// IssueNotFound is the single issue reported for unresolved identifiers.
const IssueNotFound = "Registration number not found in registry"

// Evaluate applies the decision table to one record.
// This is pure domain logic - no I/O, no side effects.
//
// Rule order:
//  1. No authoritative record: Unknown
//  2. Address similarity band sets status and confidence
//  3. License cross-check may downgrade, never upgrade
//  4. Confidence is clamped to [0,100]
func Evaluate(policy Policy, input ingest.InputRecord, truth *registry.AuthoritativeRecord) Verdict {
	if truth == nil {
		return Verdict{
			Status:     StatusUnknown,
			Confidence: 0,
			Issues:     []string{IssueNotFound},
		}
	}

	addrScore := similarity.TokenSortRatio(input.Address(), truth.Address)
	v := evaluateAddress(policy, addrScore, truth.Address)
	v = evaluateLicense(policy, v, input.LicenseStatus(), truth.LicenseStatus)
	v.Confidence = clamp(v.Confidence, 0, 100)
	return v
}

func evaluateAddress(policy Policy, addrScore int, registryAddress string) Verdict {
	switch {
	case addrScore >= policy.VerifiedThreshold:
		return Verdict{Status: StatusVerified, Confidence: policy.VerifiedConfidence, Issues: []string{}}
	case addrScore >= policy.AmbiguityThreshold:
		return Verdict{
			Status:     StatusFlagged,
			Confidence: addrScore,
			Issues:     []string{fmt.Sprintf("Address Ambiguity (%d%%): Registry has '%s'", addrScore, registryAddress)},
		}
	default:
		return Verdict{
			Status:     StatusFlagged,
			Confidence: addrScore,
			Issues:     []string{fmt.Sprintf("Address Mismatch: Registry has '%s'", registryAddress)},
		}
	}
}

// evaluateLicense compares license statuses with case-insensitive substring
// tests, so "Active (Permanent)" satisfies "active".
func evaluateLicense(policy Policy, v Verdict, claimed, authoritative string) Verdict {
	truthLic := strings.ToLower(authoritative)
	inputLic := strings.ToLower(claimed)

	switch {
	case strings.Contains(truthLic, "active") && !strings.Contains(inputLic, "active"):
		v.Status = StatusFlagged
		v.Confidence -= policy.LicenseMismatchPenalty
		v.Issues = append(v.Issues, fmt.Sprintf("License Mismatch: Registry says '%s'", authoritative))
	case strings.Contains(truthLic, "expired") || strings.Contains(truthLic, "suspended"):
		// Hard floor regardless of address score.
		v.Status = StatusFlagged
		v.Confidence = 0
		v.Issues = append(v.Issues, "CRITICAL: License is "+authoritative)
	}
	return v
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}
