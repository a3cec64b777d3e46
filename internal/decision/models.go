package decision

import (
	"errors"
	"fmt"
)

// Status is the verdict outcome for one record.
type Status string

const (
	StatusVerified Status = "Verified"
	StatusFlagged  Status = "Flagged"
	StatusUnknown  Status = "Unknown"
)

// ParseStatus accepts a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusVerified, StatusFlagged, StatusUnknown} {
		if equalFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Verdict is the (status, confidence, issues) tuple for one record.
type Verdict struct {
	Status     Status
	Confidence int
	Issues     []string
	// Forced is set when the verdict came from the override table.
	Forced bool
}

// Policy holds the tunable constants of the decision table.
type Policy struct {
	VerifiedThreshold      int
	AmbiguityThreshold     int
	VerifiedConfidence     int
	LicenseMismatchPenalty int
}

// DefaultPolicy returns the production constants.
func DefaultPolicy() Policy {
	return Policy{
		VerifiedThreshold:      80,
		AmbiguityThreshold:     50,
		VerifiedConfidence:     98,
		LicenseMismatchPenalty: 30,
	}
}

// Validate rejects thresholds that would make bands overlap or leave [0,100].
func (p Policy) Validate() error {
	var errs []error
	if p.AmbiguityThreshold < 0 || p.VerifiedThreshold > 100 || p.AmbiguityThreshold > p.VerifiedThreshold {
		errs = append(errs, fmt.Errorf("thresholds must satisfy 0 <= ambiguity (%d) <= verified (%d) <= 100",
			p.AmbiguityThreshold, p.VerifiedThreshold))
	}
	if p.VerifiedConfidence < 0 || p.VerifiedConfidence > 100 {
		errs = append(errs, fmt.Errorf("verified confidence %d outside [0,100]", p.VerifiedConfidence))
	}
	if p.LicenseMismatchPenalty < 0 {
		errs = append(errs, fmt.Errorf("license mismatch penalty %d is negative", p.LicenseMismatchPenalty))
	}
	return errors.Join(errs...)
}
