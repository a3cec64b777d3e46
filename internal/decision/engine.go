package decision

import (
	"guardian/internal/evidence/registry"
	"guardian/internal/ingest"
)

// Engine evaluates one input record against its authoritative record. The
// override table, when configured, sits in front of the decision table.
type Engine struct {
	policy    Policy
	overrides *Overrides
}

func NewEngine(policy Policy, overrides *Overrides) *Engine {
	return &Engine{policy: policy, overrides: overrides}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

func (e *Engine) Evaluate(input ingest.InputRecord, truth *registry.AuthoritativeRecord) Verdict {
	if truth != nil {
		if forced, ok := e.overrides.Lookup(input.Identifier()); ok {
			return forced
		}
	}
	return Evaluate(e.policy, input, truth)
}
