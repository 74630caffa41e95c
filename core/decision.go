package core

import "time"

// Decision is the result of one ACL check. Callers only ever act on
// Allowed(); the richer outcome taxonomy exists for the audit trail.
type Decision struct {
	Outcome  Outcome
	Block    string
	Policy   Policy
	Reason   string
	Err      error
	Duration time.Duration
}

func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllowed
}
