package models

// FetchRunProgress is a point-in-time view of one orchestrator run.
// Values handed to callers are copies; mutating them has no effect on the run.
type FetchRunProgress struct {
	RunID          string   `json:"run_id" yaml:"run_id"`
	Total          int      `json:"total" yaml:"total"`
	Completed      int      `json:"completed" yaml:"completed"`
	CurrentLocator string   `json:"current_locator,omitempty" yaml:"current_locator,omitempty"`
	Errors         []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Done reports whether every item of the run has resolved.
func (p FetchRunProgress) Done() bool {
	return p.Completed >= p.Total
}
