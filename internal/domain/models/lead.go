package models

// ChainID names a retrying lead chain.
type ChainID string

const (
	ChainQ1 ChainID = "q1"
	ChainQ3 ChainID = "q3"
)

// LeadPhase is a chain's lifecycle state.
type LeadPhase string

const (
	LeadInactive  LeadPhase = "inactive"
	LeadActive    LeadPhase = "active"
	LeadSucceeded LeadPhase = "succeeded"
	LeadExpired   LeadPhase = "expired"
)

// LeadState is the orchestrator's per-chain retry record. It is created
// when a passing survey arms the chain and mutated only by the scheduler
// tick that owns it.
type LeadState struct {
	Chain       ChainID   `json:"chain"`
	Phase       LeadPhase `json:"phase"`
	Attempts    int       `json:"attempts"`
	LastAttempt int64     `json:"last_attempt"` // unix milliseconds, 0 = never
	ArmedAt     int64     `json:"armed_at"`     // unix milliseconds
}

// Active reports whether the chain is awaiting further attempts.
func (s LeadState) Active() bool { return s.Phase == LeadActive }
