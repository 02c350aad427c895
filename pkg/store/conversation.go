package store

// Conversation represents the active send-pipeline state for one chat
// session, kept in memory while a request moves through its phases.
type Conversation struct {
	ID     string `json:"id"` // ChatSessionID
	UserID string `json:"user_id"`
	Phase  string `json:"phase"`

	// Metadata for last interaction
	LastMessage string `json:"last_message"`
}

const (
	PhaseIdle            = "IDLE"
	PhasePersistingUser  = "PERSISTING_USER"
	PhaseAwaitingModel   = "AWAITING_MODEL"
	PhasePersistingReply = "PERSISTING_REPLY"
	PhaseErrorRecovery   = "ERROR_RECOVERY"
)
