package events

import "time"

const (
	TypeUserRegistered   = "USER_REGISTERED"
	TypeUserLogin        = "USER_LOGIN"
	TypeSessionCreated   = "SESSION_CREATED"
	TypeSessionDeleted   = "SESSION_DELETED"
	TypeMessageExchanged = "MESSAGE_EXCHANGED"
)

func NewUserRegistered(userID, email string) Event {
	return BaseEvent{
		Type: TypeUserRegistered,
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
		},
		OccurredAt: time.Now(),
	}
}

func NewUserLogin(userID string) Event {
	return BaseEvent{
		Type: TypeUserLogin,
		Data: map[string]interface{}{
			"user_id": userID,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionCreated(sessionID, userID string) Event {
	return BaseEvent{
		Type: TypeSessionCreated,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionDeleted(sessionID, userID string) Event {
	return BaseEvent{
		Type: TypeSessionDeleted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
		},
		OccurredAt: time.Now(),
	}
}

// NewMessageExchanged fires after a completed send pipeline, degraded
// or not. Message bodies stay out of the payload on purpose.
func NewMessageExchanged(sessionID, userID string, degraded bool) Event {
	return BaseEvent{
		Type: TypeMessageExchanged,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
			"degraded":   degraded,
		},
		OccurredAt: time.Now(),
	}
}
