package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated       EventType = "user_created"
	EventUserScoreChanged  EventType = "user_score_changed"
	EventUserStatusChanged EventType = "user_status_changed"
)

// Event represents a user lifecycle event emitted by the scoring service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Username  string      `json:"username"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	Activated bool   `json:"activated"`
}

// UserScoreChangedPayload payload. QualificationBonus carries the extra
// points granted when a score first crosses the qualification threshold.
type UserScoreChangedPayload struct {
	OldScore           int `json:"old_score"`
	NewScore           int `json:"new_score"`
	QualificationBonus int `json:"qualification_bonus,omitempty"`
}

// UserStatusChangedPayload payload.
type UserStatusChangedPayload struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Reason    string `json:"reason,omitempty"`
}
