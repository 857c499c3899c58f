package domain

import "time"

type EventType string

const (
	EventSignIn           EventType = "signin"
	EventSignUp           EventType = "signup"
	EventBookingRequest   EventType = "booking_request"
	EventBookingConfirmed EventType = "booking_confirmed"
)

// ParseEventFilter maps "all" and "" to the zero value (no filter).
func ParseEventFilter(s string) (EventType, bool) {
	switch EventType(s) {
	case "", "all":
		return "", true
	case EventSignIn, EventSignUp, EventBookingRequest, EventBookingConfirmed:
		return EventType(s), true
	}
	return "", false
}

type ActivityLogEntry struct {
	ID          string         `json:"id"`
	UserID      *string        `json:"user_id"`
	Email       *string        `json:"email"`
	EventType   EventType      `json:"event_type"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}

type ActivityQuery struct {
	EventType EventType // empty means all
	Limit     int
}
