package entity

import "time"

const (
	EventUserRegistered = "user.registered"
	EventListingCreated = "listing.created"
)

// Event is published after a write commits. Only the fields relevant to Type are set.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	RequestID  string    `json:"request_id,omitempty"`

	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`

	Listing *Listing `json:"listing,omitempty"`
}
