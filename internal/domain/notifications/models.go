package notifications

import "time"

// Event is a fire-and-forget message addressed to one user.
type Event struct {
	Type     string
	UserID   string
	Title    string
	Body     string
	EntityID string
}

type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
