package directory

import "time"

type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ManagerID string `json:"managerId,omitempty"`
	IsActive  bool   `json:"isActive"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Presence is the "where is this employee now" projection kept on the user.
type Presence struct {
	Location  Location
	IsOnline  bool
	UpdatedAt time.Time
}
