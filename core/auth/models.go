package auth

import "time"

// Principal is the authenticated identity behind a request. It is resolved
// by the transport layer from session claims; the core never creates one.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (p Principal) IsZero() bool { return p.ID == "" }

// AdminGrant links a principal to the platform-wide admin badge.
// At most one grant exists per principal.
type AdminGrant struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	GrantedBy string    `json:"granted_by,omitempty"`
	GrantedAt time.Time `json:"granted_at"` // UTC
}
