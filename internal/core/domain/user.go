package domain

import "time"

// User models the authenticated operator of the admin tool as reported
// by the auth backend. The gateway never stores credentials; the backend
// owns identity and issues the opaque bearer token.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
