package users

import "time"

// User is the durable credential record for one account. PasswordHash and
// RefreshToken are server-side secrets - never serialize them.
type User struct {
	ID        string `json:"id,omitempty"`      // Unique identifier, immutable after creation
	Handle    string `json:"handle,omitempty"`  // Unique handle, stored lowercase
	Email     string `json:"email,omitempty"`   // User's email address
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"` // Opaque asset URL, upload handled elsewhere
	CoverURL  string `json:"cover_url,omitempty"`

	PasswordHash string `json:"-"` // Hashed password - never serialize
	RefreshToken string `json:"-"` // Currently valid refresh token, empty when logged out

	DateJoined          time.Time `json:"date_joined,omitempty"`
	LastAuthenticatedAt time.Time `json:"last_authenticated_at,omitempty"`
}

// Sanitized returns a copy of the record with credential material stripped.
// Register and login responses must only ever expose this view.
func (u *User) Sanitized() *User {
	view := *u
	view.PasswordHash = ""
	view.RefreshToken = ""
	return &view
}
