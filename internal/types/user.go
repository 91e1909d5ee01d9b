package types

import (
	"time"

	"github.com/google/uuid"
)

// User is the core identity record.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"` // Unique email address used for login.
	Password  string    `json:"-"`     // Hashed password (never exposed).
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicUser is the projection safe to return from any read path.
// The credential-bearing projection (User with Password populated) is only
// produced by the login query.
type PublicUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
