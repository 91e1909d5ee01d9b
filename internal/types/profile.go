package types

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the per-user extension record. At most one row exists per user;
// the primary key on user_id enforces the 1:1 relation.
type Profile struct {
	UserID    uuid.UUID  `json:"user_id"`
	Age       *int       `json:"age,omitempty"`
	DOB       *time.Time `json:"dob,omitempty"`
	Contact   *string    `json:"contact,omitempty"`
	Region    *string    `json:"region,omitempty"`
	Bio       *string    `json:"bio,omitempty"`
	Image     *string    `json:"image,omitempty"` // URL of the stored asset.
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ProfileView is a Profile joined with the owning user's public identity.
// When no profile row exists yet, the optional fields are nil and the
// timestamps zero; that is a valid state, not an error.
type ProfileView struct {
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Age       *int       `json:"age,omitempty"`
	DOB       *time.Time `json:"dob,omitempty"`
	Contact   *string    `json:"contact,omitempty"`
	Region    *string    `json:"region,omitempty"`
	Bio       *string    `json:"bio,omitempty"`
	Image     *string    `json:"image,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// UpdateProfileParams carries a sparse set of profile fields. Pointers
// distinguish "not provided" from zero values so updates merge instead of
// blanking out stored data.
type UpdateProfileParams struct {
	Name    *string    `json:"name,omitempty"`  // Routed to the users record.
	Email   *string    `json:"email,omitempty"` // Routed to the users record.
	Age     *int       `json:"age,omitempty"`
	DOB     *time.Time `json:"dob,omitempty"`
	Contact *string    `json:"contact,omitempty"`
	Region  *string    `json:"region,omitempty"`
	Bio     *string    `json:"bio,omitempty"`
	Image   *string    `json:"image,omitempty"` // Object store URL, set after upload.
}

// Response is the generic API envelope for success and error payloads.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
