package model

import "time"

// Account is a registered user of the community-events app. Passwords are
// stored as bcrypt hashes and never leave the process.
type Account struct {
	ID             string    `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"` // bcrypt hash, never expose
	IsAdmin        bool      `json:"isAdmin" db:"is_admin"`
	ProfilePicture string    `json:"profilePicture,omitempty" db:"profile_picture"`
	CoverPicture   string    `json:"coverPicture,omitempty" db:"cover_picture"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	LastUpdated    time.Time `json:"lastUpdated" db:"last_updated"`
}

// AccountUpdate carries a partial account mutation. Nil fields are left
// untouched; this is distinct from setting a field to its zero value.
type AccountUpdate struct {
	Username       *string `json:"username"`
	Email          *string `json:"email"`
	Password       *string `json:"password"`
	IsAdmin        *bool   `json:"isAdmin"`
	ProfilePicture *string `json:"profilePicture"`
	CoverPicture   *string `json:"coverPicture"`
}

// IsEmpty reports whether the update carries no caller-supplied fields.
// The implicit last_updated stamp does not count.
func (u AccountUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.Password == nil &&
		u.IsAdmin == nil && u.ProfilePicture == nil && u.CoverPicture == nil
}
