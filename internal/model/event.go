package model

import "time"

// Event is a community event posted by an account. The image field holds a
// reference path produced by the upload storage; its contents are opaque here.
type Event struct {
	ID          string    `json:"id" db:"id"`
	AccountID   string    `json:"accountId" db:"account_id"`
	Username    string    `json:"username" db:"username"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Image       string    `json:"image,omitempty" db:"image"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	LastUpdated time.Time `json:"lastUpdated" db:"last_updated"`
}

// EventUpdate carries a partial event mutation. Nil fields are left untouched.
type EventUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// IsEmpty reports whether the update carries no caller-supplied fields.
func (u EventUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Image == nil
}
