package entity

import (
	"strings"
	"time"
)

// User is the owner of exactly one progress record.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate validates the user entity
func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(u.Name) == "" {
		return ErrInvalidUserName
	}
	return nil
}
