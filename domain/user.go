package domain

import (
	"errors"
	"strings"
	"time"
)

type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Image     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Author is the subset of a user attached to posts in listings and
// single-post views.
type Author struct {
	ID    string
	Name  string
	Image *string
}

func (u User) Validate() error {
	if len(strings.TrimSpace(u.Name)) < 2 {
		return errors.New("name must be at least 2 characters")
	}
	if len(u.Email) < 3 || !strings.Contains(u.Email, "@") {
		return errors.New("invalid email address")
	}
	return nil
}
