package domain

import (
	"errors"
	"time"
)

type Post struct {
	ID        string
	Title     string
	Content   string
	Published bool
	AuthorID  string
	Author    Author
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts       []Post
	TotalPages  int
	CurrentPage int
}

func (p Post) Validate() error {
	if p.Title == "" {
		return errors.New("title is required")
	}
	if p.Content == "" {
		return errors.New("content is required")
	}
	return nil
}

// CanMutate reports whether user may edit or delete post. Only the author
// may; there is no admin override.
func CanMutate(user User, post Post) bool {
	return user.ID == post.AuthorID
}
