package posts

import "time"

// Post is a text post. AuthorEmail references the creating user's email.
type Post struct {
	ID          int64     `json:"id"`
	AuthorEmail string    `json:"email"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"-"`
}

// Confirmation is returned by owner-only mutations.
type Confirmation struct {
	Message string
}

const (
	msgUpdated = "Post updated successfully"
	msgDeleted = "Post deleted successfully"
)
