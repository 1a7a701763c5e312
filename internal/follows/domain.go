package follows

import "time"

// Edge is a directed "follower follows followed" record.
type Edge struct {
	ID            int64
	FollowerEmail string
	FollowedEmail string
	CreatedAt     time.Time
}

// Follower is the public projection of an edge returned by follower listings.
type Follower struct {
	Email string `json:"email"`
}

// Status tells callers what a follow-graph mutation did.
type Status string

const (
	StatusFollowed     Status = "followed"
	StatusUnfollowed   Status = "unfollowed"
	StatusNotFollowing Status = "not_following"
)

// Confirmation is returned by Follow and Unfollow. Not following is a valid
// outcome of Unfollow, not an error.
type Confirmation struct {
	Status  Status
	Message string
}

const (
	msgFollowed     = "User followed successfully"
	msgUnfollowed   = "User unfollowed successfully"
	msgNotFollowing = "User was not followed"
)
