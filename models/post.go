package models

// Post represents a row in the "posts" table.
// PostID and UserID are source ids; UserID is not enforced by a foreign key.
type Post struct {
	ID     int64  `json:"id"`
	PostID int64  `json:"post_id"`
	UserID int64  `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// CreatePostParams holds the fields required to create a post.
type CreatePostParams struct {
	PostID int64  `json:"post_id"`
	UserID int64  `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}
