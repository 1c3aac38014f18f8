package models

// Comment represents a row in the "comments" table.
// Ownership is only inferred: PostID → Post.UserID. SourceID is the remote
// comment id for ingested rows and nil for rows created locally.
type Comment struct {
	ID       int64  `json:"id"`
	SourceID *int64 `json:"source_id,omitempty"`
	PostID   int64  `json:"post_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Body     string `json:"body"`
}

// CreateCommentParams holds the fields required to create a comment.
type CreateCommentParams struct {
	SourceID *int64 `json:"-"`
	PostID   int64  `json:"post_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Body     string `json:"body"`
}
