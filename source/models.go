package source

import "github.com/Skryldev/placeholder-sync/models"

// Post is a post as returned by GET /posts.
type Post struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// User is a user as returned by GET /users. Address and company are kept
// as untyped blobs; their shape is the remote API's business.
type User struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Address  models.Blob `json:"address"`
	Phone    string      `json:"phone"`
	Website  string      `json:"website"`
	Company  models.Blob `json:"company"`
}

// Comment is a comment as returned by GET /comments?postId=N.
type Comment struct {
	ID     int64  `json:"id"`
	PostID int64  `json:"postId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Body   string `json:"body"`
}

// Params maps the remote post onto store input.
func (p Post) Params() models.CreatePostParams {
	return models.CreatePostParams{PostID: p.ID, UserID: p.UserID, Title: p.Title, Body: p.Body}
}

// Params maps the remote user onto store input.
func (u User) Params() models.CreateUserParams {
	return models.CreateUserParams{
		UserID:   u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Address:  u.Address,
		Phone:    u.Phone,
		Website:  u.Website,
		Company:  u.Company,
	}
}

// Params maps the remote comment onto store input, tagged with postID.
func (c Comment) Params(postID int64) models.CreateCommentParams {
	id := c.ID
	return models.CreateCommentParams{
		SourceID: &id,
		PostID:   postID,
		Name:     c.Name,
		Email:    c.Email,
		Body:     c.Body,
	}
}
