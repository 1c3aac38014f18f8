package models

// User represents a row in the "users" table.
// Address and Company are stored as opaque structured blobs.
type User struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Address  Blob   `json:"address"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	Company  Blob   `json:"company"`
}

// CreateUserParams holds the fields required to create a user.
type CreateUserParams struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Address  Blob   `json:"address"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	Company  Blob   `json:"company"`
}
