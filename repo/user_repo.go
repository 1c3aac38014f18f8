package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/placeholder-sync/db"
	"github.com/Skryldev/placeholder-sync/models"
)

// UserRepository defines user persistence. Users are addressed by their
// source id (users.user_id), which is what posts reference.
type UserRepository interface {
	Insert(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	Upsert(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	GetByUserID(ctx context.Context, userID int64) (*models.User, error)
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type userRepo struct {
	q db.Querier
}

// NewUserRepo returns a UserRepository backed by q (a *db.DB or *db.Tx).
func NewUserRepo(q db.Querier) UserRepository {
	return &userRepo{q: q}
}

const (
	sqlInsertUser = `
		INSERT INTO users (user_id, name, username, email, address, phone, website, company)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	sqlListUsers = `
		SELECT id, user_id, name, username, email, address, phone, website, company
		FROM   users
		ORDER  BY id`

	sqlGetUserByUserID = `
		SELECT id, user_id, name, username, email, address, phone, website, company
		FROM   users
		WHERE  user_id = ?
		LIMIT  1`

	sqlCountUsers = `
		SELECT COUNT(*) FROM users`
)

var userUpsertColumns = []string{"name", "username", "email", "address", "phone", "website", "company"}

// Insert creates a user; address and company are serialized as blobs.
func (r *userRepo) Insert(ctx context.Context, p models.CreateUserParams) (*models.User, error) {
	id, err := insertID(ctx, r.q, sqlInsertUser, userArgs(p)...)
	if err != nil {
		return nil, fmt.Errorf("repo/user: insert %d: %w", p.UserID, err)
	}
	return newUser(id, p), nil
}

// Upsert inserts the user or overwrites the row holding the same source id.
func (r *userRepo) Upsert(ctx context.Context, p models.CreateUserParams) (*models.User, error) {
	query := sqlInsertUser + r.q.Dialect().Upsert("user_id", userUpsertColumns)
	id, err := insertID(ctx, r.q, query, userArgs(p)...)
	if err != nil {
		return nil, fmt.Errorf("repo/user: upsert %d: %w", p.UserID, err)
	}
	return newUser(id, p), nil
}

// List returns every user ordered by surrogate id.
func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.q.Query(ctx, sqlListUsers)
	if err != nil {
		return nil, fmt.Errorf("repo/user: list: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetByUserID returns the user with the given source id.
// Returns db.ErrNotFound when no record matches.
func (r *userRepo) GetByUserID(ctx context.Context, userID int64) (*models.User, error) {
	return scanUser(r.q.QueryRow(ctx, sqlGetUserByUserID, userID))
}

// DeleteByUserID removes the user row only. Use the cascade engine to take
// the user's posts and comments along.
func (r *userRepo) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	return DeleteWhere(ctx, r.q, "users", "user_id", userID)
}

// Count returns the total number of users.
func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, sqlCountUsers).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo/user: count: %w", err)
	}
	return n, nil
}

func userArgs(p models.CreateUserParams) []any {
	return []any{p.UserID, p.Name, p.Username, p.Email, p.Address, p.Phone, p.Website, p.Company}
}

func scanUser(s scanner) (*models.User, error) {
	u := &models.User{}
	err := s.Scan(&u.ID, &u.UserID, &u.Name, &u.Username, &u.Email,
		&u.Address, &u.Phone, &u.Website, &u.Company)
	if err != nil {
		return nil, fmt.Errorf("repo/user: %w", err)
	}
	return u, nil
}

func newUser(id int64, p models.CreateUserParams) *models.User {
	return &models.User{
		ID:       id,
		UserID:   p.UserID,
		Name:     p.Name,
		Username: p.Username,
		Email:    p.Email,
		Address:  p.Address,
		Phone:    p.Phone,
		Website:  p.Website,
		Company:  p.Company,
	}
}

var _ UserRepository = (*userRepo)(nil)
