package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Skryldev/placeholder-sync/db"
	"github.com/Skryldev/placeholder-sync/models"
)

// CommentRepository defines comment persistence. Comments carry only the
// source id of their post; there is no foreign key to posts or users.
type CommentRepository interface {
	Insert(ctx context.Context, params models.CreateCommentParams) (*models.Comment, error)
	Upsert(ctx context.Context, params models.CreateCommentParams) (*models.Comment, error)
	List(ctx context.Context) ([]*models.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
	DeleteByID(ctx context.Context, id int64) (int64, error)
	DeleteByPosts(ctx context.Context, postIDs ...int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// ErrNoSourceID is returned by Upsert for comments without a source id;
// locally created comments have no natural key to upsert on.
var ErrNoSourceID = errors.New("repo/comment: upsert requires a source id")

type commentRepo struct {
	q db.Querier
}

// NewCommentRepo returns a CommentRepository backed by q (a *db.DB or *db.Tx).
func NewCommentRepo(q db.Querier) CommentRepository {
	return &commentRepo{q: q}
}

const (
	sqlInsertComment = `
		INSERT INTO comments (source_id, post_id, name, email, body)
		VALUES (?, ?, ?, ?, ?)`

	sqlListComments = `
		SELECT id, source_id, post_id, name, email, body
		FROM   comments
		ORDER  BY id`

	sqlListCommentsByPost = `
		SELECT id, source_id, post_id, name, email, body
		FROM   comments
		WHERE  post_id = ?
		ORDER  BY id`

	sqlCountComments = `
		SELECT COUNT(*) FROM comments`
)

// Insert creates a comment tagged with its post's source id.
func (r *commentRepo) Insert(ctx context.Context, p models.CreateCommentParams) (*models.Comment, error) {
	id, err := insertID(ctx, r.q, sqlInsertComment, commentArgs(p)...)
	if err != nil {
		return nil, fmt.Errorf("repo/comment: insert on post %d: %w", p.PostID, err)
	}
	return newComment(id, p), nil
}

// Upsert inserts the comment or overwrites the row with the same source id.
func (r *commentRepo) Upsert(ctx context.Context, p models.CreateCommentParams) (*models.Comment, error) {
	if p.SourceID == nil {
		return nil, ErrNoSourceID
	}
	query := sqlInsertComment + r.q.Dialect().Upsert("source_id", []string{"post_id", "name", "email", "body"})
	id, err := insertID(ctx, r.q, query, commentArgs(p)...)
	if err != nil {
		return nil, fmt.Errorf("repo/comment: upsert %d: %w", *p.SourceID, err)
	}
	return newComment(id, p), nil
}

// List returns every comment ordered by surrogate id.
func (r *commentRepo) List(ctx context.Context) ([]*models.Comment, error) {
	return r.list(ctx, sqlListComments)
}

// ListByPost returns the comments tagged with the given post source id.
func (r *commentRepo) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	return r.list(ctx, sqlListCommentsByPost, postID)
}

// DeleteByID removes one comment by surrogate id.
func (r *commentRepo) DeleteByID(ctx context.Context, id int64) (int64, error) {
	return DeleteWhere(ctx, r.q, "comments", "id", id)
}

// DeleteByPosts removes every comment on the given posts.
func (r *commentRepo) DeleteByPosts(ctx context.Context, postIDs ...int64) (int64, error) {
	return DeleteWhere(ctx, r.q, "comments", "post_id", int64Args(postIDs)...)
}

// Count returns the total number of comments.
func (r *commentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, sqlCountComments).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo/comment: count: %w", err)
	}
	return n, nil
}

func (r *commentRepo) list(ctx context.Context, query string, args ...any) ([]*models.Comment, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repo/comment: list: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func commentArgs(p models.CreateCommentParams) []any {
	var source sql.NullInt64
	if p.SourceID != nil {
		source = sql.NullInt64{Int64: *p.SourceID, Valid: true}
	}
	return []any{source, p.PostID, p.Name, p.Email, p.Body}
}

func scanComment(s scanner) (*models.Comment, error) {
	c := &models.Comment{}
	var source sql.NullInt64
	if err := s.Scan(&c.ID, &source, &c.PostID, &c.Name, &c.Email, &c.Body); err != nil {
		return nil, fmt.Errorf("repo/comment: scan: %w", err)
	}
	if source.Valid {
		c.SourceID = &source.Int64
	}
	return c, nil
}

func newComment(id int64, p models.CreateCommentParams) *models.Comment {
	return &models.Comment{
		ID:       id,
		SourceID: p.SourceID,
		PostID:   p.PostID,
		Name:     p.Name,
		Email:    p.Email,
		Body:     p.Body,
	}
}

var _ CommentRepository = (*commentRepo)(nil)
