package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/placeholder-sync/db"
	"github.com/Skryldev/placeholder-sync/models"
)

// PostRepository defines post persistence. Lookups by user go through the
// denormalized posts.user_id column; nothing enforces that the user exists.
type PostRepository interface {
	Insert(ctx context.Context, params models.CreatePostParams) (*models.Post, error)
	Upsert(ctx context.Context, params models.CreatePostParams) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Post, error)
	SourceIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	DeleteByPostIDs(ctx context.Context, postIDs ...int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type postRepo struct {
	q db.Querier
}

// NewPostRepo returns a PostRepository backed by q (a *db.DB or *db.Tx).
func NewPostRepo(q db.Querier) PostRepository {
	return &postRepo{q: q}
}

const (
	sqlInsertPost = `
		INSERT INTO posts (post_id, user_id, title, body)
		VALUES (?, ?, ?, ?)`

	sqlListPosts = `
		SELECT id, post_id, user_id, title, body
		FROM   posts
		ORDER  BY id`

	sqlListPostsByUser = `
		SELECT id, post_id, user_id, title, body
		FROM   posts
		WHERE  user_id = ?
		ORDER  BY id`

	sqlPostIDsByUser = `
		SELECT post_id
		FROM   posts
		WHERE  user_id = ?
		ORDER  BY post_id`

	sqlCountPosts = `
		SELECT COUNT(*) FROM posts`
)

// Insert creates a post and returns it with its surrogate id.
func (r *postRepo) Insert(ctx context.Context, p models.CreatePostParams) (*models.Post, error) {
	id, err := insertID(ctx, r.q, sqlInsertPost, p.PostID, p.UserID, p.Title, p.Body)
	if err != nil {
		return nil, fmt.Errorf("repo/post: insert %d: %w", p.PostID, err)
	}
	return newPost(id, p), nil
}

// Upsert inserts the post or, when its source id is already stored,
// overwrites owner, title and body in place.
func (r *postRepo) Upsert(ctx context.Context, p models.CreatePostParams) (*models.Post, error) {
	query := sqlInsertPost + r.q.Dialect().Upsert("post_id", []string{"user_id", "title", "body"})
	id, err := insertID(ctx, r.q, query, p.PostID, p.UserID, p.Title, p.Body)
	if err != nil {
		return nil, fmt.Errorf("repo/post: upsert %d: %w", p.PostID, err)
	}
	return newPost(id, p), nil
}

// List returns every post ordered by surrogate id.
func (r *postRepo) List(ctx context.Context) ([]*models.Post, error) {
	return r.list(ctx, sqlListPosts)
}

// ListByUser returns the posts owned by the given source user id.
func (r *postRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Post, error) {
	return r.list(ctx, sqlListPostsByUser, userID)
}

// SourceIDsByUser resolves the source ids of the posts a user owns.
func (r *postRepo) SourceIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx, sqlPostIDsByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("repo/post: ids by user %d: %w", userID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repo/post: scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteByPostIDs removes the posts with the given source ids. Their
// comments are left alone; cascading is the caller's decision.
func (r *postRepo) DeleteByPostIDs(ctx context.Context, postIDs ...int64) (int64, error) {
	return DeleteWhere(ctx, r.q, "posts", "post_id", int64Args(postIDs)...)
}

// Count returns the total number of posts.
func (r *postRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, sqlCountPosts).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo/post: count: %w", err)
	}
	return n, nil
}

func (r *postRepo) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repo/post: list: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanPost(s scanner) (*models.Post, error) {
	p := &models.Post{}
	if err := s.Scan(&p.ID, &p.PostID, &p.UserID, &p.Title, &p.Body); err != nil {
		return nil, fmt.Errorf("repo/post: scan: %w", err)
	}
	return p, nil
}

func newPost(id int64, p models.CreatePostParams) *models.Post {
	return &models.Post{ID: id, PostID: p.PostID, UserID: p.UserID, Title: p.Title, Body: p.Body}
}

var _ PostRepository = (*postRepo)(nil)
