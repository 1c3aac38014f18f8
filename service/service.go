// Package service is the CRUD surface over the store. Reads and creates go
// straight to the repositories; user deletion (and, by default, post
// deletion) goes through the cascade engine.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Skryldev/placeholder-sync/cascade"
	"github.com/Skryldev/placeholder-sync/db"
	"github.com/Skryldev/placeholder-sync/models"
	"github.com/Skryldev/placeholder-sync/repo"
)

// Options tunes the service.
type Options struct {
	// CascadePostDelete removes a post's comments together with the post.
	// When false only the post row is removed and its comments stay behind.
	CascadePostDelete bool
}

// Service implements the store operations exposed over HTTP.
type Service struct {
	db       *db.DB
	posts    repo.PostRepository
	users    repo.UserRepository
	comments repo.CommentRepository
	engine   *cascade.Engine
	opts     Options
	logger   *slog.Logger
}

// New returns a Service over d. Cascades run in one transaction each.
func New(d *db.DB, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       d,
		posts:    repo.NewPostRepo(d),
		users:    repo.NewUserRepo(d),
		comments: repo.NewCommentRepo(d),
		engine:   cascade.New(cascade.TxRunner(d), logger),
		opts:     opts,
		logger:   logger,
	}
}

func (s *Service) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.posts.List(ctx)
}

// ListUserPosts returns the posts owned by the user with source id userID.
// A user without posts, or without a row, yields an empty list.
func (s *Service) ListUserPosts(ctx context.Context, userID int64) ([]*models.Post, error) {
	return s.posts.ListByUser(ctx, userID)
}

func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

// ListComments returns the comments of the post with source id postID.
func (s *Service) ListComments(ctx context.Context, postID int64) ([]*models.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

// CreatePost stores a post. A second post with the same source id is a
// write failure.
func (s *Service) CreatePost(ctx context.Context, p models.CreatePostParams) (*models.Post, error) {
	if p.PostID <= 0 || p.UserID <= 0 {
		return nil, fmt.Errorf("%w: post_id and user_id must be positive", ErrInvalidRequest)
	}
	return s.posts.Insert(ctx, p)
}

func (s *Service) CreateUser(ctx context.Context, p models.CreateUserParams) (*models.User, error) {
	if p.UserID <= 0 {
		return nil, fmt.Errorf("%w: user_id must be positive", ErrInvalidRequest)
	}
	return s.users.Insert(ctx, p)
}

// CreateComment stores a comment on the post with source id p.PostID.
// Locally created comments never carry a source id.
func (s *Service) CreateComment(ctx context.Context, p models.CreateCommentParams) (*models.Comment, error) {
	if p.PostID <= 0 {
		return nil, fmt.Errorf("%w: post_id must be positive", ErrInvalidRequest)
	}
	p.SourceID = nil
	return s.comments.Insert(ctx, p)
}

// DeletePost removes the post and, with CascadePostDelete, its comments.
// Deleting an absent post succeeds with a NotFound result.
func (s *Service) DeletePost(ctx context.Context, postID int64) (cascade.PostResult, error) {
	if s.opts.CascadePostDelete {
		return s.engine.DeletePost(ctx, postID)
	}
	n, err := s.posts.DeleteByPostIDs(ctx, postID)
	if err != nil {
		return cascade.PostResult{PostID: postID}, err
	}
	return cascade.PostResult{PostID: postID, PostDeleted: n > 0}, nil
}

// DeleteComment removes the comment with surrogate id commentID and reports
// whether it existed.
func (s *Service) DeleteComment(ctx context.Context, commentID int64) (bool, error) {
	n, err := s.comments.DeleteByID(ctx, commentID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteUser cascades through the user's posts and their comments.
func (s *Service) DeleteUser(ctx context.Context, userID int64) (cascade.Result, error) {
	return s.engine.DeleteUser(ctx, userID)
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
