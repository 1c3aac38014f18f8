package cascade

import (
	"context"

	"github.com/Skryldev/placeholder-sync/db"
	"github.com/Skryldev/placeholder-sync/repo"
)

// Store is the set of primitives the engine's steps are made of. Every
// method is a single statement against the store.
type Store interface {
	PostIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	DeleteCommentsByPosts(ctx context.Context, postIDs ...int64) (int64, error)
	DeletePosts(ctx context.Context, postIDs ...int64) (int64, error)
	DeleteUser(ctx context.Context, userID int64) (int64, error)
}

// Runner scopes one unit of work and hands fn the Store to run it against.
// Whatever fn returns is returned by the Runner, after the scope is closed.
type Runner func(ctx context.Context, fn func(Store) error) error

// TxRunner runs every plan inside one transaction of d, so a failed step
// rolls back the steps before it.
func TxRunner(d *db.DB) Runner {
	return func(ctx context.Context, fn func(Store) error) error {
		return d.ExecTx(ctx, func(tx *db.Tx) error {
			return fn(NewRepoStore(tx))
		})
	}
}

// DirectRunner runs every step as its own statement on q with no enclosing
// transaction. A failed step leaves the earlier steps applied; the step
// order keeps that state free of orphan comments.
func DirectRunner(q db.Querier) Runner {
	return func(_ context.Context, fn func(Store) error) error {
		return fn(NewRepoStore(q))
	}
}

// NewRepoStore returns a Store backed by the repositories over q.
func NewRepoStore(q db.Querier) Store {
	return &repoStore{
		posts:    repo.NewPostRepo(q),
		comments: repo.NewCommentRepo(q),
		users:    repo.NewUserRepo(q),
	}
}

type repoStore struct {
	posts    repo.PostRepository
	comments repo.CommentRepository
	users    repo.UserRepository
}

func (s *repoStore) PostIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return s.posts.SourceIDsByUser(ctx, userID)
}

func (s *repoStore) DeleteCommentsByPosts(ctx context.Context, postIDs ...int64) (int64, error) {
	return s.comments.DeleteByPosts(ctx, postIDs...)
}

func (s *repoStore) DeletePosts(ctx context.Context, postIDs ...int64) (int64, error) {
	return s.posts.DeleteByPostIDs(ctx, postIDs...)
}

func (s *repoStore) DeleteUser(ctx context.Context, userID int64) (int64, error) {
	return s.users.DeleteByUserID(ctx, userID)
}
