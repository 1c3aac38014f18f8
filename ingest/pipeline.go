// Package ingest performs the one-shot bulk load of posts, comments and
// users from the remote source into the store.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Skryldev/placeholder-sync/db"
	"github.com/Skryldev/placeholder-sync/models"
	"github.com/Skryldev/placeholder-sync/repo"
	"github.com/Skryldev/placeholder-sync/source"
)

// Source is what the pipeline needs from the remote API.
// *source.Client satisfies it.
type Source interface {
	FetchPosts(ctx context.Context, limit int) ([]source.Post, error)
	FetchUsers(ctx context.Context, limit int) ([]source.User, error)
	FetchComments(ctx context.Context, postID int64, limit int) ([]source.Comment, error)
}

var _ Source = (*source.Client)(nil)

// Options bounds the load and picks the write mode.
type Options struct {
	PostLimit    int
	UserLimit    int
	CommentLimit int

	// Upsert keys every write by source id so a re-run overwrites rows in
	// place. When false rows are blindly inserted and a second run fails on
	// the unique source-id indexes.
	Upsert bool
}

// DefaultOptions mirrors the source client's defaults with upserts on.
func DefaultOptions() Options {
	return Options{
		PostLimit:    source.DefaultPostLimit,
		UserLimit:    source.DefaultUserLimit,
		CommentLimit: source.DefaultCommentLimit,
		Upsert:       true,
	}
}

// Report summarizes a committed run.
type Report struct {
	Posts    int
	Comments int
	Users    int
	Elapsed  time.Duration
}

// Pipeline orchestrates source fetches and store writes.
type Pipeline struct {
	db     *db.DB
	src    Source
	opts   Options
	logger *slog.Logger
}

// New returns a Pipeline. A nil logger means slog.Default().
func New(d *db.DB, src Source, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{db: d, src: src, opts: opts, logger: logger}
}

// Run ensures the schema exists and loads everything inside one
// transaction. On any source or store error the transaction is rolled back
// and the store is left exactly as it was; the zero Report is returned.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	start := time.Now()

	if err := repo.CreateSchema(ctx, p.db); err != nil {
		return Report{}, fmt.Errorf("ingest: %w", err)
	}

	var rep Report
	err := p.db.ExecTx(ctx, func(tx *db.Tx) error {
		rep = Report{}
		w := newWriter(tx, p.opts.Upsert)

		posts, err := p.src.FetchPosts(ctx, p.opts.PostLimit)
		if err != nil {
			return fmt.Errorf("fetch posts: %w", err)
		}
		for _, post := range posts {
			if err := w.post(ctx, post.Params()); err != nil {
				return err
			}
			rep.Posts++

			comments, err := p.src.FetchComments(ctx, post.ID, p.opts.CommentLimit)
			if err != nil {
				return fmt.Errorf("fetch comments of post %d: %w", post.ID, err)
			}
			for _, c := range comments {
				if err := w.comment(ctx, c.Params(post.ID)); err != nil {
					return err
				}
				rep.Comments++
			}
			p.logger.Debug("ingest: post loaded", "post_id", post.ID, "comments", len(comments))
		}

		users, err := p.src.FetchUsers(ctx, p.opts.UserLimit)
		if err != nil {
			return fmt.Errorf("fetch users: %w", err)
		}
		for _, u := range users {
			if err := w.user(ctx, u.Params()); err != nil {
				return err
			}
			rep.Users++
		}
		return nil
	})
	if err != nil {
		p.logger.Error("ingest: run rolled back",
			"err", err,
			"elapsed", time.Since(start),
		)
		return Report{}, fmt.Errorf("ingest: %w", err)
	}

	rep.Elapsed = time.Since(start)
	p.logger.Info("ingest: run committed",
		"posts", rep.Posts,
		"comments", rep.Comments,
		"users", rep.Users,
		"upsert", p.opts.Upsert,
		"elapsed", rep.Elapsed,
	)
	return rep, nil
}

// writer routes each record to Insert or Upsert.
type writer struct {
	posts    repo.PostRepository
	comments repo.CommentRepository
	users    repo.UserRepository
	upsert   bool
}

func newWriter(q db.Querier, upsert bool) *writer {
	return &writer{
		posts:    repo.NewPostRepo(q),
		comments: repo.NewCommentRepo(q),
		users:    repo.NewUserRepo(q),
		upsert:   upsert,
	}
}

func (w *writer) post(ctx context.Context, p models.CreatePostParams) error {
	var err error
	if w.upsert {
		_, err = w.posts.Upsert(ctx, p)
	} else {
		_, err = w.posts.Insert(ctx, p)
	}
	return err
}

func (w *writer) comment(ctx context.Context, p models.CreateCommentParams) error {
	var err error
	if w.upsert {
		_, err = w.comments.Upsert(ctx, p)
	} else {
		_, err = w.comments.Insert(ctx, p)
	}
	return err
}

func (w *writer) user(ctx context.Context, p models.CreateUserParams) error {
	var err error
	if w.upsert {
		_, err = w.users.Upsert(ctx, p)
	} else {
		_, err = w.users.Insert(ctx, p)
	}
	return err
}
