// Package cascade deletes a user together with every post the user owns
// and every comment on those posts. No foreign key ties comments to users,
// so the engine is the only thing keeping the tables consistent.
//
// A deletion is a fixed plan of steps run strictly in order, children
// before parents:
//
//	resolve posts -> delete comments -> delete posts -> delete user
//
// Whatever step fails, every comment still in the store points at a post
// that is still in the store.
package cascade

import (
	"context"
	"fmt"
	"log/slog"
)

// Step is one stage of a deletion plan.
type Step int

const (
	StepResolve Step = iota + 1
	StepDeleteComments
	StepDeletePosts
	StepDeleteUser
)

func (s Step) String() string {
	switch s {
	case StepResolve:
		return "resolve posts"
	case StepDeleteComments:
		return "delete comments"
	case StepDeletePosts:
		return "delete posts"
	case StepDeleteUser:
		return "delete user"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	userPlan = []Step{StepResolve, StepDeleteComments, StepDeletePosts, StepDeleteUser}
	postPlan = []Step{StepDeleteComments, StepDeletePosts}
)

// StepError reports the step a plan stopped at. Steps after it never ran.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("cascade: %s: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

// Result summarizes a user deletion.
type Result struct {
	UserID          int64   `json:"user_id"`
	PostIDs         []int64 `json:"post_ids"`
	CommentsDeleted int64   `json:"comments_deleted"`
	PostsDeleted    int64   `json:"posts_deleted"`
	UserDeleted     bool    `json:"user_deleted"`
}

// NotFound reports a deletion that removed nothing at all.
func (r Result) NotFound() bool {
	return !r.UserDeleted && r.PostsDeleted == 0 && r.CommentsDeleted == 0
}

// PostResult summarizes a post deletion.
type PostResult struct {
	PostID          int64 `json:"post_id"`
	CommentsDeleted int64 `json:"comments_deleted"`
	PostDeleted     bool  `json:"post_deleted"`
}

// NotFound reports a deletion that removed nothing at all.
func (r PostResult) NotFound() bool {
	return !r.PostDeleted && r.CommentsDeleted == 0
}

// Engine executes deletion plans through a Runner.
type Engine struct {
	run    Runner
	logger *slog.Logger
}

// New returns an Engine. A nil logger means slog.Default().
func New(run Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{run: run, logger: logger}
}

// DeleteUser removes the user, the user's posts and their comments.
// Deleting an unknown user is not an error; the Result reports NotFound.
// On failure the error is a *StepError and the Result carries only UserID.
func (e *Engine) DeleteUser(ctx context.Context, userID int64) (Result, error) {
	var st state
	err := e.run(ctx, func(s Store) error {
		st = state{userID: userID}
		return st.execute(ctx, s, userPlan)
	})
	if err != nil {
		e.logger.Error("cascade: delete user failed", "user_id", userID, "err", err)
		return Result{UserID: userID}, err
	}

	res := Result{
		UserID:          userID,
		PostIDs:         st.postIDs,
		CommentsDeleted: st.comments,
		PostsDeleted:    st.posts,
		UserDeleted:     st.users > 0,
	}
	if res.PostIDs == nil {
		res.PostIDs = []int64{}
	}
	e.logger.Info("cascade: user deleted",
		"user_id", userID,
		"posts", res.PostsDeleted,
		"comments", res.CommentsDeleted,
		"user_deleted", res.UserDeleted,
	)
	return res, nil
}

// DeletePost removes the post and its comments, comments first.
func (e *Engine) DeletePost(ctx context.Context, postID int64) (PostResult, error) {
	var st state
	err := e.run(ctx, func(s Store) error {
		st = state{postIDs: []int64{postID}}
		return st.execute(ctx, s, postPlan)
	})
	if err != nil {
		e.logger.Error("cascade: delete post failed", "post_id", postID, "err", err)
		return PostResult{PostID: postID}, err
	}

	res := PostResult{
		PostID:          postID,
		CommentsDeleted: st.comments,
		PostDeleted:     st.posts > 0,
	}
	e.logger.Info("cascade: post deleted",
		"post_id", postID,
		"comments", res.CommentsDeleted,
		"post_deleted", res.PostDeleted,
	)
	return res, nil
}

// state is what the steps of one plan hand to each other.
type state struct {
	userID   int64
	postIDs  []int64
	comments int64
	posts    int64
	users    int64
}

func (st *state) execute(ctx context.Context, s Store, plan []Step) error {
	for _, step := range plan {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: step, Err: err}
		}
		if err := st.apply(ctx, s, step); err != nil {
			return &StepError{Step: step, Err: err}
		}
	}
	return nil
}

func (st *state) apply(ctx context.Context, s Store, step Step) error {
	var err error
	switch step {
	case StepResolve:
		st.postIDs, err = s.PostIDsByUser(ctx, st.userID)
	case StepDeleteComments:
		st.comments, err = s.DeleteCommentsByPosts(ctx, st.postIDs...)
	case StepDeletePosts:
		st.posts, err = s.DeletePosts(ctx, st.postIDs...)
	case StepDeleteUser:
		st.users, err = s.DeleteUser(ctx, st.userID)
	default:
		err = fmt.Errorf("unknown step %d", int(step))
	}
	return err
}
