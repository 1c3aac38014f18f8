package service_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/Skryldev/placeholder-sync/db"
	"github.com/Skryldev/placeholder-sync/models"
	"github.com/Skryldev/placeholder-sync/repo"
	"github.com/Skryldev/placeholder-sync/service"
	"github.com/Skryldev/placeholder-sync/source"
	_ "github.com/mattn/go-sqlite3"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test helpers
// ─────────────────────────────────────────────────────────────────────────────

func newTestService(t *testing.T, opts service.Options) (*service.Service, *db.DB) {
	t.Helper()
	d, err := db.Open(db.Config{
		DSN:          ":memory:",
		DriverName:   "sqlite3",
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := repo.CreateSchema(context.Background(), d); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return service.New(d, opts, nil), d
}

func mustCreatePost(t *testing.T, svc *service.Service, postID, userID int64) {
	t.Helper()
	p := models.CreatePostParams{PostID: postID, UserID: userID, Title: "title", Body: "body"}
	if _, err := svc.CreatePost(context.Background(), p); err != nil {
		t.Fatalf("create post %d: %v", postID, err)
	}
}

func mustCreateComment(t *testing.T, svc *service.Service, postID int64) *models.Comment {
	t.Helper()
	c, err := svc.CreateComment(context.Background(), models.CreateCommentParams{
		PostID: postID, Name: "n", Email: "e@x.io", Body: "b",
	})
	if err != nil {
		t.Fatalf("create comment on %d: %v", postID, err)
	}
	return c
}

// ─────────────────────────────────────────────────────────────────────────────
// KindOf
// ─────────────────────────────────────────────────────────────────────────────

func TestKindOf(t *testing.T) {
	srcErr := &source.Error{URL: "/posts", StatusCode: 503}
	cases := []struct {
		name string
		err  error
		want service.Kind
	}{
		{"nil", nil, ""},
		{"source", fmt.Errorf("ingest: %w", srcErr), service.KindSourceUnavailable},
		{"source through tx", &db.DBError{Sentinel: db.ErrTimeout, Cause: srcErr}, service.KindSourceUnavailable},
		{"invalid", fmt.Errorf("%w: bad", service.ErrInvalidRequest), service.KindInvalidRequest},
		{"not found", &db.DBError{Sentinel: db.ErrNotFound}, service.KindNotFound},
		{"connection", &db.DBError{Sentinel: db.ErrConnectionFailed}, service.KindStoreConnection},
		{"timeout", &db.DBError{Sentinel: db.ErrTimeout}, service.KindStoreConnection},
		{"duplicate", fmt.Errorf("repo: %w", &db.DBError{Sentinel: db.ErrDuplicateKey}), service.KindStoreWrite},
		{"unknown", errors.New("boom"), service.KindStoreWrite},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := service.KindOf(tc.err); got != tc.want {
				t.Errorf("KindOf = %q, want %q", got, tc.want)
			}
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Create / list
// ─────────────────────────────────────────────────────────────────────────────

func TestCreatePost_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t, service.Options{})
	ctx := context.Background()
	in := models.CreatePostParams{PostID: 11, UserID: 3, Title: "hello", Body: "world"}

	created, err := svc.CreatePost(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	posts, err := svc.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 1 || !reflect.DeepEqual(posts[0], created) {
		t.Fatalf("posts = %+v, want [%+v]", posts, created)
	}
	if p := posts[0]; p.PostID != in.PostID || p.UserID != in.UserID || p.Title != in.Title || p.Body != in.Body {
		t.Errorf("stored post %+v does not match %+v", p, in)
	}
}

func TestCreatePost_DuplicateIsStoreWrite(t *testing.T) {
	svc, _ := newTestService(t, service.Options{})
	mustCreatePost(t, svc, 1, 1)

	_, err := svc.CreatePost(context.Background(), models.CreatePostParams{PostID: 1, UserID: 2})
	if got := service.KindOf(err); got != service.KindStoreWrite {
		t.Errorf("kind = %q (%v), want store_write", got, err)
	}
}

func TestCreatePost_Invalid(t *testing.T) {
	svc, _ := newTestService(t, service.Options{})

	_, err := svc.CreatePost(context.Background(), models.CreatePostParams{PostID: 0, UserID: 1})
	if !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestCreateUser_BlobsRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, service.Options{})
	ctx := context.Background()
	in := models.CreateUserParams{
		UserID:   1,
		Name:     "Leanne Graham",
		Username: "Bret",
		Email:    "Sincere@april.biz",
		Address: models.Blob{
			"street":  "Kulas Light",
			"zipcode": "92998-3874",
			"geo":     map[string]any{"lat": "-37.3159", "lng": "81.1496"},
		},
		Phone:   "1-770-736-8031 x56442",
		Website: "hildegard.org",
		Company: models.Blob{"name": "Romaguera-Crona", "catchPhrase": "Multi-layered client-server neural-net"},
	}

	if _, err := svc.CreateUser(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}
	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("users = %d, want 1", len(users))
	}
	u := users[0]
	if !reflect.DeepEqual(u.Address, in.Address) || !reflect.DeepEqual(u.Company, in.Company) {
		t.Errorf("blobs: address=%v company=%v", u.Address, u.Company)
	}
	if u.Name != in.Name || u.Username != in.Username || u.Email != in.Email || u.Phone != in.Phone || u.Website != in.Website {
		t.Errorf("stored user %+v does not match %+v", u, in)
	}
}

func TestCreateUser_NilBlobs(t *testing.T) {
	svc, _ := newTestService(t, service.Options{})
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, models.CreateUserParams{UserID: 2, Name: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if users[0].Address != nil || users[0].Company != nil {
		t.Errorf("nil blobs came back as %v / %v", users[0].Address, users[0].Company)
	}
}

func TestCreateComment_DropsSourceID(t *testing.T) {
	svc, _ := newTestService(t, service.Options{})
	ctx := context.Background()
	src := int64(500)

	c, err := svc.CreateComment(ctx, models.CreateCommentParams{SourceID: &src, PostID: 4, Body: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.SourceID != nil {
		t.Errorf("SourceID = %d, want nil", *c.SourceID)
	}
	comments, err := svc.ListComments(ctx, 4)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 1 || comments[0].SourceID != nil || comments[0].Body != "b" {
		t.Errorf("comments = %+v", comments)
	}
}

func TestListComments_Empty(t *testing.T) {
	svc, _ := newTestService(t, service.Options{})

	comments, err := svc.ListComments(context.Background(), 99)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if comments == nil || len(comments) != 0 {
		t.Errorf("comments = %#v, want empty non-nil", comments)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete
// ─────────────────────────────────────────────────────────────────────────────

func TestDeletePost_Cascades(t *testing.T) {
	svc, _ := newTestService(t, service.Options{CascadePostDelete: true})
	ctx := context.Background()
	mustCreatePost(t, svc, 1, 1)
	mustCreateComment(t, svc, 1)
	mustCreateComment(t, svc, 1)

	res, err := svc.DeletePost(ctx, 1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !res.PostDeleted || res.CommentsDeleted != 2 {
		t.Errorf("result = %+v", res)
	}
	comments, _ := svc.ListComments(ctx, 1)
	if len(comments) != 0 {
		t.Errorf("comments left behind: %d", len(comments))
	}
}

func TestDeletePost_PostOnly(t *testing.T) {
	svc, _ := newTestService(t, service.Options{CascadePostDelete: false})
	ctx := context.Background()
	mustCreatePost(t, svc, 1, 1)
	mustCreateComment(t, svc, 1)

	res, err := svc.DeletePost(ctx, 1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !res.PostDeleted || res.CommentsDeleted != 0 {
		t.Errorf("result = %+v", res)
	}
	comments, _ := svc.ListComments(ctx, 1)
	if len(comments) != 1 {
		t.Errorf("comments = %d, want the comment kept", len(comments))
	}
}

func TestDeletePost_Absent(t *testing.T) {
	for _, cascadeDelete := range []bool{true, false} {
		svc, _ := newTestService(t, service.Options{CascadePostDelete: cascadeDelete})

		res, err := svc.DeletePost(context.Background(), 42)
		if err != nil {
			t.Fatalf("cascade=%v: delete: %v", cascadeDelete, err)
		}
		if !res.NotFound() {
			t.Errorf("cascade=%v: result = %+v, want NotFound", cascadeDelete, res)
		}
	}
}

func TestDeleteComment(t *testing.T) {
	svc, _ := newTestService(t, service.Options{})
	ctx := context.Background()
	c := mustCreateComment(t, svc, 1)

	ok, err := svc.DeleteComment(ctx, c.ID)
	if err != nil || !ok {
		t.Fatalf("delete = %v, %v", ok, err)
	}
	ok, err = svc.DeleteComment(ctx, c.ID)
	if err != nil || ok {
		t.Errorf("second delete = %v, %v, want false, nil", ok, err)
	}
}

func TestDeleteUser_Scenario(t *testing.T) {
	svc, _ := newTestService(t, service.Options{CascadePostDelete: true})
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, models.CreateUserParams{UserID: 7, Name: "seven"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	mustCreatePost(t, svc, 1, 7)
	mustCreatePost(t, svc, 2, 7)
	for _, postID := range []int64{1, 1, 1, 2} {
		mustCreateComment(t, svc, postID)
	}

	res, err := svc.DeleteUser(ctx, 7)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !res.UserDeleted || res.PostsDeleted != 2 || res.CommentsDeleted != 4 {
		t.Errorf("result = %+v", res)
	}
	posts, _ := svc.ListPosts(ctx)
	users, _ := svc.ListUsers(ctx)
	if len(posts) != 0 || len(users) != 0 {
		t.Errorf("left behind: %d posts, %d users", len(posts), len(users))
	}

	res, err = svc.DeleteUser(ctx, 7)
	if err != nil || !res.NotFound() {
		t.Errorf("second delete = %+v, %v, want NotFound", res, err)
	}
}

func TestPing(t *testing.T) {
	svc, d := newTestService(t, service.Options{})
	if err := svc.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	_ = d.Close()
	err := svc.Ping(context.Background())
	if got := service.KindOf(err); got != service.KindStoreConnection {
		t.Errorf("kind = %q (%v), want store_connection", got, err)
	}
}
