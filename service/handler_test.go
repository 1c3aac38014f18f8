package service_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Skryldev/placeholder-sync/service"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newTestService(t, service.Options{CascadePostDelete: true})
	return service.NewHandler(svc, nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHandler_Root(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["message"]; got != "Welcome to the API." {
		t.Errorf("message = %v", got)
	}
	if rec := do(t, h, http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rec.Code)
	}
}

func TestHandler_Healthz(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
}

func TestHandler_CreateAndListPosts(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/posts", `{"post_id":1,"user_id":7,"title":"t","body":"b"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodGet, "/posts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	posts, ok := decodeBody(t, rec)["posts"].([]any)
	if !ok || len(posts) != 1 {
		t.Fatalf("posts = %v", posts)
	}
	if p := posts[0].(map[string]any); p["title"] != "t" || p["user_id"] != float64(7) {
		t.Errorf("post = %v", p)
	}
}

func TestHandler_ListsAreEmptyArrays(t *testing.T) {
	h := newTestHandler(t)

	for path, key := range map[string]string{"/posts": "posts", "/users": "users", "/comments/1": "comments"} {
		rec := do(t, h, http.MethodGet, path, "")
		if !strings.Contains(rec.Body.String(), `"`+key+`":[]`) {
			t.Errorf("%s body = %s, want an empty array", path, rec.Body)
		}
	}
}

func TestHandler_CreateUserAndComment(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/users",
		`{"user_id":7,"name":"n","username":"u","email":"e","address":{"city":"Gwenborough"},"phone":"p","website":"w","company":{"name":"c"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user status = %d body=%s", rec.Code, rec.Body)
	}
	rec = do(t, h, http.MethodPost, "/comments", `{"post_id":3,"name":"n","email":"e","body":"hi"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create comment status = %d body=%s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodGet, "/users", "")
	users := decodeBody(t, rec)["users"].([]any)
	address := users[0].(map[string]any)["address"].(map[string]any)
	if address["city"] != "Gwenborough" {
		t.Errorf("address = %v", address)
	}

	rec = do(t, h, http.MethodGet, "/comments/3", "")
	comments := decodeBody(t, rec)["comments"].([]any)
	if len(comments) != 1 || comments[0].(map[string]any)["body"] != "hi" {
		t.Errorf("comments = %v", comments)
	}
}

func TestHandler_BlobKeepsLargeIntegers(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/users", `{"user_id":7,"company":{"id":9007199254740993}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user status = %d body=%s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodGet, "/users", "")
	if !strings.Contains(rec.Body.String(), `"company":{"id":9007199254740993}`) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestHandler_ListUserPosts(t *testing.T) {
	h := newTestHandler(t)

	for _, body := range []string{
		`{"post_id":1,"user_id":7,"title":"a","body":"b"}`,
		`{"post_id":2,"user_id":8,"title":"c","body":"d"}`,
	} {
		if rec := do(t, h, http.MethodPost, "/posts", body); rec.Code != http.StatusCreated {
			t.Fatalf("create post status = %d body=%s", rec.Code, rec.Body)
		}
	}

	rec := do(t, h, http.MethodGet, "/users/7/posts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	posts := decodeBody(t, rec)["posts"].([]any)
	if len(posts) != 1 || posts[0].(map[string]any)["post_id"] != float64(1) {
		t.Errorf("posts = %v", posts)
	}

	rec = do(t, h, http.MethodGet, "/users/99/posts", "")
	if got := decodeBody(t, rec)["posts"].([]any); len(got) != 0 {
		t.Errorf("unknown user posts = %v", got)
	}
	if rec := do(t, h, http.MethodGet, "/users/x/posts", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestHandler_QueryStringRoutesAreNotServed(t *testing.T) {
	h := newTestHandler(t)

	cases := []struct{ method, path string }{
		{http.MethodPost, "/create_post?post_id=1&user_id=7&title=t&body=b"},
		{http.MethodPost, "/create_user"},
		{http.MethodPost, "/create_comment"},
		{http.MethodDelete, "/delete_post/1"},
		{http.MethodDelete, "/delete_comment/1"},
		{http.MethodDelete, "/delete_user/1"},
	}
	for _, tc := range cases {
		if rec := do(t, h, tc.method, tc.path, ""); rec.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404", tc.method, tc.path, rec.Code)
		}
	}
}

func TestHandler_DeleteUserCascade(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, http.MethodPost, "/users", `{"user_id":7,"name":"seven"}`)
	do(t, h, http.MethodPost, "/posts", `{"post_id":1,"user_id":7}`)
	do(t, h, http.MethodPost, "/posts", `{"post_id":2,"user_id":7}`)
	for _, postID := range []string{"1", "1", "1", "2"} {
		do(t, h, http.MethodPost, "/comments", `{"post_id":`+postID+`,"body":"c"}`)
	}

	rec := do(t, h, http.MethodDelete, "/users/7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	res := decodeBody(t, rec)["result"].(map[string]any)
	if res["posts_deleted"] != float64(2) || res["comments_deleted"] != float64(4) || res["user_deleted"] != true {
		t.Errorf("result = %v", res)
	}

	rec = do(t, h, http.MethodDelete, "/users/7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("second delete status = %d", rec.Code)
	}
	if msg := decodeBody(t, rec)["message"]; msg != "User not found; nothing deleted." {
		t.Errorf("message = %v", msg)
	}
}

func TestHandler_DeletePostAndComment(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, http.MethodPost, "/posts", `{"post_id":5,"user_id":1}`)
	rec := do(t, h, http.MethodPost, "/comments", `{"post_id":5,"body":"c"}`)
	id := decodeBody(t, rec)["comment"].(map[string]any)["id"].(float64)

	rec = do(t, h, http.MethodDelete, "/comments/"+jsonInt(id), "")
	if rec.Code != http.StatusOK || decodeBody(t, rec)["deleted"] != true {
		t.Fatalf("delete comment: %d %s", rec.Code, rec.Body)
	}
	rec = do(t, h, http.MethodDelete, "/posts/5", "")
	if rec.Code != http.StatusOK || decodeBody(t, rec)["message"] != "Post deleted." {
		t.Fatalf("delete post: %d %s", rec.Code, rec.Body)
	}
}

func TestHandler_Errors(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, http.MethodPost, "/posts", `{"post_id":1,"user_id":1}`)

	cases := []struct {
		name, method, path, body string
		status                   int
		kind                     string
	}{
		{"bad json", http.MethodPost, "/posts", `{"post_id":`, http.StatusBadRequest, "invalid_request"},
		{"bad id", http.MethodDelete, "/users/seven", "", http.StatusBadRequest, "invalid_request"},
		{"missing ids", http.MethodPost, "/posts", `{"title":"t"}`, http.StatusBadRequest, "invalid_request"},
		{"duplicate", http.MethodPost, "/posts", `{"post_id":1,"user_id":1}`, http.StatusInternalServerError, "store_write"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.path, tc.body)
			if rec.Code != tc.status {
				t.Errorf("status = %d, want %d", rec.Code, tc.status)
			}
			body := decodeBody(t, rec)
			if len(body) != 1 || body["error"] != tc.kind {
				t.Errorf("body = %v, want only the kind %q", body, tc.kind)
			}
		})
	}
}

func TestHandler_RequestID(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/", "")
	if id := rec.Header().Get(service.RequestIDHeader); len(id) != 36 {
		t.Errorf("generated request id = %q, want a UUID", id)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(service.RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if id := rec.Header().Get(service.RequestIDHeader); id != "abc-123" {
		t.Errorf("request id = %q, want the caller's", id)
	}
}

func jsonInt(f float64) string {
	b, _ := json.Marshal(int64(f))
	return string(b)
}
