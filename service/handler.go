package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Skryldev/placeholder-sync/models"
)

const maxBodyBytes = 1 << 20

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// NewHandler returns the HTTP surface of svc: JSON in, JSON out, errors
// reported as {"error": kind}.
func NewHandler(svc *Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{svc: svc, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("GET /healthz", h.healthz)

	mux.HandleFunc("GET /posts", h.listPosts)
	mux.HandleFunc("POST /posts", h.createPost)
	mux.HandleFunc("DELETE /posts/{postID}", h.deletePost)

	mux.HandleFunc("GET /users", h.listUsers)
	mux.HandleFunc("POST /users", h.createUser)
	mux.HandleFunc("GET /users/{userID}/posts", h.listUserPosts)
	mux.HandleFunc("DELETE /users/{userID}", h.deleteUser)

	mux.HandleFunc("GET /comments/{postID}", h.listComments)
	mux.HandleFunc("POST /comments", h.createComment)
	mux.HandleFunc("DELETE /comments/{commentID}", h.deleteComment)

	return requestLogger(logger, mux)
}

type handler struct {
	svc    *Service
	logger *slog.Logger
}

type message struct {
	Message string `json:"message"`
}

func (h *handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, message{Message: "Welcome to the API."})
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ── Posts ────────────────────────────────────────────────────────────────────

func (h *handler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListPosts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (h *handler) createPost(w http.ResponseWriter, r *http.Request) {
	var p models.CreatePostParams
	if err := decode(w, r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	post, err := h.svc.CreatePost(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Post created.", "post": post})
}

func (h *handler) deletePost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.DeletePost(r.Context(), postID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": deleted("Post", res.NotFound()), "result": res})
}

// ── Users ────────────────────────────────────────────────────────────────────

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *handler) listUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	posts, err := h.svc.ListUserPosts(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var p models.CreateUserParams
	if err := decode(w, r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.svc.CreateUser(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "User created.", "user": user})
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.DeleteUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": deleted("User", res.NotFound()), "result": res})
}

// ── Comments ─────────────────────────────────────────────────────────────────

func (h *handler) listComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	comments, err := h.svc.ListComments(r.Context(), postID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

func (h *handler) createComment(w http.ResponseWriter, r *http.Request) {
	var p models.CreateCommentParams
	if err := decode(w, r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	comment, err := h.svc.CreateComment(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Comment created.", "comment": comment})
}

func (h *handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok, err := h.svc.DeleteComment(r.Context(), commentID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": deleted("Comment", !ok), "deleted": ok})
}

// ── Plumbing ─────────────────────────────────────────────────────────────────

// fail logs the full error and answers with its kind only.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := KindOf(err)
	status := kind.Status()
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "service: request failed",
		"request_id", requestID(r.Context()),
		"kind", string(kind),
		"err", err,
	)
	writeJSON(w, status, map[string]string{"error": string(kind)})
}

func deleted(what string, notFound bool) string {
	if notFound {
		return what + " not found; nothing deleted."
	}
	return what + " deleted."
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidRequest, name)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ── Request logging ──────────────────────────────────────────────────────────

type ctxKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger tags every request with an id (the caller's X-Request-ID or
// a fresh UUID), echoes it back and logs the outcome.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))

		logger.Info("http: request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
