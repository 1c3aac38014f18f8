// Package source reads posts, users and comments from a JSONPlaceholder
// style API. The client is stateless and never retries: a failed fetch
// aborts the caller's unit of work.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"

	DefaultPostLimit    = 100
	DefaultUserLimit    = 10
	DefaultCommentLimit = 10
)

// Client fetches bounded collections from the remote API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a Client for baseURL whose requests give up after
// timeout. An empty baseURL selects DefaultBaseURL; a zero timeout means
// the caller's context is the only bound.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// FetchPosts returns at most limit posts (DefaultPostLimit when limit <= 0).
func (c *Client) FetchPosts(ctx context.Context, limit int) ([]Post, error) {
	limit = orDefault(limit, DefaultPostLimit)
	var posts []Post
	if err := c.get(ctx, "/posts", url.Values{"_limit": {strconv.Itoa(limit)}}, &posts); err != nil {
		return nil, err
	}
	return truncate(posts, limit), nil
}

// FetchUsers returns at most limit users (DefaultUserLimit when limit <= 0).
func (c *Client) FetchUsers(ctx context.Context, limit int) ([]User, error) {
	limit = orDefault(limit, DefaultUserLimit)
	var users []User
	if err := c.get(ctx, "/users", url.Values{"_limit": {strconv.Itoa(limit)}}, &users); err != nil {
		return nil, err
	}
	return truncate(users, limit), nil
}

// FetchComments returns at most limit comments of postID, filtered by the
// server (DefaultCommentLimit when limit <= 0).
func (c *Client) FetchComments(ctx context.Context, postID int64, limit int) ([]Comment, error) {
	limit = orDefault(limit, DefaultCommentLimit)
	q := url.Values{
		"postId": {strconv.FormatInt(postID, 10)},
		"_limit": {strconv.Itoa(limit)},
	}
	var comments []Comment
	if err := c.get(ctx, "/comments", q, &comments); err != nil {
		return nil, err
	}
	return truncate(comments, limit), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.BaseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &Error{URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &Error{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{URL: u, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &Error{URL: u, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func orDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
