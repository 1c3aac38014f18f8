package service

import (
	"errors"
	"net/http"

	"github.com/Skryldev/placeholder-sync/db"
	"github.com/Skryldev/placeholder-sync/source"
)

// Kind classifies a failure for callers of the service. The kind is the
// whole contract: raw store and transport messages never cross the boundary.
type Kind string

const (
	KindSourceUnavailable Kind = "source_unavailable"
	KindStoreConnection   Kind = "store_connection"
	KindStoreWrite        Kind = "store_write"
	KindNotFound          Kind = "not_found"
	KindInvalidRequest    Kind = "invalid_request"
)

// ErrInvalidRequest is returned for input the service refuses before it
// reaches the store.
var ErrInvalidRequest = errors.New("service: invalid request")

// KindOf classifies err. Source failures are checked first: they may also
// carry a store sentinel after passing through a rolled-back transaction.
// Anything the store reports that is not a connection problem is a write
// failure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, source.ErrUnavailable):
		return KindSourceUnavailable
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case db.IsNotFound(err):
		return KindNotFound
	case db.IsConnectionFailed(err), db.IsTimeout(err):
		return KindStoreConnection
	default:
		return KindStoreWrite
	}
}

// Status is the HTTP status a kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindSourceUnavailable:
		return http.StatusBadGateway
	case KindStoreConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
