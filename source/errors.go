package source

import (
	"errors"
	"fmt"
)

// ErrUnavailable is matched (errors.Is) by every failure of a fetch:
// transport errors, timeouts, non-2xx responses and undecodable bodies.
var ErrUnavailable = errors.New("source: unavailable")

// Error describes one failed fetch.
type Error struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("source: GET %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("source: GET %s: %v", e.URL, e.Err)
}

func (e *Error) Is(target error) bool { return target == ErrUnavailable }
func (e *Error) Unwrap() error        { return e.Err }
