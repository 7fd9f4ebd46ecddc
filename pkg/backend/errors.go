package backend

import (
	"fmt"

	"github.com/pkg/errors"
)

// diagnosticBodyLimit caps how much of an unexpected (usually HTML) body is
// carried into an error for diagnostics.
const diagnosticBodyLimit = 100

// ErrDirectoryUnavailable is returned by ListSessions when the directory
// cannot be read at all — a failing status or a non-JSON body, which is what
// a guest's auth redirect looks like. Callers treat it as "no directory",
// not as a hard error.
var ErrDirectoryUnavailable = errors.New("session directory unavailable")

// TransportError wraps a network-level failure (DNS, refused connection,
// broken pipe) before any HTTP response existed.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError means the server answered, but not in the shape the
// contract requires — typically an HTML error or redirect page where JSON
// was expected. Body holds the first diagnosticBodyLimit characters.
type ProtocolError struct {
	Body string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("expected JSON but got: %s", e.Body)
}

// ServerError is a non-success HTTP status with whatever error message the
// server provided, structured or plain text.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

func truncateBody(body string) string {
	if len(body) > diagnosticBodyLimit {
		return body[:diagnosticBodyLimit]
	}
	return body
}
