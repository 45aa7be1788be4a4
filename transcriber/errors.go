package transcriber

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

type ErrorKind int

const (
	// Unreachable: the endpoint could not be contacted at all.
	Unreachable ErrorKind = iota
	// Timeout: the endpoint did not answer within the deadline.
	Timeout
	// BadAudio: the endpoint rejected the audio payload.
	BadAudio
	// ServerError: the endpoint failed while processing.
	ServerError
)

func (k ErrorKind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case Timeout:
		return "timeout"
	case BadAudio:
		return "bad audio"
	default:
		return "server error"
	}
}

// Error is the typed failure every backend returns. Kind drives the
// router's re-resolution policy.
type Error struct {
	Kind    ErrorKind
	Backend string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// IsConnection reports whether err is a connection-level failure
// (unreachable or timed out) as opposed to a transcription-content error.
func IsConnection(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind == Unreachable || te.Kind == Timeout
	}
	return false
}

// wrapTransport classifies a transport-level error from the HTTP client.
func wrapTransport(backend string, err error) *Error {
	kind := Unreachable
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = Timeout
	case errors.As(err, &ne) && ne.Timeout():
		kind = Timeout
	default:
		var ue *url.Error
		if errors.As(err, &ue) && ue.Timeout() {
			kind = Timeout
		}
	}
	return &Error{Kind: kind, Backend: backend, Err: err}
}

// wrapStatus classifies a non-200 HTTP response.
func wrapStatus(backend string, status int, body string) *Error {
	kind := ServerError
	if status >= 400 && status < 500 {
		kind = BadAudio
	}
	return &Error{Kind: kind, Backend: backend, Err: fmt.Errorf("status %d: %s", status, body)}
}
