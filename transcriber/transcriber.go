package transcriber

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"murmur/audio"
)

// Options are the per-request knobs exposed by every backend.
type Options struct {
	// Language is "auto" or an explicit code such as "en" or "zh".
	Language string
	// InverseTextNorm asks the backend to normalize numbers, dates and
	// punctuation in the output.
	InverseTextNorm bool
}

type Result struct {
	Text string
}

// Transcriber converts one recorded audio blob into text.
type Transcriber interface {
	Name() string
	BaseURL() string
	Transcribe(ctx context.Context, blob audio.Blob, opts Options) (Result, error)
}

// newHTTPClient builds the hardened client shared by the backends.
// Transport-level retries stay off: the router owns the retry policy, and a
// duplicate transcription POST would double-bill the audio.
func newHTTPClient(timeout time.Duration) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.Logger = nil
	rc.HTTPClient.Timeout = timeout
	return rc.StandardClient()
}
