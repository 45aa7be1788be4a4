package transcriber

import (
	"context"
	"sync/atomic"

	"murmur/audio"
)

// Fake is a scriptable Transcriber for tests: fixed text or error, a call
// counter, and an optional gate to hold a request in flight.
type Fake struct {
	Text  string
	Err   error
	Gate  chan struct{} // when non-nil, Transcribe blocks until it receives
	calls atomic.Int64
}

func (f *Fake) Name() string    { return "fake" }
func (f *Fake) BaseURL() string { return "fake://" }

func (f *Fake) Calls() int64 { return f.calls.Load() }

func (f *Fake) Transcribe(ctx context.Context, _ audio.Blob, _ Options) (Result, error) {
	f.calls.Add(1)
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return Result{}, wrapTransport(f.Name(), ctx.Err())
		}
	}
	if f.Err != nil {
		return Result{}, f.Err
	}
	return Result{Text: f.Text}, nil
}
