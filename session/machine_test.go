package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"murmur/audio"
)

type fakeCapture struct {
	startErr error
	stopErr  error
	frames   uint64
	starts   atomic.Int64
}

func (f *fakeCapture) Start() (audio.Handle, error) {
	if f.startErr != nil {
		return 0, f.startErr
	}
	return audio.Handle(f.starts.Add(1)), nil
}

func (f *fakeCapture) Stop(h audio.Handle) (audio.Blob, error) {
	if f.stopErr != nil {
		return audio.Blob{}, f.stopErr
	}
	frames := f.frames
	if frames == 0 {
		frames = 16000
	}
	return audio.Blob{Data: []byte("pcm"), Format: "flac", Frames: frames}, nil
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestToggleCycle(t *testing.T) {
	done := make(chan struct{})
	var gotText string
	m := NewMachine(MachineConfig{
		Capture: &fakeCapture{},
		Transcribe: func(ctx context.Context, blob audio.Blob) (string, error) {
			return "hello", nil
		},
		OnResult: func(text string) {
			gotText = text
			close(done)
		},
	})

	if m.State() != StateIdle {
		t.Fatalf("initial state = %v", m.State())
	}
	m.Toggle()
	if m.State() != StateRecording {
		t.Fatalf("after first toggle state = %v", m.State())
	}
	m.Toggle()
	waitFor(t, done, "transcription result")
	if gotText != "hello" {
		t.Errorf("text = %q", gotText)
	}
	if m.State() != StateIdle {
		t.Errorf("final state = %v, want idle", m.State())
	}
}

func TestToggleWhileTranscribingIsNoop(t *testing.T) {
	gate := make(chan struct{})
	var calls atomic.Int64
	done := make(chan struct{})
	m := NewMachine(MachineConfig{
		Capture: &fakeCapture{},
		Transcribe: func(ctx context.Context, blob audio.Blob) (string, error) {
			calls.Add(1)
			<-gate
			return "one", nil
		},
		OnResult: func(string) { close(done) },
	})

	m.Toggle() // idle -> recording
	m.Toggle() // recording -> transcribing (request in flight)

	// Rapid toggles while the first request is still in flight.
	m.Toggle()
	m.Toggle()
	if m.State() != StateTranscribing {
		t.Fatalf("state = %v, want transcribing", m.State())
	}

	close(gate)
	waitFor(t, done, "transcription result")
	if got := calls.Load(); got != 1 {
		t.Errorf("transcribe called %d times, want exactly 1", got)
	}
}

func TestCaptureStartFailureStaysIdle(t *testing.T) {
	errCh := make(chan error, 1)
	m := NewMachine(MachineConfig{
		Capture: &fakeCapture{startErr: errors.New("device unavailable")},
		Transcribe: func(ctx context.Context, blob audio.Blob) (string, error) {
			t.Error("transcribe must not run")
			return "", nil
		},
		OnError: func(err error) { errCh <- err },
	})

	m.Toggle()
	select {
	case err := <-errCh:
		if err == nil {
			t.Error("nil error surfaced")
		}
	case <-time.After(time.Second):
		t.Fatal("no error surfaced")
	}
	if m.State() != StateIdle {
		t.Errorf("state = %v, want idle", m.State())
	}
}

func TestTranscriptionFailureResolvesToIdle(t *testing.T) {
	errCh := make(chan error, 1)
	m := NewMachine(MachineConfig{
		Capture: &fakeCapture{},
		Transcribe: func(ctx context.Context, blob audio.Blob) (string, error) {
			return "", errors.New("backend exploded")
		},
		OnError: func(err error) { errCh <- err },
	})

	m.Toggle()
	m.Toggle()
	select {
	case <-errCh:
	case <-time.After(time.Second):
		t.Fatal("no error surfaced")
	}
	if m.State() != StateIdle {
		t.Errorf("state = %v, want idle (never stuck transcribing)", m.State())
	}
}

func TestTranscriptionTimeoutResolvesToIdle(t *testing.T) {
	errCh := make(chan error, 1)
	m := NewMachine(MachineConfig{
		Capture: &fakeCapture{},
		Timeout: 50 * time.Millisecond,
		Transcribe: func(ctx context.Context, blob audio.Blob) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
		OnError: func(err error) { errCh <- err },
	})

	m.Toggle()
	m.Toggle()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v, want deadline exceeded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout never surfaced")
	}
	if m.State() != StateIdle {
		t.Errorf("state = %v, want idle", m.State())
	}
}

func TestShortRecordingSkipsTranscription(t *testing.T) {
	var calls atomic.Int64
	states := make(chan State, 8)
	m := NewMachine(MachineConfig{
		Capture:   &fakeCapture{frames: 100},
		MinFrames: 1600, // 100ms at 16kHz
		Transcribe: func(ctx context.Context, blob audio.Blob) (string, error) {
			calls.Add(1)
			return "noise", nil
		},
		OnState: func(s State) { states <- s },
	})

	m.Toggle()
	m.Toggle()

	// Drain until idle comes back.
	deadline := time.After(time.Second)
	for {
		select {
		case s := <-states:
			if s == StateIdle {
				if calls.Load() != 0 {
					t.Error("transcribe called for a too-short recording")
				}
				return
			}
		case <-deadline:
			t.Fatal("machine never returned to idle")
		}
	}
}
