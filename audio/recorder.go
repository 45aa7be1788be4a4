package audio

import (
	"errors"
	"fmt"
	"sync"
)

// Blob is an opaque encoded audio payload plus its format metadata.
type Blob struct {
	Data   []byte
	Format string // "flac" or "wav"
	Frames uint64 // PCM frames captured
}

// EncodeFunc turns accumulated PCM16 into an encoded payload. Injected so
// the recorder does not depend on a particular codec.
type EncodeFunc func(pcm []byte) (data []byte, format string, err error)

// Handle identifies one in-progress capture.
type Handle uint64

// Recorder adapts a CaptureDevice into a start/stop capability: Start begins
// accumulating PCM, Stop encodes what was captured into a Blob. The handle is
// exclusively owned by the caller between Start and Stop.
type Recorder struct {
	dev    CaptureDevice
	encode EncodeFunc

	mu     sync.Mutex
	active Handle
	next   Handle
	buf    []byte
	frames uint64
}

func NewRecorder(dev CaptureDevice, encode EncodeFunc) *Recorder {
	return &Recorder{dev: dev, encode: encode, next: 1}
}

func (r *Recorder) Start() (Handle, error) {
	r.mu.Lock()
	if r.active != 0 {
		r.mu.Unlock()
		return 0, errors.New("capture already active")
	}
	h := r.next
	r.next++
	r.active = h
	r.buf = r.buf[:0]
	r.frames = 0
	r.mu.Unlock()

	r.dev.SetCallback(func(data []byte, frameCount uint32) {
		r.mu.Lock()
		if r.active == h {
			r.buf = append(r.buf, data...)
			r.frames += uint64(frameCount)
		}
		r.mu.Unlock()
	})
	if err := r.dev.Start(); err != nil {
		r.dev.ClearCallback()
		r.mu.Lock()
		r.active = 0
		r.mu.Unlock()
		return 0, fmt.Errorf("starting capture: %w", err)
	}
	return h, nil
}

func (r *Recorder) Stop(h Handle) (Blob, error) {
	r.mu.Lock()
	if h == 0 || r.active != h {
		r.mu.Unlock()
		return Blob{}, errors.New("no such capture handle")
	}
	r.mu.Unlock()

	r.dev.Stop()
	r.dev.ClearCallback()

	r.mu.Lock()
	pcm := make([]byte, len(r.buf))
	copy(pcm, r.buf)
	frames := r.frames
	r.active = 0
	r.mu.Unlock()

	data, format, err := r.encode(pcm)
	if err != nil {
		return Blob{}, fmt.Errorf("encoding capture: %w", err)
	}
	return Blob{Data: data, Format: format, Frames: frames}, nil
}

func (r *Recorder) DeviceName() string { return r.dev.DeviceName() }
