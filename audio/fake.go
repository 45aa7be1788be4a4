package audio

import "sync"

// FakeDevice is an in-memory CaptureDevice for tests. Start feeds the
// configured PCM to the callback synchronously; Stop is a no-op.
type FakeDevice struct {
	PCM       []byte
	ChunkSize int
	StartErr  error
	Name      string

	mu sync.Mutex
	cb DataCallback
}

func (f *FakeDevice) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeDevice) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeDevice) Start() error {
	if f.StartErr != nil {
		return f.StartErr
	}
	f.mu.Lock()
	cb := f.cb
	f.mu.Unlock()
	if cb == nil {
		return nil
	}
	chunk := f.ChunkSize
	if chunk <= 0 {
		chunk = 2048
	}
	for pos := 0; pos < len(f.PCM); pos += chunk {
		end := min(pos+chunk, len(f.PCM))
		cb(f.PCM[pos:end], uint32((end-pos)/2))
	}
	return nil
}

func (f *FakeDevice) Stop()  {}
func (f *FakeDevice) Close() {}

func (f *FakeDevice) DeviceName() string {
	if f.Name != "" {
		return f.Name
	}
	return "fake"
}
