package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"murmur/audio"
	"murmur/log"
)

// State is the recording lifecycle state. The only legal cycle is
// Idle -> Recording -> Transcribing -> Idle.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
)

func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	default:
		return "idle"
	}
}

// AudioCapture is the capture capability the machine drives. The handle is
// exclusively owned by the machine between Start and Stop.
type AudioCapture interface {
	Start() (audio.Handle, error)
	Stop(audio.Handle) (audio.Blob, error)
}

// TranscribeFunc converts one blob to text; the controller injects the
// router here.
type TranscribeFunc func(ctx context.Context, blob audio.Blob) (string, error)

// MachineConfig wires the machine's collaborators and callbacks. Callbacks
// are invoked from the machine's goroutines and must not call back into
// Toggle.
type MachineConfig struct {
	Capture    AudioCapture
	Transcribe TranscribeFunc
	// Timeout bounds one transcription call; it is the only thing keeping
	// the machine out of an unbounded transcribing state.
	Timeout time.Duration
	// MinFrames discards recordings too short to contain speech.
	MinFrames uint64

	OnState  func(State)
	OnResult func(text string)
	OnError  func(err error)
}

// Machine owns the recording state and drives capture and transcription.
// Toggle while transcribing is a no-op, so at most one transcription is in
// flight at a time.
type Machine struct {
	cfg MachineConfig

	mu     sync.Mutex
	state  State
	handle audio.Handle
}

func NewMachine(cfg MachineConfig) *Machine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Machine{cfg: cfg}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Toggle starts a recording from idle, finishes one while recording, and
// does nothing while a transcription is still in flight.
func (m *Machine) Toggle() {
	m.mu.Lock()
	switch m.state {
	case StateTranscribing:
		m.mu.Unlock()
		return

	case StateIdle:
		handle, err := m.cfg.Capture.Start()
		if err != nil {
			m.mu.Unlock()
			m.emitError(fmt.Errorf("capture: %w", err))
			return
		}
		m.handle = handle
		m.state = StateRecording
		m.mu.Unlock()
		log.Info("recording_start")
		m.emitState(StateRecording)

	case StateRecording:
		// Flip to transcribing before the blocking stop so the UI shows
		// busy immediately and re-entrant toggles bounce off the guard.
		m.state = StateTranscribing
		handle := m.handle
		m.handle = 0
		m.mu.Unlock()
		m.emitState(StateTranscribing)

		blob, err := m.cfg.Capture.Stop(handle)
		if err != nil {
			m.finish("", fmt.Errorf("capture: %w", err))
			return
		}
		if blob.Frames < m.cfg.MinFrames {
			log.Info("recording_too_short")
			m.finish("", nil)
			return
		}
		go m.transcribe(blob)
	}
}

func (m *Machine) transcribe(blob audio.Blob) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Timeout)
	defer cancel()
	text, err := m.cfg.Transcribe(ctx, blob)
	m.finish(text, err)
}

// finish always lands in idle, success or failure.
func (m *Machine) finish(text string, err error) {
	m.mu.Lock()
	m.state = StateIdle
	m.mu.Unlock()
	m.emitState(StateIdle)

	if err != nil {
		m.emitError(err)
		return
	}
	if text != "" && m.cfg.OnResult != nil {
		m.cfg.OnResult(text)
	}
}

func (m *Machine) emitState(s State) {
	if m.cfg.OnState != nil {
		m.cfg.OnState(s)
	}
}

func (m *Machine) emitError(err error) {
	log.Errorf("recording error: %v", err)
	if m.cfg.OnError != nil {
		m.cfg.OnError(err)
	}
}
