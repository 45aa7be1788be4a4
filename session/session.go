// Package session owns the dictation session: the editable text buffer, the
// merge mode, the ephemeral history of displaced buffers, the persisted
// pinned collection, and the recording state machine that feeds them.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"murmur/log"
)

// PinnedKey is the single gateway key holding the pinned collection.
const PinnedKey = "pinnedItems"

const (
	DefaultHistoryCapacity = 4
	DefaultPinnedCapacity  = 10
)

// Store is the slice of the persistence gateway the controller needs.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Config wires a Controller. Capture and Transcribe feed the state machine;
// Store persists pins. OnUpdate fires after any observable change, OnNotice
// carries transient user-facing messages. Both may be nil.
type Config struct {
	HistoryCapacity int
	PinnedCapacity  int
	Store           Store
	Capture         AudioCapture
	Transcribe      TranscribeFunc
	Timeout         time.Duration
	MinFrames       uint64

	OnUpdate func()
	OnNotice func(text string)
	// OnError fires on capture and transcription failures, before the
	// matching notice.
	OnError func(err error)
	// OnTranscript fires with the merged buffer after a successful
	// transcription, for clipboard-style side effects.
	OnTranscript func(buffer string)
}

// Controller is the session orchestrator. One instance exists per running
// application; all mutations go through it.
type Controller struct {
	cfg     Config
	machine *Machine

	mu      sync.Mutex
	buffer  string
	mode    Mode
	history *BoundedDedupList[TranscriptItem]
	pinned  *BoundedDedupList[TranscriptItem]
	closed  bool

	saveCh chan struct{}
	saveWG sync.WaitGroup
}

func New(cfg Config) *Controller {
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = DefaultHistoryCapacity
	}
	if cfg.PinnedCapacity <= 0 {
		cfg.PinnedCapacity = DefaultPinnedCapacity
	}

	c := &Controller{
		cfg:     cfg,
		mode:    ModeReplace,
		history: NewBoundedDedupList[TranscriptItem](cfg.HistoryCapacity),
		pinned:  NewBoundedDedupList[TranscriptItem](cfg.PinnedCapacity),
		saveCh:  make(chan struct{}, 1),
	}
	c.machine = NewMachine(MachineConfig{
		Capture:    cfg.Capture,
		Transcribe: cfg.Transcribe,
		Timeout:    cfg.Timeout,
		MinFrames:  cfg.MinFrames,
		OnState:    func(State) { c.emitUpdate() },
		OnResult:   c.applyTranscript,
		OnError:    c.reportError,
	})

	c.loadPinned()
	if cfg.Store != nil {
		c.saveWG.Add(1)
		go c.saveLoop()
	}
	return c
}

// Close flushes a final pinned snapshot and stops the save loop.
// Mutations after Close keep working in memory; they just no longer
// schedule saves.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed || c.cfg.Store == nil {
		c.closed = true
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	close(c.saveCh)
	c.saveWG.Wait()
	if err := c.cfg.Store.Save(context.Background(), PinnedKey, c.snapshotPinned()); err != nil {
		log.Warnf("final pinned save failed: %v", err)
	}
}

// ToggleRecording delegates to the state machine; a toggle during an
// in-flight transcription is a no-op.
func (c *Controller) ToggleRecording() { c.machine.Toggle() }

func (c *Controller) State() State { return c.machine.State() }

func (c *Controller) Buffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer
}

// SetBuffer replaces the buffer with user-typed text. History and pins are
// untouched.
func (c *Controller) SetBuffer(text string) {
	c.mu.Lock()
	c.buffer = text
	c.mu.Unlock()
	c.emitUpdate()
}

// ClearBuffer empties the buffer only.
func (c *Controller) ClearBuffer() { c.SetBuffer("") }

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) SetMode(m Mode) {
	c.mu.Lock()
	changed := c.mode != m
	c.mode = m
	c.mu.Unlock()
	if changed {
		log.Info("mode_switch: " + m.String())
		c.emitUpdate()
	}
}

func (c *Controller) History() []TranscriptItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Items()
}

func (c *Controller) Pinned() []TranscriptItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pinned.Items()
}

// PinBuffer saves the current buffer into the pinned collection. Empty
// buffers and duplicate texts are silently ignored.
func (c *Controller) PinBuffer() bool {
	c.mu.Lock()
	item, ok := NewItem(c.buffer)
	if !ok {
		c.mu.Unlock()
		return false
	}
	inserted := c.pinned.Insert(item)
	c.mu.Unlock()

	if !inserted {
		c.notice("already saved")
		return false
	}
	c.scheduleSave()
	c.emitUpdate()
	return true
}

// RemovePinned deletes a pinned item and persists the change.
func (c *Controller) RemovePinned(id int64) {
	c.mu.Lock()
	removed := c.pinned.Remove(id)
	c.mu.Unlock()
	if removed {
		c.scheduleSave()
		c.emitUpdate()
	}
}

// SelectHistory merges a history item's text into the buffer under the
// current mode.
func (c *Controller) SelectHistory(id int64) bool {
	c.mu.Lock()
	item, ok := c.history.Get(id)
	c.mu.Unlock()
	if !ok {
		return false
	}
	c.mergeIncoming(item.Text)
	return true
}

// SelectPinned merges a pinned item's text into the buffer under the
// current mode.
func (c *Controller) SelectPinned(id int64) bool {
	c.mu.Lock()
	item, ok := c.pinned.Get(id)
	c.mu.Unlock()
	if !ok {
		return false
	}
	c.mergeIncoming(item.Text)
	return true
}

// applyTranscript handles a successful transcription result.
func (c *Controller) applyTranscript(text string) {
	log.TranscriptionText(text)
	c.mergeIncoming(text)
	if c.cfg.OnTranscript != nil {
		c.cfg.OnTranscript(c.Buffer())
	}
}

func (c *Controller) mergeIncoming(incoming string) {
	c.mu.Lock()
	newBuffer, archived := Merge(c.buffer, incoming, c.mode)
	c.buffer = newBuffer
	if archived != "" {
		if item, ok := NewItem(archived); ok {
			c.history.Insert(item)
		}
	}
	c.mu.Unlock()
	c.emitUpdate()
}

func (c *Controller) reportError(err error) {
	if c.cfg.OnError != nil {
		c.cfg.OnError(err)
	}
	c.notice("Error: " + err.Error())
}

func (c *Controller) notice(text string) {
	if c.cfg.OnNotice != nil {
		c.cfg.OnNotice(text)
	}
}

func (c *Controller) emitUpdate() {
	if c.cfg.OnUpdate != nil {
		c.cfg.OnUpdate()
	}
}

// loadPinned restores the persisted collection. A load failure is a
// warning, never a crash: the session starts empty and in-memory state
// stays authoritative.
func (c *Controller) loadPinned() {
	if c.cfg.Store == nil {
		return
	}
	data, ok, err := c.cfg.Store.Load(context.Background(), PinnedKey)
	if err != nil {
		log.Warnf("loading pinned items: %v", err)
		return
	}
	if !ok {
		return
	}
	var items []TranscriptItem
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warnf("corrupt pinned snapshot, starting empty: %v", err)
		return
	}
	c.mu.Lock()
	c.pinned.Restore(items)
	c.mu.Unlock()
}

// scheduleSave coalesces rapid mutations into the pending save slot. The
// loop snapshots at save time, so the last save always serializes the
// current collection, never a stale capture. The send happens under c.mu
// so it cannot race a Close of the channel.
func (c *Controller) scheduleSave() {
	if c.cfg.Store == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.saveCh <- struct{}{}:
	default:
	}
}

func (c *Controller) saveLoop() {
	defer c.saveWG.Done()
	for range c.saveCh {
		if err := c.cfg.Store.Save(context.Background(), PinnedKey, c.snapshotPinned()); err != nil {
			log.Warnf("saving pinned items: %v", err)
		}
	}
}

func (c *Controller) snapshotPinned() []byte {
	c.mu.Lock()
	items := c.pinned.Items()
	c.mu.Unlock()
	data, err := json.Marshal(items)
	if err != nil {
		// []TranscriptItem always marshals; keep the loop alive anyway.
		log.Warnf("marshaling pinned items: %v", err)
		return []byte("[]")
	}
	return data
}
