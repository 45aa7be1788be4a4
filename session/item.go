package session

import (
	"strings"
	"sync"
	"time"
)

// TranscriptItem is one saved piece of transcribed text. Identity is ID;
// de-duplication is by exact Text.
type TranscriptItem struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t TranscriptItem) Key() string  { return t.Text }
func (t TranscriptItem) Ident() int64 { return t.ID }

var (
	idMu   sync.Mutex
	lastID int64
)

// nextID returns a nanosecond timestamp, bumped when the clock has not
// advanced so IDs stay strictly increasing within a process.
func nextID() int64 {
	idMu.Lock()
	defer idMu.Unlock()
	id := time.Now().UnixNano()
	if id <= lastID {
		id = lastID + 1
	}
	lastID = id
	return id
}

// NewItem trims text and stamps it with a monotonic ID. Returns false for
// whitespace-only input.
func NewItem(text string) (TranscriptItem, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TranscriptItem{}, false
	}
	return TranscriptItem{ID: nextID(), Text: text, CreatedAt: time.Now()}, true
}
