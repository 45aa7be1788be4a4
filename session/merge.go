package session

import "strings"

// Mode governs how incoming text combines with the session buffer.
type Mode int

const (
	// ModeReplace overwrites the buffer, archiving the displaced text.
	ModeReplace Mode = iota
	// ModeAppend joins incoming text onto the buffer with a space.
	ModeAppend
)

func (m Mode) String() string {
	switch m {
	case ModeAppend:
		return "append"
	default:
		return "replace"
	}
}

// Merge combines the current buffer with incoming text. In replace mode the
// displaced buffer comes back as archived so the caller can file it into
// history; append mode never discards anything, so archived is always empty.
// The same function governs transcription arrivals and history/pinned
// injections.
func Merge(buffer, incoming string, mode Mode) (newBuffer, archived string) {
	if mode == ModeAppend {
		if buffer == "" {
			return incoming, ""
		}
		return buffer + " " + incoming, ""
	}
	if trimmed := strings.TrimSpace(buffer); trimmed != "" {
		archived = trimmed
	}
	return incoming, archived
}
