// Package gesture turns horizontal drag and wheel deltas into merge-mode
// switches.
//
// Direction contract: a rightward gesture selects replace mode, a leftward
// gesture selects append mode, on every input surface. Change RightwardMode
// and LeftwardMode together to flip it.
package gesture

import "murmur/session"

// Threshold is the minimum horizontal travel, in pixels/cells, for a
// gesture to register. Shorter drags are treated as clicks and ignored.
const Threshold = 50

var (
	RightwardMode = session.ModeReplace
	LeftwardMode  = session.ModeAppend
)

// Interpreter tracks one pointer drag at a time.
type Interpreter struct {
	threshold float64
	startX    float64
	tracking  bool
}

func New() *Interpreter {
	return &Interpreter{threshold: Threshold}
}

// NewWithThreshold exists for tests and calibration.
func NewWithThreshold(threshold float64) *Interpreter {
	return &Interpreter{threshold: threshold}
}

func (i *Interpreter) DragStart(x float64) {
	i.startX = x
	i.tracking = true
}

// DragEnd resolves the drag. The second return is false when no drag was in
// progress or the travel stayed under the threshold.
func (i *Interpreter) DragEnd(x float64) (session.Mode, bool) {
	if !i.tracking {
		return 0, false
	}
	i.tracking = false
	return i.resolve(x - i.startX)
}

// Wheel treats one wheel/trackpad event like a completed drag, provided the
// movement is predominantly horizontal and past the threshold.
func (i *Interpreter) Wheel(dx, dy float64) (session.Mode, bool) {
	if abs(dx) <= abs(dy) {
		return 0, false
	}
	return i.resolve(dx)
}

func (i *Interpreter) resolve(delta float64) (session.Mode, bool) {
	if abs(delta) < i.threshold {
		return 0, false
	}
	if delta > 0 {
		return RightwardMode, true
	}
	return LeftwardMode, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
