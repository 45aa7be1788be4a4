// Package beep plays short audible cues marking recording transitions:
// a high tick when recording starts, a lower one when it stops, and a
// double tick on failure. Playback problems are swallowed; a session
// without sound still works.
package beep

import "math"

var muted bool

// Mute suppresses all cues for the rest of the process.
func Mute() { muted = true }

const sampleRate = 44100

// A cue is a sine tick shaped by an exponential decay envelope. Double
// cues play the tick twice with a short gap.
type cue struct {
	freq   float64 // Hz
	dur    float64 // seconds per tick
	volume float64
	decay  float64
	double bool
}

const doubleGap = 0.05 // seconds between the ticks of a double cue

var (
	cueStart = cue{freq: 1200, dur: 0.2, volume: 0.5, decay: 60}
	cueStop  = cue{freq: 900, dur: 0.2, volume: 0.5, decay: 40}
	cueFail  = cue{freq: 350, dur: 0.08, volume: 0.6, decay: 30, double: true}
)

// synth renders a cue as mono 16-bit PCM at sampleRate.
func synth(c cue) []int16 {
	tick := make([]int16, int(float64(sampleRate)*c.dur))
	for i := range tick {
		t := float64(i) / sampleRate
		env := math.Exp(-t * c.decay)
		tick[i] = int16(math.Sin(2*math.Pi*c.freq*t) * 32767 * c.volume * env)
	}
	if !c.double {
		return tick
	}
	gap := int(float64(sampleRate) * doubleGap)
	out := make([]int16, 0, 2*len(tick)+gap)
	out = append(out, tick...)
	out = append(out, make([]int16, gap)...)
	out = append(out, tick...)
	return out
}
