package beep

import "testing"

func TestSynthLength(t *testing.T) {
	c := cue{freq: 440, dur: 0.1, volume: 0.5, decay: 40}
	pcm := synth(c)
	if want := int(float64(sampleRate) * c.dur); len(pcm) != want {
		t.Errorf("len = %d, want %d", len(pcm), want)
	}
}

func TestSynthDoubleCue(t *testing.T) {
	single := synth(cue{freq: 350, dur: 0.08, volume: 0.6, decay: 30})
	double := synth(cueFail)
	want := 2*len(single) + int(float64(sampleRate)*doubleGap)
	if len(double) != want {
		t.Errorf("double cue len = %d, want %d", len(double), want)
	}

	// The gap between ticks is silent.
	gapStart := len(single)
	for i := gapStart; i < gapStart+int(float64(sampleRate)*doubleGap); i++ {
		if double[i] != 0 {
			t.Fatalf("sample %d in gap = %d, want 0", i, double[i])
		}
	}
}

func TestSynthDecays(t *testing.T) {
	pcm := synth(cueStart)
	peak := func(s []int16) int16 {
		var p int16
		for _, v := range s {
			if v > p {
				p = v
			}
			if -v > p {
				p = -v
			}
		}
		return p
	}
	head := peak(pcm[:len(pcm)/4])
	tail := peak(pcm[3*len(pcm)/4:])
	if tail >= head {
		t.Errorf("envelope did not decay: head peak %d, tail peak %d", head, tail)
	}
}
