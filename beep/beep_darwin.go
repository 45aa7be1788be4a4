//go:build darwin

package beep

import (
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

var (
	audioCtx *malgo.AllocatedContext
	device   *malgo.Device
	startPCM []byte
	stopPCM  []byte
	failPCM  []byte
	synOnce  sync.Once

	// Playback position, consumed by the device callback.
	pending    atomic.Pointer[[]byte]
	pendingPos atomic.Uint32
	deviceMu   sync.Mutex
)

func openDevice() error {
	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	var err error
	device, err = malgo.InitDevice(audioCtx.Context, config, malgo.DeviceCallbacks{
		Data: feed,
	})
	return err
}

func render() {
	var err error
	audioCtx, err = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}

	// CoreAudio rings on longer ticks; keep them short here.
	start, stop := cueStart, cueStop
	start.dur, stop.dur = 0.03, 0.05
	startPCM = pcmBytes(synth(start))
	stopPCM = pcmBytes(synth(stop))
	failPCM = pcmBytes(synth(cueFail))

	if err := openDevice(); err != nil {
		audioCtx.Uninit()
		audioCtx = nil
	}
}

func pcmBytes(mono []int16) []byte {
	buf := make([]byte, len(mono)*2)
	for i, s := range mono {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}

// feed streams the pending cue into the device buffer, then silence.
func feed(pOutput, _ []byte, frameCount uint32) {
	pcm := pending.Load()
	if pcm == nil || len(*pcm) == 0 {
		for i := range pOutput {
			pOutput[i] = 0
		}
		return
	}

	pos := pendingPos.Load()
	total := uint32(len(*pcm))
	want := frameCount * 2
	left := total - pos

	if left == 0 {
		pending.Store(nil)
		for i := range pOutput {
			pOutput[i] = 0
		}
		return
	}
	if want > left {
		want = left
	}

	copy(pOutput[:want], (*pcm)[pos:pos+want])
	pendingPos.Store(pos + want)

	for i := want; i < frameCount*2; i++ {
		pOutput[i] = 0
	}
}

func play(pcm []byte) {
	if audioCtx == nil || len(pcm) == 0 {
		return
	}

	deviceMu.Lock()
	defer deviceMu.Unlock()

	if device == nil {
		return
	}

	device.Stop()
	pendingPos.Store(0)
	pending.Store(&pcm)

	if err := device.Start(); err != nil {
		// Recreate the device; it goes stale across sleep/wake.
		device.Uninit()
		if err := openDevice(); err != nil {
			pending.Store(nil)
			return
		}
		if err := device.Start(); err != nil {
			pending.Store(nil)
		}
	}
}

func Init() { synOnce.Do(render) }

func PlayStart() {
	if muted {
		return
	}
	synOnce.Do(render)
	play(startPCM)
}

func PlayEnd() {
	if muted {
		return
	}
	synOnce.Do(render)
	play(stopPCM)
}

func PlayError() {
	if muted {
		return
	}
	synOnce.Do(render)
	play(failPCM)
}
