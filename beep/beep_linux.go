//go:build linux

package beep

import (
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

var (
	startPCM []int16
	stopPCM  []int16
	failPCM  []int16
	synOnce  sync.Once
)

func render() {
	startPCM = stereo(synth(cueStart))
	stopPCM = stereo(synth(cueStop))
	failPCM = stereo(synth(cueFail))
}

func stereo(mono []int16) []int16 {
	out := make([]int16, len(mono)*2)
	for i, s := range mono {
		out[i*2] = s
		out[i*2+1] = s
	}
	return out
}

// play opens a short-lived pulse stream per cue. Cues are rare and brief
// so a persistent connection is not worth keeping.
func play(pcm []int16) {
	if len(pcm) == 0 {
		return
	}
	c, err := pulse.NewClient()
	if err != nil {
		return
	}
	defer c.Close()

	pos := 0
	src := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(pcm) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, pcm[pos:])
		pos += n
		return n, nil
	})
	stream, err := c.NewPlayback(src,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		return
	}
	stream.Start()
	stream.Drain()
	stream.Stop()
	stream.Close()
}

func Init() { synOnce.Do(render) }

func PlayStart() {
	if muted {
		return
	}
	synOnce.Do(render)
	go play(startPCM)
}

func PlayEnd() {
	if muted {
		return
	}
	synOnce.Do(render)
	go play(stopPCM)
}

func PlayError() {
	if muted {
		return
	}
	synOnce.Do(render)
	go play(failPCM)
}
