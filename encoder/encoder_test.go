package encoder

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/mewkiz/flac"
)

func sinePCM(samples int) []byte {
	pcm := make([]byte, samples*2)
	for i := range samples {
		v := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return pcm
}

func TestEncodeFlac(t *testing.T) {
	// Partial trailing block on purpose.
	pcm := sinePCM(BlockSize + BlockSize/2)

	data, err := EncodeFlac(pcm)
	if err != nil {
		t.Fatalf("EncodeFlac: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("fLaC")) {
		t.Errorf("missing fLaC magic, got %q", data[:4])
	}

	stream, err := flac.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parsing encoded stream: %v", err)
	}
	if got := stream.Info.SampleRate; got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
}

func TestEncodeWAV(t *testing.T) {
	pcm := sinePCM(1000)
	data := EncodeWAV(pcm)

	if len(data) != wavHeaderSize+len(pcm) {
		t.Fatalf("length = %d, want %d", len(data), wavHeaderSize+len(pcm))
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Error("bad RIFF/WAVE header")
	}
	if got := binary.LittleEndian.Uint32(data[24:]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint32(data[40:]); got != uint32(len(pcm)) {
		t.Errorf("data chunk size = %d, want %d", got, len(pcm))
	}
	if !bytes.Equal(data[wavHeaderSize:], pcm) {
		t.Error("payload does not round-trip")
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"flac", "wav"} {
		t.Run(format, func(t *testing.T) {
			encode, err := New(format)
			if err != nil {
				t.Fatalf("New(%q): %v", format, err)
			}
			data, label, err := encode(sinePCM(256))
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if label != format {
				t.Errorf("label = %q, want %q", label, format)
			}
			if len(data) == 0 {
				t.Error("empty payload")
			}
		})
	}
	if _, err := New("mp3"); err == nil {
		t.Error("expected error for unknown format")
	}
}
