package encoder

import "fmt"

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// New returns an EncodeFunc for the given format name ("flac" or "wav").
// The returned function takes raw little-endian PCM16 mono samples and
// produces the encoded payload plus the format label for the backend.
func New(format string) (func(pcm []byte) ([]byte, string, error), error) {
	switch format {
	case "flac":
		return func(pcm []byte) ([]byte, string, error) {
			data, err := EncodeFlac(pcm)
			return data, "flac", err
		}, nil
	case "wav":
		return func(pcm []byte) ([]byte, string, error) {
			return EncodeWAV(pcm), "wav", nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown audio format %q (use flac or wav)", format)
	}
}
