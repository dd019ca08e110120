// Package audio reads metadata from normalized PCM WAV files.
package audio

import (
	"os"

	"github.com/go-audio/wav"
)

// Duration returns the length in seconds of a PCM WAV file, computed as
// frames over sample rate. The boolean is false when the duration cannot be
// determined (unreadable file, non-WAV data, zero sample rate); callers treat
// that as "duration unknown", never as a hard failure.
func Duration(path string) (float64, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() || dec.SampleRate == 0 {
		return 0, false
	}

	dur, err := dec.Duration()
	if err != nil {
		return 0, false
	}
	return dur.Seconds(), true
}
