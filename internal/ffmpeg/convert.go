package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Tool wraps the external ffmpeg/ffprobe binaries. The service treats them as
// an opaque converter: input file in, mono 16kHz PCM WAV out.
type Tool struct{}

func New() *Tool {
	return &Tool{}
}

// ConvertToWAV transcodes any input audio into a single-channel 16kHz WAV at
// outputPath, overwriting an existing file and dropping any video track.
// A non-zero ffmpeg exit is an error; the caller must not trust whatever
// partial output may exist afterwards.
func (t *Tool) ConvertToWAV(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-y", // overwrite
		"-i", inputPath,
		"-ac", "1", // mono
		"-ar", "16000", // 16 kHz
		"-vn", // drop video if present
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return fmt.Errorf("ffmpeg conversion failed: %s: %w", detail, err)
		}
		return fmt.Errorf("ffmpeg conversion failed: %w", err)
	}
	return nil
}
