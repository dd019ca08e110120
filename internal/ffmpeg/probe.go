package ffmpeg

import (
	"encoding/json"
	"os/exec"
)

type ProbeResult struct {
	Format  ProbeFormat   `json:"format"`
	Streams []ProbeStream `json:"streams"`
}

type ProbeFormat struct {
	Filename string `json:"filename"`
	Duration string `json:"duration"`
	Size     string `json:"size"`
	BitRate  string `json:"bit_rate"`
}

type ProbeStream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`
	CodecType     string `json:"codec_type"` // audio, video
	SampleRate    string `json:"sample_rate,omitempty"`
	Channels      int    `json:"channels,omitempty"`
	ChannelLayout string `json:"channel_layout,omitempty"`
	BitRate       string `json:"bit_rate,omitempty"`
}

type AudioInfo struct {
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	Codec      string `json:"codec"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Probe inspects an input file with ffprobe. Used for logging what callers
// actually upload; failures are left to the caller to ignore.
func (t *Tool) Probe(filePath string) (*AudioInfo, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, err
	}

	info := &AudioInfo{
		Duration: result.Format.Duration,
		Size:     result.Format.Size,
	}
	for _, s := range result.Streams {
		if s.CodecType == "audio" && info.Codec == "" {
			info.Codec = s.CodecName
			info.SampleRate = s.SampleRate
			info.Channels = s.Channels
		}
	}
	return info, nil
}
