package handlers

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/speech-coach/backend/internal/audio"
	"github.com/speech-coach/backend/internal/ffmpeg"
	"github.com/speech-coach/backend/internal/metrics"
	"github.com/speech-coach/backend/internal/storage"
)

// Converter is the narrow contract to the external audio tool: normalize a
// clip to mono/16kHz WAV and inspect what was actually uploaded.
type Converter interface {
	ConvertToWAV(ctx context.Context, inputPath, outputPath string) error
	Probe(path string) (*ffmpeg.AudioInfo, error)
}

type UploadHandler struct {
	store    *storage.Store
	alloc    *storage.Allocator
	convert  Converter
	duration func(path string) (float64, bool)
	maxBytes int64
	metrics  *metrics.Metrics
}

func NewUploadHandler(store *storage.Store, alloc *storage.Allocator, convert Converter, maxBytes int64, m *metrics.Metrics) *UploadHandler {
	return &UploadHandler{
		store:    store,
		alloc:    alloc,
		convert:  convert,
		duration: audio.Duration,
		maxBytes: maxBytes,
		metrics:  m,
	}
}

// Upload accepts a multipart upload under the "file" field, stores it under a
// sequential name, converts it to mono/16kHz WAV and deletes the original.
// On success exactly the normalized .wav remains in the store.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if strings.TrimSpace(header.Filename) == "" {
		jsonError(w, "no file uploaded", http.StatusBadRequest)
		return
	}

	start := time.Now()

	inName := h.alloc.Allocate(header.Filename)
	inPath, err := h.store.SaveUpload(inName, file)
	if err != nil {
		if h.metrics != nil {
			h.metrics.UploadFailures.Inc()
		}
		jsonError(w, fmt.Sprintf("failed to save uploaded file: %v", err), http.StatusInternalServerError)
		return
	}

	if info, err := h.convert.Probe(inPath); err == nil {
		log.Printf("[upload] received %s as %s: codec=%s sample_rate=%s channels=%d duration=%s",
			header.Filename, inName, info.Codec, info.SampleRate, info.Channels, info.Duration)
	}

	outName := strings.TrimSuffix(inName, filepath.Ext(inName)) + ".wav"
	outPath, err := h.store.Path(outName)
	if err != nil {
		h.store.Remove(inName)
		jsonError(w, fmt.Sprintf("invalid output name: %v", err), http.StatusInternalServerError)
		return
	}

	if err := h.convert.ConvertToWAV(r.Context(), inPath, outPath); err != nil {
		// Neither the original nor a partial output is worth keeping.
		h.store.Remove(inName)
		h.store.Remove(outName)
		if h.metrics != nil {
			h.metrics.ConversionFailures.Inc()
		}
		jsonError(w, fmt.Sprintf("conversion failed: %v", err), http.StatusInternalServerError)
		return
	}

	// Duration is best effort; an unreadable wav degrades to null.
	var durationSeconds interface{}
	if secs, ok := h.duration(outPath); ok {
		durationSeconds = math.Round(secs*1000) / 1000
	}

	// Remove the original so only the normalized wav is retained. A failed
	// delete is not worth failing a finished conversion over.
	h.store.Remove(inName)

	if h.metrics != nil {
		h.metrics.UploadsTotal.Inc()
		h.metrics.UploadDuration.Observe(time.Since(start).Seconds())
	}

	jsonResponse(w, map[string]interface{}{
		"status":           "ok",
		"wav_filename":     outName,
		"wav_path":         outPath,
		"duration_seconds": durationSeconds,
		"message":          "File converted to WAV (mono, 16k). Proceed with transcription/analysis.",
	}, http.StatusOK)
}
