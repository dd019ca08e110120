package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/speech-coach/backend/internal/analyze"
	"github.com/speech-coach/backend/internal/storage"
)

// Analyzer runs the model pipeline over a stored waveform.
type Analyzer interface {
	Analyze(ctx context.Context, wavPath string, keywords []string) (*analyze.Result, error)
}

type AnalyzeHandler struct {
	store    *storage.Store
	analyzer Analyzer
}

func NewAnalyzeHandler(store *storage.Store, analyzer Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{store: store, analyzer: analyzer}
}

type analyzeRequest struct {
	WavFilename string   `json:"wav_filename"`
	Keywords    []string `json:"keywords"`
}

// Analyze resolves the target wav (explicit name, or the most recent one when
// omitted) and returns the model's parsed ScoreReport. An output that stayed
// unparseable after the retry comes back as a 200 with status "error": the
// remote call itself succeeded.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	name := req.WavFilename
	if name == "" {
		latest, err := h.store.LatestWAV()
		if err != nil {
			jsonError(w, "no wav files available", http.StatusNotFound)
			return
		}
		name = latest
	}

	wavPath, err := h.store.Resolve(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			jsonError(w, "wav file not found", http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), wavPath, req.Keywords)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if result.Unparsed() {
		jsonResponse(w, map[string]interface{}{
			"status":  "error",
			"message": "Model did not return valid JSON",
			"raw":     result.Raw,
		}, http.StatusOK)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"status":   "ok",
		"result":   result.Parsed,
		"raw_text": result.Raw,
	}, http.StatusOK)
}
