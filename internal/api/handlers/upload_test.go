package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/speech-coach/backend/internal/ffmpeg"
	"github.com/speech-coach/backend/internal/storage"
)

// fakeConverter stands in for ffmpeg: it "converts" by writing a marker file,
// or fails when told to.
type fakeConverter struct {
	fail bool
}

func (f *fakeConverter) ConvertToWAV(ctx context.Context, inputPath, outputPath string) error {
	if f.fail {
		return errors.New("ffmpeg exited with status 1")
	}
	return os.WriteFile(outputPath, []byte("RIFFfake"), 0644)
}

func (f *fakeConverter) Probe(path string) (*ffmpeg.AudioInfo, error) {
	return nil, errors.New("probe unavailable")
}

func newUploadTestHandler(t *testing.T, conv Converter) (*UploadHandler, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	alloc := storage.NewAllocator(filepath.Join(store.Dir(), ".counter"), nil)
	h := NewUploadHandler(store, alloc, conv, 10<<20, nil)
	h.duration = func(path string) (float64, bool) { return 2.0004, true }
	return h, store
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest("POST", "/api/upload-audio", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadSuccess(t *testing.T) {
	h, store := newUploadTestHandler(t, &fakeConverter{})

	rec := httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "voice.m4a", []byte("raw m4a bytes")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v", resp["status"])
	}
	if resp["wav_filename"] != "1.wav" {
		t.Errorf("wav_filename = %v, want 1.wav", resp["wav_filename"])
	}
	if resp["duration_seconds"] != 2.0 {
		t.Errorf("duration_seconds = %v, want 2 (rounded to 3 decimals)", resp["duration_seconds"])
	}

	// Only the normalized wav remains.
	if _, err := store.Resolve("1.wav"); err != nil {
		t.Error("normalized wav missing from store")
	}
	if _, err := store.Resolve("1.m4a"); !errors.Is(err, os.ErrNotExist) {
		t.Error("original upload should have been deleted")
	}
}

func TestUploadMissingFile(t *testing.T) {
	h, _ := newUploadTestHandler(t, &fakeConverter{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("note", "no file here")
	writer.Close()
	req := httptest.NewRequest("POST", "/api/upload-audio", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestUploadConversionFailureCleansUp(t *testing.T) {
	h, store := newUploadTestHandler(t, &fakeConverter{fail: true})

	rec := httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "voice.m4a", []byte("bytes")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
	if _, err := store.Resolve("1.m4a"); !errors.Is(err, os.ErrNotExist) {
		t.Error("original upload should be removed after a failed conversion")
	}
	if _, err := store.Resolve("1.wav"); !errors.Is(err, os.ErrNotExist) {
		t.Error("partial output should be removed after a failed conversion")
	}
}

func TestUploadNullDurationDegradesGracefully(t *testing.T) {
	h, _ := newUploadTestHandler(t, &fakeConverter{})
	h.duration = func(path string) (float64, bool) { return 0, false }

	rec := httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "voice.mp3", []byte("bytes")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200 despite unknown duration", rec.Code)
	}
	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if v, present := resp["duration_seconds"]; !present || v != nil {
		t.Errorf("duration_seconds = %v, want explicit null", v)
	}
}

func TestUploadSequentialNamesAcrossRequests(t *testing.T) {
	h, store := newUploadTestHandler(t, &fakeConverter{})

	for i, want := range []string{"1.wav", "2.wav"} {
		rec := httptest.NewRecorder()
		h.Upload(rec, multipartUpload(t, "same.m4a", []byte("identical bytes")))
		if rec.Code != http.StatusOK {
			t.Fatalf("upload %d: status %d", i, rec.Code)
		}
		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["wav_filename"] != want {
			t.Errorf("upload %d: wav_filename = %v, want %s", i, resp["wav_filename"], want)
		}
	}

	names, _ := store.ListWAVs()
	if len(names) != 2 {
		t.Errorf("store holds %v, want two distinct wavs", names)
	}
}
