package storage

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/speech-coach/backend/internal/metrics"
)

// Allocator issues sequential upload filenames (1.m4a, 2.mp3, ...) and
// persists the last issued number so numbering survives restarts.
//
// Safe for concurrent use within a single process. NOT safe across multiple
// processes sharing the same counter file; that would need a database or an
// atomic file-based increment.
type Allocator struct {
	counterPath string
	metrics     *metrics.Metrics

	mu      sync.Mutex
	counter int
	loaded  bool
}

func NewAllocator(counterPath string, m *metrics.Metrics) *Allocator {
	return &Allocator{counterPath: counterPath, metrics: m}
}

// Allocate returns the next sequential filename, keeping the extension of the
// original name. Files without an extension get ".bin".
func (a *Allocator) Allocate(originalName string) string {
	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".bin"
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loaded {
		a.counter = a.loadCounter()
		a.loaded = true
	}

	a.counter++
	a.saveCounter(a.counter)
	return strconv.Itoa(a.counter) + ext
}

// loadCounter reads the persisted counter value. A missing, empty or corrupt
// file counts as zero; numbering must never fail the request path.
func (a *Allocator) loadCounter() int {
	data, err := os.ReadFile(a.counterPath)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// saveCounter persists the last issued number. Failures are logged and
// counted but never surfaced: the in-memory counter has already advanced and
// losing durability is preferable to failing the upload.
func (a *Allocator) saveCounter(value int) {
	if err := os.WriteFile(a.counterPath, []byte(strconv.Itoa(value)), 0644); err != nil {
		log.Printf("[storage] WARNING: failed to persist counter to %s: %v", a.counterPath, err)
		if a.metrics != nil {
			a.metrics.CounterPersistFailures.Inc()
		}
	}
}
