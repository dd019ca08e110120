package analyze

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/speech-coach/backend/internal/metrics"
)

// Result carries a finished analysis. Parsed is nil when the model output
// stayed unparseable after the retry; Raw always holds the text the result
// (or the failure) came from, kept for auditability.
type Result struct {
	Parsed map[string]interface{}
	Raw    string
}

func (r *Result) Unparsed() bool {
	return r.Parsed == nil
}

// Service manages analysis engines and runs the upload/generate/parse
// pipeline against the configured one.
type Service struct {
	engines map[string]Provider
	engine  string
	metrics *metrics.Metrics
}

// NewService creates an analysis service that will dispatch to the named
// engine. Engines are attached with Register.
func NewService(engine string, m *metrics.Metrics) *Service {
	return &Service{
		engines: make(map[string]Provider),
		engine:  engine,
		metrics: m,
	}
}

// Register adds an engine
func (s *Service) Register(p Provider) {
	s.engines[p.Name()] = p
	log.Printf("[analyze] registered %s engine", p.Name())
}

// Analyze sends the waveform to the model with the strict-schema prompt and
// enforces the JSON contract on the reply: extract, parse, retry exactly once
// with a stricter instruction, then normalize numeric score fields. An
// unparseable-after-retry reply is returned as an unparsed Result, not an
// error: the remote call itself succeeded.
func (s *Service) Analyze(ctx context.Context, wavPath string, keywords []string) (*Result, error) {
	engine, ok := s.engines[s.engine]
	if !ok {
		return nil, fmt.Errorf("no %q analysis engine registered", s.engine)
	}

	if s.metrics != nil {
		s.metrics.AnalyzeRequests.Inc()
		start := time.Now()
		defer func() {
			s.metrics.AnalyzeDuration.Observe(time.Since(start).Seconds())
		}()
	}

	ref, err := engine.Upload(ctx, wavPath)
	if err != nil {
		if s.metrics != nil {
			s.metrics.AnalyzeFailures.Inc()
		}
		return nil, fmt.Errorf("model file upload failed: %w", err)
	}

	prompt := BuildPrompt(keywords)

	raw, err := engine.Generate(ctx, ref, prompt)
	if err != nil {
		if s.metrics != nil {
			s.metrics.AnalyzeFailures.Inc()
		}
		return nil, fmt.Errorf("model generation failed: %w", err)
	}

	parsed, ok := ExtractJSON(raw)
	if !ok {
		// Single retry with the strict instruction prepended, reusing the
		// uploaded audio. The retry text replaces raw only if it parses.
		log.Printf("[analyze] %s returned unparseable output, retrying with strict instruction", engine.Name())
		if s.metrics != nil {
			s.metrics.AnalyzeRetries.Inc()
		}
		retryRaw, err := engine.Generate(ctx, ref, strictJSONInstruction, prompt)
		if err != nil {
			if s.metrics != nil {
				s.metrics.AnalyzeFailures.Inc()
			}
			return nil, fmt.Errorf("model retry failed: %w", err)
		}
		if retryParsed, retryOK := ExtractJSON(retryRaw); retryOK {
			parsed, ok = retryParsed, true
			raw = retryRaw
		}
	}

	if !ok {
		log.Printf("[analyze] %s output unparseable after retry", engine.Name())
		if s.metrics != nil {
			s.metrics.AnalyzeUnparsed.Inc()
		}
		return &Result{Raw: raw}, nil
	}

	NormalizeScores(parsed)
	return &Result{Parsed: parsed, Raw: raw}, nil
}
