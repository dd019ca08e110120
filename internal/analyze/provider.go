package analyze

import "context"

// FileRef is a provider-scoped handle to audio that has been made available
// to the model. Gemini fills URI/MIMEType from its Files API; the OpenAI
// engine carries the Whisper transcript instead, since chat models take text.
type FileRef struct {
	URI        string
	MIMEType   string
	Transcript string
}

// Provider is the narrow contract an analysis engine must implement: make the
// waveform available once, then generate against it any number of times. The
// split exists so the JSON-parse retry can reuse the uploaded audio.
type Provider interface {
	Upload(ctx context.Context, wavPath string) (FileRef, error)
	Generate(ctx context.Context, ref FileRef, parts ...string) (string, error)
	// Name returns the engine name
	Name() string
}
