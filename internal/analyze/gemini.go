package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

const (
	geminiAPIBase   = "https://generativelanguage.googleapis.com/v1beta/models"
	geminiUploadURL = "https://generativelanguage.googleapis.com/upload/v1beta/files"
)

// GeminiProvider analyzes audio with the Google Gemini API: the waveform is
// pushed through the Files API once, then referenced by URI in generate calls.
type GeminiProvider struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiProvider{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

func (g *GeminiProvider) Upload(ctx context.Context, wavPath string) (FileRef, error) {
	if g.apiKey == "" {
		return FileRef{}, fmt.Errorf("Gemini API key not configured")
	}

	f, err := os.Open(wavPath)
	if err != nil {
		return FileRef{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return FileRef{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", geminiUploadURL, f)
	if err != nil {
		return FileRef{}, err
	}
	httpReq.ContentLength = info.Size()
	httpReq.Header.Set("Content-Type", "audio/wav")
	httpReq.Header.Set("X-Goog-Upload-Protocol", "raw")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return FileRef{}, fmt.Errorf("Gemini file upload: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FileRef{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return FileRef{}, fmt.Errorf("Gemini file upload error (status %d): %s", resp.StatusCode, string(body))
	}

	var uploadResp struct {
		File struct {
			Name     string `json:"name"`
			URI      string `json:"uri"`
			MimeType string `json:"mimeType"`
		} `json:"file"`
	}
	if err := json.Unmarshal(body, &uploadResp); err != nil {
		return FileRef{}, fmt.Errorf("parse upload response: %w", err)
	}
	if uploadResp.File.URI == "" {
		return FileRef{}, fmt.Errorf("Gemini file upload returned no URI: %s", string(body))
	}

	log.Printf("[gemini] uploaded %s as %s", wavPath, uploadResp.File.Name)

	mimeType := uploadResp.File.MimeType
	if mimeType == "" {
		mimeType = "audio/wav"
	}
	return FileRef{URI: uploadResp.File.URI, MIMEType: mimeType}, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, ref FileRef, parts ...string) (string, error) {
	requestParts := make([]map[string]interface{}, 0, len(parts)+1)
	for _, p := range parts {
		requestParts = append(requestParts, map[string]interface{}{"text": p})
	}
	requestParts = append(requestParts, map[string]interface{}{
		"file_data": map[string]string{
			"mime_type": ref.MIMEType,
			"file_uri":  ref.URI,
		},
	})

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": requestParts},
		},
		"generationConfig": map[string]interface{}{
			"temperature": 0.2,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent", geminiAPIBase, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("Gemini API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error (status %d): %s", resp.StatusCode, string(body))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
	}
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		log.Printf("[gemini] empty response body: %s", string(body))
		if geminiResp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("Gemini blocked: %s", geminiResp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("empty Gemini response")
	}
	if fr := geminiResp.Candidates[0].FinishReason; fr != "" && fr != "STOP" {
		log.Printf("[gemini] WARNING: finishReason=%s", fr)
	}

	var text string
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text, nil
}
