package analyze

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider is the alternative engine: Whisper transcribes the clip in
// the upload step and a JSON-mode chat completion does the scoring. Tone and
// pause metrics are estimated from the transcript alone, which is the best a
// text model can do.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Upload(ctx context.Context, wavPath string) (FileRef, error) {
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: wavPath,
	})
	if err != nil {
		return FileRef{}, fmt.Errorf("whisper transcription: %w", err)
	}
	log.Printf("[openai] transcribed %s: %d characters", wavPath, len(resp.Text))
	return FileRef{Transcript: resp.Text}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, ref FileRef, parts ...string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: strings.Join(parts, "\n"),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Transcript of the audio clip:\n" + ref.Transcript,
			},
		},
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
