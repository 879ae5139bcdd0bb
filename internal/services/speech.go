package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Speech recognition outcomes. Both are terminal per invocation: the caller
// surfaces a warning or error and the user may retry manually.
var (
	// ErrUnintelligible means the recognizer could not make out any words.
	ErrUnintelligible = errors.New("speech was not intelligible")
	// ErrRecognitionUnavailable means the recognition service failed or was
	// unreachable.
	ErrRecognitionUnavailable = errors.New("speech recognition service unavailable")
)

// SpeechService transcribes captured utterances via the Gemini File API.
type SpeechService struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewSpeechService(ctx context.Context, apiKey string) (*SpeechService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create recognition client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	model.SetTemperature(0)

	return &SpeechService{client: client, model: model}, nil
}

func (s *SpeechService) Close() {
	s.client.Close()
}

// Transcribe submits one utterance and returns the recognized text.
// Returns ErrUnintelligible when the audio carried no recognizable speech
// and ErrRecognitionUnavailable when the provider call itself fails.
func (s *SpeechService) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio payload", ErrUnintelligible)
	}

	file, err := s.client.UploadFile(ctx, "", bytes.NewReader(audio), &genai.UploadFileOptions{
		DisplayName: "utterance",
		MIMEType:    mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognitionUnavailable, err)
	}

	// Ensure remote file is cleaned up
	defer s.client.DeleteFile(context.Background(), file.Name)

	// Wait until file is active
	for i := 0; i < 20; i++ {
		current, getErr := s.client.GetFile(ctx, file.Name)
		if getErr != nil {
			return "", fmt.Errorf("%w: %v", ErrRecognitionUnavailable, getErr)
		}

		if current.State == genai.FileStateActive {
			file = current
			break
		}
		if current.State == genai.FileStateFailed {
			return "", fmt.Errorf("%w: audio could not be processed", ErrUnintelligible)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrRecognitionUnavailable, ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}

	if file.State != genai.FileStateActive {
		return "", fmt.Errorf("%w: audio file did not become active in time", ErrRecognitionUnavailable)
	}

	prompt := "Transcribe the provided audio verbatim. Return plain text only, without markdown, headers, or explanations. If no speech is audible, return an empty response."

	resp, err := s.model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.FileData{MIMEType: mimeType, URI: file.URI},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognitionUnavailable, err)
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", ErrUnintelligible
	}

	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
