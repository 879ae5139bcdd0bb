package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"fingpt-backend/internal/models"
)

// InferenceClient talks to an OpenAI-compatible chat-completion endpoint and
// collapses the streamed delta sequence into one reply string. Partial output
// is never exposed: the caller sees the reply only once the stream is
// exhausted.
type InferenceClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// Stream creation is retried with linear backoff; a stream that fails after
// the first delta is not restartable and its error propagates.
const (
	createAttempts = 3
	createBackoff  = 500 * time.Millisecond
)

func NewInferenceClient(apiKey, baseURL, model string, maxTokens int) *InferenceClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	return &InferenceClient{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Generate sends the composed message set and returns the full reply text.
// The provider truncates once the token cap is reached; there is no local
// continuation.
func (c *InferenceClient) Generate(ctx context.Context, messages []models.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  convertMessages(messages),
		MaxTokens: c.maxTokens,
		Stream:    true,
	}

	stream, err := c.createStream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to start completion stream: %w", err)
	}
	defer stream.Close()

	var reply strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("completion stream failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			reply.WriteString(delta)
		}
	}

	return reply.String(), nil
}

func (c *InferenceClient) createStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error) {
	var lastErr error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		stream, err := c.client.CreateChatCompletionStream(ctx, req)
		if err == nil {
			return stream, nil
		}
		lastErr = err
		if attempt < createAttempts {
			log.Printf("inference: stream creation failed (attempt %d/%d): %v", attempt, createAttempts, err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(createBackoff * time.Duration(attempt)):
			}
		}
	}
	return nil, lastErr
}

func convertMessages(messages []models.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
