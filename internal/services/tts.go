package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// TTSService converts reply text into a browser-playable MP3 clip using the
// Google Translate TTS endpoint (the same service the gTTS shim wraps).
type TTSService struct {
	baseURL  string
	language string
	client   *http.Client
}

func NewTTSService(baseURL, language string) *TTSService {
	if language == "" {
		language = "en"
	}
	return &TTSService{
		baseURL:  baseURL,
		language: language,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Synthesize returns MP3 audio for the given text. An empty lang falls back
// to the configured default language code.
func (s *TTSService) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	if lang == "" {
		lang = s.language
	}

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", lang)
	params.Set("q", text)

	endpoint := s.baseURL + "/translate_tts?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts provider returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tts audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts provider returned no audio")
	}
	return audio, nil
}
