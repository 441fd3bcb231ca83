package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/math-tutor/backend/pkg/logger"
)

// Synthesizer turns answer text into a spoken-audio URL. A failed
// synthesis only loses the voice track, never the answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, sessionID string) (string, error)
}

// HTTPSynthesizer calls an external TTS service over HTTP.
type HTTPSynthesizer struct {
	endpoint   string
	httpClient *http.Client
}

func NewHTTPSynthesizer(endpoint string, timeout time.Duration) *HTTPSynthesizer {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPSynthesizer{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text, sessionID string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"text":       text,
		"session_id": sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("tts service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read tts response: %w", err)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse tts response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("tts service returned no audio url")
	}

	logger.Debug("Voice synthesized", zap.String("session_id", sessionID))
	return out.URL, nil
}
