package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"memoir-rag/internal/config"
)

// ErrConfigMissing means the API key or voice identifier is absent. The
// provider is never called in that case.
var ErrConfigMissing = errors.New("audio configuration missing")

const modelID = "eleven_multilingual_v2"

// voiceSettings are fixed; tone is configuration of the voice itself, not of
// this service.
type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
	Speed           float64 `json:"speed"`
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Client talks to the ElevenLabs text-to-speech API.
type Client struct {
	apiKey     string
	voiceID    string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *config.TTSConfig) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		voiceID:    cfg.VoiceID,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Synthesize renders text to speech and returns the raw audio bytes
// (audio/mpeg). Fails fast with ErrConfigMissing before any outbound call
// when credentials are absent.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.apiKey == "" || c.voiceID == "" {
		return nil, ErrConfigMissing
	}

	payload := speechRequest{
		Text:    text,
		ModelID: modelID,
		VoiceSettings: voiceSettings{
			Stability:       0.30,
			SimilarityBoost: 0.95,
			Style:           0.20,
			UseSpeakerBoost: true,
			Speed:           0.8,
		},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("text-to-speech request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("text-to-speech request failed: %d, %s", resp.StatusCode, string(body))
	}
	return body, nil
}
