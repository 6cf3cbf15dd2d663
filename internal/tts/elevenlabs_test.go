package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoir-rag/internal/config"
)

func TestSynthesize_ConfigMissing(t *testing.T) {
	called := false
	backend := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer backend.Close()

	tests := []struct {
		name string
		cfg  config.TTSConfig
	}{
		{"no key", config.TTSConfig{VoiceID: "v1", BaseURL: backend.URL}},
		{"no voice", config.TTSConfig{APIKey: "k1", BaseURL: backend.URL}},
		{"neither", config.TTSConfig{BaseURL: backend.URL}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(&tt.cfg).Synthesize(context.Background(), "hello")
			assert.ErrorIs(t, err, ErrConfigMissing)
			assert.False(t, called)
		})
	}
}

func TestSynthesize_Success(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/v1", r.URL.Path)
		assert.Equal(t, "k1", r.Header.Get("xi-api-key"))

		var req speechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Hello there.", req.Text)
		assert.Equal(t, modelID, req.ModelID)
		assert.InDelta(t, 0.30, req.VoiceSettings.Stability, 1e-9)
		assert.True(t, req.VoiceSettings.UseSpeakerBoost)

		w.Write([]byte("mp3-bytes"))
	}))
	defer backend.Close()

	client := NewClient(&config.TTSConfig{APIKey: "k1", VoiceID: "v1", BaseURL: backend.URL})
	audio, err := client.Synthesize(context.Background(), "Hello there.")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)
}

func TestSynthesize_ProviderError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer backend.Close()

	client := NewClient(&config.TTSConfig{APIKey: "bad", VoiceID: "v1", BaseURL: backend.URL})
	_, err := client.Synthesize(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
