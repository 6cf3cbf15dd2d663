package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoir-rag/internal/config"
	"memoir-rag/internal/models"
	"memoir-rag/internal/rag"
	"memoir-rag/internal/tts"
)

type stubRetriever struct {
	hits []models.ScoredSegment
	err  error
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string) ([]models.ScoredSegment, error) {
	return s.hits, s.err
}

type stubSynthesizer struct {
	answer string
	err    error
}

func (s *stubSynthesizer) Synthesize(_ context.Context, _ string, _ []models.Segment) (string, error) {
	return s.answer, s.err
}

type stubSpeaker struct {
	audio []byte
	err   error
}

func (s *stubSpeaker) Synthesize(_ context.Context, _ string) ([]byte, error) {
	return s.audio, s.err
}

func testServerConfig() *config.Config {
	cfg, _ := config.LoadConfig("nonexistent.yaml")
	return cfg
}

func newRouter(svc *ServiceContext, speaker Speaker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(testServerConfig(), svc, speaker)
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		r := newRouter(&ServiceContext{Retriever: &stubRetriever{}, Synthesizer: &stubSynthesizer{}}, &stubSpeaker{})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "online")
	})

	t.Run("degraded but still 200", func(t *testing.T) {
		r := newRouter(nil, &stubSpeaker{})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "degraded")
	})
}

func TestAsk_NotReady(t *testing.T) {
	r := newRouter(nil, &stubSpeaker{})
	w := postJSON(r, "/ask", `{"question":"What happened at the bridge?"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAsk_NoContent(t *testing.T) {
	svc := &ServiceContext{
		Retriever:   &stubRetriever{err: rag.ErrNoContent},
		Synthesizer: &stubSynthesizer{answer: "should not be called"},
	}
	r := newRouter(svc, &stubSpeaker{})
	w := postJSON(r, "/ask", `{"question":"What happened at the bridge?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.AnswerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.NoContentSummary, resp.Summary)
	assert.Empty(t, resp.Excerpts)
	assert.Contains(t, w.Body.String(), `"excerpts":[]`)
}

func TestAsk_Success(t *testing.T) {
	hits := []models.ScoredSegment{
		{Segment: models.Segment{Text: "We reached the bridge after dark. It held", SourceLabel: "CHAPTER 3"}, Score: 0.9},
		{Segment: models.Segment{Text: "The engineers had wired it that morning.", SourceLabel: "CHAPTER 4"}, Score: 0.8},
		{Segment: models.Segment{Text: "Third passage about the river crossing.", SourceLabel: "CHAPTER 4"}, Score: 0.7},
		{Segment: models.Segment{Text: "Fourth passage that should not be cited.", SourceLabel: "CHAPTER 5"}, Score: 0.6},
	}
	svc := &ServiceContext{
		Retriever:   &stubRetriever{hits: hits},
		Synthesizer: &stubSynthesizer{answer: "Captain Morgia crossed at night."},
	}
	r := newRouter(svc, &stubSpeaker{})
	w := postJSON(r, "/ask", `{"question":"What happened at the bridge?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.AnswerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Captain Morgia crossed at night.", resp.Summary)

	// at most 3 excerpts, trimmed to the last complete sentence
	require.Len(t, resp.Excerpts, 3)
	assert.Equal(t, "We reached the bridge after dark.", resp.Excerpts[0].Text)
	assert.Equal(t, "CHAPTER 3", resp.Excerpts[0].Chapter)
}

func TestAsk_UpstreamFailure(t *testing.T) {
	svc := &ServiceContext{
		Retriever: &stubRetriever{hits: []models.ScoredSegment{
			{Segment: models.Segment{Text: "A passage.", SourceLabel: "CHAPTER 1"}, Score: 0.9},
		}},
		Synthesizer: &stubSynthesizer{err: errors.New("completion request failed: 502")},
	}
	r := newRouter(svc, &stubSpeaker{})
	w := postJSON(r, "/ask", `{"question":"q"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "completion request failed")
}

func TestAsk_BadBody(t *testing.T) {
	svc := &ServiceContext{Retriever: &stubRetriever{}, Synthesizer: &stubSynthesizer{}}
	r := newRouter(svc, &stubSpeaker{})
	w := postJSON(r, "/ask", `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSpeak_Success(t *testing.T) {
	r := newRouter(nil, &stubSpeaker{audio: []byte("mp3-bytes")})
	w := postJSON(r, "/speak", `{"text":"Hello there."}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "mp3-bytes", w.Body.String())
}

func TestSpeak_ConfigMissing(t *testing.T) {
	// a real client with no credentials must fail before any outbound call
	called := false
	backend := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer backend.Close()

	client := tts.NewClient(&config.TTSConfig{BaseURL: backend.URL})
	r := newRouter(nil, client)
	w := postJSON(r, "/speak", `{"text":"Hello there."}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Audio configuration missing.")
	assert.False(t, called)
}

func TestSpeak_ProviderFailure(t *testing.T) {
	r := newRouter(nil, &stubSpeaker{err: errors.New("text-to-speech request failed: 401")})
	w := postJSON(r, "/speak", `{"text":"Hello."}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
