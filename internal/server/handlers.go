package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"memoir-rag/internal/config"
	"memoir-rag/internal/models"
	"memoir-rag/internal/rag"
	"memoir-rag/internal/tts"
)

// Handlers binds the HTTP surface to the pipeline. svc may be nil when
// startup failed; all ask requests then get 503. speak is independent of
// retrieval readiness.
type Handlers struct {
	svc     *ServiceContext
	speaker Speaker
	cfg     *config.Config
}

func NewHandlers(svc *ServiceContext, speaker Speaker, cfg *config.Config) *Handlers {
	return &Handlers{svc: svc, speaker: speaker, cfg: cfg}
}

func (h *Handlers) Health(c *gin.Context) {
	if h.svc == nil {
		c.JSON(http.StatusOK, gin.H{"status": "degraded", "message": "Memoir archive is starting up or failed to initialize"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "online", "message": "Memoir archive is active"})
}

func (h *Handlers) Ask(c *gin.Context) {
	if h.svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "service is not ready yet"})
		return
	}

	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	hits, err := h.svc.Retriever.Retrieve(ctx, req.Question)
	if err != nil {
		if errors.Is(err, rag.ErrNoContent) {
			c.JSON(http.StatusOK, models.AnswerResponse{
				Summary:  models.NoContentSummary,
				Excerpts: []models.Excerpt{},
			})
			return
		}
		log.Error().Err(err).Msg("Retrieval failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	segments := make([]models.Segment, 0, len(hits))
	for _, hit := range hits {
		segments = append(segments, hit.Segment)
	}

	summary, err := h.svc.Synthesizer.Synthesize(ctx, req.Question, segments)
	if err != nil {
		log.Error().Err(err).Msg("Answer synthesis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	excerpts := make([]models.Excerpt, 0, h.cfg.RAG.MaxExcerpts)
	for _, seg := range segments {
		if len(excerpts) == h.cfg.RAG.MaxExcerpts {
			break
		}
		chapter := seg.SourceLabel
		if chapter == "" {
			chapter = models.FallbackChapterLabel
		}
		excerpts = append(excerpts, models.Excerpt{
			Text:    rag.TrimToSentence(seg.Text),
			Chapter: chapter,
		})
	}

	c.JSON(http.StatusOK, models.AnswerResponse{Summary: summary, Excerpts: excerpts})
}

func (h *Handlers) Speak(c *gin.Context) {
	var req models.SpeakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	audio, err := h.speaker.Synthesize(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, tts.ErrConfigMissing) {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Audio configuration missing."})
			return
		}
		log.Error().Err(err).Msg("Text-to-speech failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", audio)
}
