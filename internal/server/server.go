package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"memoir-rag/internal/config"
)

// NewRouter wires middleware and routes. svc may be nil; the router still
// serves so health checks and /speak keep working while /ask reports 503.
func NewRouter(cfg *config.Config, svc *ServiceContext, speaker Speaker) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(log.Logger))
	r.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	h := NewHandlers(svc, speaker, cfg)
	r.GET("/", h.Health)

	ask := r.Group("/")
	if cfg.Server.RateLimitPerMinute > 0 {
		ask.Use(NewRateLimiter(cfg.Server.RateLimitPerMinute).Middleware())
	}
	ask.POST("/ask", h.Ask)

	r.POST("/speak", h.Speak)
	return r
}

// Run serves the router until ctx is canceled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, svc *ServiceContext, speaker Speaker) error {
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: NewRouter(cfg, svc, speaker),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Serving")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
