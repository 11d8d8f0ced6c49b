package http

import (
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pairline/pairline-server/internal/auth"
	"github.com/pairline/pairline-server/internal/broker"
	"github.com/pairline/pairline-server/internal/config"
	"github.com/pairline/pairline-server/internal/core"
)

// NewServer builds the HTTP server exposing the ingestion endpoint and the
// realtime room socket.
func NewServer(cfg config.Config, resolver *auth.Resolver, registry *core.Registry, b broker.Broker, logger *zerolog.Logger) (*stdhttp.Server, *IngestHandler) {
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	router.GET("/health", healthHandler)

	ingest := NewIngestHandler(b, cfg.IngestRateLimit, logger)
	router.POST("/messages", AuthMiddleware(resolver, logger), ingest.Submit)

	ws := NewWSHandler(resolver, registry, b, cfg.OutboxSize, cfg.HandshakeTimeout, logger)
	router.GET("/rooms/:room_id/socket", ws.Handle)

	server := &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	return server, ingest
}

func healthHandler(c *gin.Context) {
	fmt.Fprint(c.Writer, "ok")
}
