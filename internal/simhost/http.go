package simhost

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/lazctl/internal/observability"
	"github.com/danmuck/lazctl/internal/protocol/codec"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type journalView struct {
	MessageID uint64    `json:"message_id"`
	Command   string    `json:"command"`
	Query     bool      `json:"query"`
	At        time.Time `json:"at"`
}

// Router returns the inspection API: health, metrics, journal, layers,
// and tool properties.
func (h *Host) Router() *gin.Engine {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(h.logger))
	r.Use(observability.RequestMetricsMiddleware(h.name))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"host":    h.name,
			"uptime":  time.Since(h.started).String(),
			"handled": h.handled.Load(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/commands", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"commands": h.Commands()})
	})
	r.GET("/journal", func(c *gin.Context) {
		entries := h.Journal()
		out := make([]journalView, 0, len(entries))
		for _, e := range entries {
			out = append(out, journalView{
				MessageID: e.MessageID,
				Command:   e.Command.String(),
				Query:     e.Command.IsQuery(),
				At:        e.At,
			})
		}
		c.JSON(http.StatusOK, gin.H{"journal": out})
	})
	r.GET("/layers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"layers":  h.Layers(),
			"current": h.CurrentLayer().ID,
		})
	})
	r.GET("/tool", func(c *gin.Context) {
		props := make(map[string]string)
		for _, name := range h.Properties() {
			v, _ := h.Property(name)
			props[name] = codec.Format(v)
		}
		c.JSON(http.StatusOK, gin.H{"tool": h.Tool(), "properties": props})
	})
	r.GET("/tool/:property", func(c *gin.Context) {
		v, ok := h.Property(c.Param("property"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown property"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"property": c.Param("property"), "value": codec.Format(v)})
	})
	return r
}

// ListenHTTP runs the inspection API on addr until ctx ends.
func (h *Host) ListenHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		h.logger.Info().Str("addr", addr).Msg("simhost.http_listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
