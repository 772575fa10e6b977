// Package api exposes alerts and on-demand sweeps over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"price-tracker/internal/alerts"
	"price-tracker/internal/database"
	"price-tracker/internal/models"
	"price-tracker/internal/monitor"
	"price-tracker/internal/scraper"
)

// AlertService is what the handlers need from the alert service.
type AlertService interface {
	Create(ctx context.Context, rawURL string, targetPrice float64, recipient string) (*models.Alert, error)
	List(ctx context.Context) ([]models.Alert, error)
	Get(ctx context.Context, id string) (*models.Alert, error)
	Deactivate(ctx context.Context, id string) error
}

// Sweeper runs an on-demand sweep.
type Sweeper interface {
	RunSweepNow(ctx context.Context) (models.Summary, error)
}

type createAlertRequest struct {
	URL         string  `json:"url" binding:"required"`
	TargetPrice float64 `json:"target_price" binding:"required"`
	Recipient   string  `json:"recipient"`
}

// Handler serves the HTTP API.
type Handler struct {
	alerts  AlertService
	sweeper Sweeper
	logger  *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(service AlertService, sweeper Sweeper, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{alerts: service, sweeper: sweeper, logger: logger}
}

// NewRouter wires routes and middleware. gatherer backs /metrics.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), loggerMiddleware(h.logger))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	alertsGroup := r.Group("/alerts")
	alertsGroup.POST("", h.CreateAlert)
	alertsGroup.GET("", h.ListAlerts)
	alertsGroup.POST("/check", h.CheckNow)
	alertsGroup.GET("/:id", h.GetAlert)
	alertsGroup.DELETE("/:id", h.DeleteAlert)
	return r
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "price-tracker"})
}

// CreateAlert validates and stores a new alert.
func (h *Handler) CreateAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	alert, err := h.alerts.Create(c.Request.Context(), req.URL, req.TargetPrice, req.Recipient)
	switch {
	case errors.Is(err, scraper.ErrUnsupportedPlatform):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported platform; supported: myntra, flipkart, ajio, tata_cliq"})
		return
	case errors.Is(err, alerts.ErrInvalidURL), errors.Is(err, alerts.ErrInvalidTargetPrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("failed to create alert", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create alert"})
		return
	}

	c.JSON(http.StatusCreated, alert)
}

// ListAlerts returns every active alert.
func (h *Handler) ListAlerts(c *gin.Context) {
	list, err := h.alerts.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list alerts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": list,
		"count":  len(list),
	})
}

// GetAlert returns one alert by id.
func (h *Handler) GetAlert(c *gin.Context) {
	alert, err := h.alerts.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to get alert", zap.String("alert_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get alert"})
		return
	}

	c.JSON(http.StatusOK, alert)
}

// DeleteAlert soft-removes an alert.
func (h *Handler) DeleteAlert(c *gin.Context) {
	err := h.alerts.Deactivate(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to delete alert", zap.String("alert_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete alert"})
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckNow runs a sweep and returns its summary once finished.
func (h *Handler) CheckNow(c *gin.Context) {
	summary, err := h.sweeper.RunSweepNow(c.Request.Context())
	switch {
	case errors.Is(err, monitor.ErrSweepInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, monitor.ErrStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("manual sweep failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "price check failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "price check completed",
		"summary": summary,
	})
}

func loggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case len(c.Errors) > 0:
			log.Error("HTTP request with errors", append(fields, zap.Strings("errors", c.Errors.Errors()))...)
		case strings.HasPrefix(path, "/health"), path == "/metrics":
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
