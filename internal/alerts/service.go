// Package alerts validates and manages price alerts on top of the store.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"price-tracker/internal/models"
	"price-tracker/internal/scraper"
)

var (
	// ErrInvalidURL is returned for anything that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid product url")
	// ErrInvalidTargetPrice is returned for targets that are not positive finite numbers.
	ErrInvalidTargetPrice = errors.New("target price must be a positive number")
)

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	ListActive(ctx context.Context) ([]models.Alert, error)
	Deactivate(ctx context.Context, id string) error
}

// Service creates, lists and removes alerts.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService creates a Service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Create validates the input, detects the platform and stores a new active alert.
func (s *Service) Create(ctx context.Context, rawURL string, targetPrice float64, recipient string) (*models.Alert, error) {
	productURL, err := normalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	platform, err := scraper.DetectPlatform(productURL)
	if err != nil {
		return nil, err
	}

	if targetPrice <= 0 || math.IsNaN(targetPrice) || math.IsInf(targetPrice, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTargetPrice, targetPrice)
	}

	alert := &models.Alert{
		ID:          s.newID(),
		URL:         productURL,
		Platform:    platform,
		TargetPrice: targetPrice,
		Recipient:   strings.TrimSpace(recipient),
		CreatedAt:   s.now().UTC(),
		Active:      true,
	}
	if err := s.store.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}

	s.logger.Info("alert created",
		zap.String("alert_id", alert.ID),
		zap.String("platform", platform.String()),
		zap.Float64("target_price", targetPrice),
	)
	return alert, nil
}

// List returns all active alerts.
func (s *Service) List(ctx context.Context) ([]models.Alert, error) {
	return s.store.ListActive(ctx)
}

// Get returns one alert, active or not.
func (s *Service) Get(ctx context.Context, id string) (*models.Alert, error) {
	return s.store.GetByID(ctx, id)
}

// Deactivate soft-removes an alert so future sweeps skip it.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	if err := s.store.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info("alert deactivated", zap.String("alert_id", id))
	return nil
}

func normalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, trimmed)
	}
	return trimmed, nil
}
