package monitor

import (
	"context"

	"go.uber.org/zap"

	"price-tracker/internal/models"
)

// PriceDrop describes one detected threshold crossing.
type PriceDrop struct {
	AlertID      string
	URL          string
	Platform     models.Platform
	CurrentPrice float64
	TargetPrice  float64
	Recipient    string
}

// Notifier is told about every price drop. Delivery is best effort: a
// returned error is logged and never fails the sweep.
type Notifier interface {
	OnPriceDrop(ctx context.Context, drop PriceDrop) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, drop PriceDrop) error

// OnPriceDrop calls f.
func (f NotifierFunc) OnPriceDrop(ctx context.Context, drop PriceDrop) error {
	return f(ctx, drop)
}

// LogNotifier only logs drops. It is used when no delivery channel is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// OnPriceDrop logs the drop.
func (n *LogNotifier) OnPriceDrop(_ context.Context, drop PriceDrop) error {
	n.logger.Info("price drop (no notifier configured)",
		zap.String("alert_id", drop.AlertID),
		zap.String("url", drop.URL),
		zap.Float64("price", drop.CurrentPrice),
		zap.Float64("target_price", drop.TargetPrice),
		zap.String("recipient", drop.Recipient),
	)
	return nil
}
