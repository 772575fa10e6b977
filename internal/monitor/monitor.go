package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"price-tracker/internal/models"
	"price-tracker/internal/scraper"
)

var (
	// ErrSweepInProgress is returned when a sweep is requested while one is running.
	ErrSweepInProgress = errors.New("a sweep is already in progress")
	// ErrStopped is returned for sweeps requested after Stop.
	ErrStopped = errors.New("monitor stopped")
)

const (
	defaultItemDelay = 2 * time.Second

	triggerScheduled = "scheduled"
	triggerManual    = "manual"
)

// AlertStore is the persistence the monitor reads and writes. Calls are
// independent; no transaction spans a sweep.
type AlertStore interface {
	ListActive(ctx context.Context) ([]models.Alert, error)
	UpdatePrice(ctx context.Context, id string, price float64, checkedAt time.Time) error
}

// ScraperResolver maps a stored platform to its scraper.
type ScraperResolver interface {
	Lookup(platform models.Platform) (scraper.Scraper, error)
}

// Monitor sweeps all active alerts, one at a time, on a fixed schedule or on
// demand. At most one sweep runs at any moment.
type Monitor struct {
	store    AlertStore
	registry ScraperResolver
	notifier Notifier
	logger   *zap.Logger
	metrics  *Metrics

	interval   time.Duration
	itemDelay  time.Duration
	runOnStart bool
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration)

	sweepMu sync.Mutex
	stopped bool
	cron    *cron.Cron
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithItemDelay sets the pause between two items of a sweep. Default: 2s.
func WithItemDelay(d time.Duration) Option {
	return func(m *Monitor) {
		m.itemDelay = d
	}
}

// WithRunOnStart runs a sweep as soon as Start is called.
func WithRunOnStart(run bool) Option {
	return func(m *Monitor) {
		m.runOnStart = run
	}
}

// WithMetrics sets the Prometheus collectors. Default: unregistered collectors.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Monitor) {
		m.metrics = metrics
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithSleep overrides the inter-item wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(m *Monitor) {
		m.sleep = sleep
	}
}

// New creates a monitor that sweeps every interval.
func New(store AlertStore, registry ScraperResolver, notifier Notifier, logger *zap.Logger, interval time.Duration, opts ...Option) *Monitor {
	m := &Monitor{
		store:     store,
		registry:  registry,
		notifier:  notifier,
		logger:    logger,
		interval:  interval,
		itemDelay: defaultItemDelay,
		now:       time.Now,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.metrics == nil {
		m.metrics = NewMetrics(nil)
	}
	if m.notifier == nil {
		m.notifier = NewLogNotifier(m.logger)
	}
	return m
}

// RunSweepNow runs a full sweep and returns once it has finished. The sweep
// is not interrupted if ctx is cancelled. It fails with ErrSweepInProgress
// when another sweep is running.
func (m *Monitor) RunSweepNow(ctx context.Context) (models.Summary, error) {
	return m.trySweep(context.WithoutCancel(ctx), triggerManual)
}

func (m *Monitor) trySweep(ctx context.Context, trigger string) (models.Summary, error) {
	if !m.sweepMu.TryLock() {
		m.metrics.SweepsRejected.WithLabelValues(trigger).Inc()
		return models.Summary{}, ErrSweepInProgress
	}
	defer m.sweepMu.Unlock()

	if m.stopped {
		return models.Summary{}, ErrStopped
	}
	return m.sweep(ctx, trigger)
}

func (m *Monitor) sweep(ctx context.Context, trigger string) (models.Summary, error) {
	summary := models.Summary{StartedAt: m.now()}

	alerts, err := m.store.ListActive(ctx)
	if err != nil {
		m.metrics.Sweeps.WithLabelValues(trigger, "aborted").Inc()
		m.logger.Error("sweep aborted: could not list active alerts",
			zap.String("trigger", trigger),
			zap.Error(err),
		)
		return summary, fmt.Errorf("list active alerts: %w", err)
	}

	m.logger.Info("sweep started", zap.String("trigger", trigger), zap.Int("alerts", len(alerts)))

	for i, alert := range alerts {
		if i > 0 {
			m.sleep(ctx, m.itemDelay)
		}
		summary.Checked++
		m.metrics.ItemsChecked.Inc()
		m.checkAlert(ctx, alert, &summary)
	}

	summary.Duration = m.now().Sub(summary.StartedAt)
	m.metrics.Sweeps.WithLabelValues(trigger, "completed").Inc()
	m.metrics.SweepDuration.Observe(summary.Duration.Seconds())
	m.metrics.LastSweep.SetToCurrentTime()

	m.logger.Info("sweep complete",
		zap.String("trigger", trigger),
		zap.Int("checked", summary.Checked),
		zap.Int("drops", summary.Drops),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("store_errors", summary.StoreErrors),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (m *Monitor) checkAlert(ctx context.Context, alert models.Alert, summary *models.Summary) {
	log := m.logger.With(
		zap.String("alert_id", alert.ID),
		zap.String("url", alert.URL),
		zap.String("platform", alert.Platform.String()),
	)

	s, err := m.registry.Lookup(alert.Platform)
	if err != nil {
		summary.Skipped++
		m.metrics.ItemFailures.WithLabelValues(alert.Platform.String(), "unknown_platform").Inc()
		log.Warn("skipping alert with unknown platform", zap.Error(err))
		return
	}

	var price float64
	err = guard(func() error {
		var fetchErr error
		price, fetchErr = s.FetchPrice(ctx, alert.URL)
		return fetchErr
	})
	if err != nil {
		summary.Failed++
		reason := failureReason(err)
		m.metrics.ItemFailures.WithLabelValues(alert.Platform.String(), reason).Inc()
		log.Error("price check failed", zap.String("reason", reason), zap.Error(err))
		return
	}

	drop := price <= alert.TargetPrice
	log.Info("price checked",
		zap.Float64("price", price),
		zap.Float64("target_price", alert.TargetPrice),
		zap.Float64p("last_price", alert.LastPrice),
		zap.Bool("drop", drop),
	)
	if drop {
		summary.Drops++
		m.metrics.PriceDrops.WithLabelValues(alert.Platform.String()).Inc()
	}

	// Stale data beats a missing write aborting the sweep.
	checkedAt := m.now()
	if err := guard(func() error { return m.store.UpdatePrice(ctx, alert.ID, price, checkedAt) }); err != nil {
		summary.StoreErrors++
		m.metrics.StoreWriteFailures.Inc()
		log.Error("could not persist price", zap.Float64("price", price), zap.Error(err))
	}

	if drop {
		m.notify(ctx, log, alert, price)
	}
}

func (m *Monitor) notify(ctx context.Context, log *zap.Logger, alert models.Alert, price float64) {
	drop := PriceDrop{
		AlertID:      alert.ID,
		URL:          alert.URL,
		Platform:     alert.Platform,
		CurrentPrice: price,
		TargetPrice:  alert.TargetPrice,
		Recipient:    alert.Recipient,
	}
	if err := guard(func() error { return m.notifier.OnPriceDrop(ctx, drop) }); err != nil {
		m.metrics.NotificationFailures.Inc()
		log.Error("price drop notification failed", zap.Error(err))
	}
}

func failureReason(err error) string {
	if errors.Is(err, scraper.ErrExtractionFailed) {
		return "extraction_failed"
	}
	return "transport_error"
}

// guard runs fn and turns a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic: %v", r)
		}
	}()
	return fn()
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
