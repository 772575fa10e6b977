package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Start schedules a sweep every interval and returns immediately. Scheduled
// sweeps are detached from ctx cancellation; use Stop to shut down.
func (m *Monitor) Start(ctx context.Context) error {
	if m.cron != nil {
		return errors.New("monitor already started")
	}
	if m.interval <= 0 {
		return fmt.Errorf("invalid sweep interval %s", m.interval)
	}

	base := context.WithoutCancel(ctx)
	c := cron.New(
		cron.WithLogger(cronLogger{m.logger.Sugar()}),
		cron.WithChain(cron.Recover(cronLogger{m.logger.Sugar()})),
	)
	if _, err := c.AddFunc("@every "+m.interval.String(), func() { m.scheduledSweep(base) }); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	m.cron = c
	c.Start()
	m.logger.Info("monitor started",
		zap.Duration("interval", m.interval),
		zap.Duration("item_delay", m.itemDelay),
	)

	if m.runOnStart {
		go m.scheduledSweep(base)
	}
	return nil
}

// Stop cancels future sweeps and waits for a running sweep to finish.
func (m *Monitor) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
	m.sweepMu.Lock()
	defer m.sweepMu.Unlock()
	m.stopped = true
	m.logger.Info("monitor stopped")
}

func (m *Monitor) scheduledSweep(ctx context.Context) {
	_, err := m.trySweep(ctx, triggerScheduled)
	if errors.Is(err, ErrSweepInProgress) {
		m.logger.Info("skipping scheduled sweep: previous sweep still running")
	}
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
