package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// BookingExpirer expires overdue booking holds.
type BookingExpirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

// ExpiryScheduler runs the booking expiry sweep on a cron schedule. Overlapping
// runs are skipped rather than queued.
type ExpiryScheduler struct {
	expirer BookingExpirer
	log     *logrus.Logger
	cron    *cron.Cron

	mu     sync.Mutex
	ctx    context.Context //nolint:containedctx // sweeps inherit the lifetime passed to Start.
	cancel context.CancelFunc
}

// NewExpiryScheduler registers the sweep under schedule (standard cron syntax
// or a descriptor such as "@every 5m").
func NewExpiryScheduler(expirer BookingExpirer, schedule string, log *logrus.Logger) (*ExpiryScheduler, error) {
	logger := cronLogger{log: log}

	s := &ExpiryScheduler{
		expirer: expirer,
		log:     log,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx: context.Background(),
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid expiry schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start begins scheduling. Sweeps stop being started once ctx is cancelled.
func (s *ExpiryScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("booking expiry scheduler started")
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *ExpiryScheduler) Stop() {
	<-s.cron.Stop().Done()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
}

// Sweep runs one expiry pass immediately.
func (s *ExpiryScheduler) Sweep(ctx context.Context) (int, error) {
	n, err := s.expirer.ExpireDue(ctx)
	if err != nil {
		return 0, fmt.Errorf("booking expiry sweep: %w", err)
	}

	return n, nil
}

func (s *ExpiryScheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	if _, err := s.Sweep(ctx); err != nil {
		s.log.WithError(err).Error("scheduled booking expiry failed")
	}
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	log *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.WithFields(kvFields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.WithError(err).WithFields(kvFields(keysAndValues)).Error("cron: " + msg)
}

func kvFields(kv []any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}

	return f
}
