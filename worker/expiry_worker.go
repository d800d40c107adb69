package worker

import (
	"context"
	"sync"
	"time"

	"bizmarket/services"
	"bizmarket/utils"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper is the job the expiry worker runs on schedule.
type Sweeper interface {
	Sweep(ctx context.Context) (services.SweepResult, error)
}

// ExpiryWorker runs the premium expiry sweep on a cron schedule.
type ExpiryWorker struct {
	Sweeper  Sweeper
	Schedule string
	Timeout  time.Duration
	Logger   *logrus.Entry

	cron *cron.Cron
	mu   sync.Mutex
	ctx  context.Context
}

func NewExpiryWorker(sweeper Sweeper, schedule string, timeout time.Duration, logger *logrus.Entry) *ExpiryWorker {
	return &ExpiryWorker{
		Sweeper:  sweeper,
		Schedule: schedule,
		Timeout:  timeout,
		Logger:   logger,
	}
}

// Start registers the sweep and starts the scheduler. Runs are skipped while a
// previous run is still going. The scheduler stops when ctx is cancelled.
func (ew *ExpiryWorker) Start(ctx context.Context) error {
	ew.mu.Lock()
	defer ew.mu.Unlock()

	ew.ctx = ctx
	ew.cron = cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(ew.Logger)),
		cron.SkipIfStillRunning(cron.PrintfLogger(ew.Logger)),
	))
	if _, err := ew.cron.AddFunc(ew.Schedule, func() { ew.RunOnce(ew.ctx) }); err != nil {
		return err
	}
	ew.cron.Start()
	ew.Logger.WithField("schedule", ew.Schedule).Info("expiry worker started")

	go func() {
		<-ctx.Done()
		ew.Stop()
	}()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (ew *ExpiryWorker) Stop() {
	ew.mu.Lock()
	c := ew.cron
	ew.cron = nil
	ew.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	ew.Logger.Info("expiry worker stopped")
}

// RunOnce performs a single sweep bounded by the worker timeout.
func (ew *ExpiryWorker) RunOnce(ctx context.Context) services.SweepResult {
	if ew.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ew.Timeout)
		defer cancel()
	}

	started := time.Now()
	res, err := ew.Sweeper.Sweep(ctx)
	fields := logrus.Fields{
		"candidates":    res.Candidates,
		"expired":       res.Expired,
		"skipped":       res.Skipped,
		"failed":        res.Failed,
		"notified":      res.Notified,
		"notify_failed": res.NotifyFailed,
		"duration":      time.Since(started).String(),
	}
	if err != nil {
		ew.Logger.WithError(err).WithFields(fields).Error("expiry sweep aborted")
		utils.LogError("expiry_sweep", err, fields)
		return res
	}

	ew.Logger.WithFields(fields).Info("expiry sweep finished")
	return res
}
