package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/versecue/internal/cli"
	"github.com/julianstephens/versecue/internal/config"
	"github.com/julianstephens/versecue/internal/constants"
	"github.com/julianstephens/versecue/internal/lockfile"
	"github.com/julianstephens/versecue/internal/logger"
)

// ServeCmd runs the dispatcher and the nightly recompute until interrupted.
type ServeCmd struct {
	NoWatch bool `help:"Do not reload the config file when it changes."`
}

type job int

const (
	jobDispatch job = iota
	jobNightly
)

func (j job) String() string {
	if j == jobNightly {
		return "nightly"
	}
	return "dispatch"
}

// daemon runs every job on one goroutine, so passes never overlap.
type daemon struct {
	ctx  *cli.Context
	jobs chan job
}

func newDaemon(ctx *cli.Context) *daemon {
	return &daemon{ctx: ctx, jobs: make(chan job, 4)}
}

// enqueue drops the job when the queue is full; the next tick catches up.
func (d *daemon) enqueue(j job) {
	select {
	case d.jobs <- j:
	default:
		logger.Debug("Job queue full, skipping", "job", j)
	}
}

// locked runs fn under the state lock shared with one-shot commands. A busy
// lock skips the job; the next tick or nightly run catches up.
func (d *daemon) locked(what string, fn func()) {
	lock, err := d.ctx.Lock()
	if err != nil {
		logger.Debug("State busy, skipping", "job", what, "error", err)
		return
	}
	defer lock.Release()
	fn()
}

func (d *daemon) handle(ctx context.Context, j job) {
	d.locked(j.String(), func() { d.run(ctx, j) })
}

func (d *daemon) run(ctx context.Context, j job) {
	switch j {
	case jobDispatch:
		report, err := dispatchDue(ctx, d.ctx)
		if err != nil {
			logger.Warn("Dispatch failed", "error", err)
			return
		}
		if report.Delivered+report.Expired+report.Failed > 0 {
			logger.Info("Dispatch finished", "delivered", report.Delivered, "expired", report.Expired, "failed", report.Failed)
		}
	case jobNightly:
		d.recompute(ctx, "nightly")
	}
}

func (d *daemon) recompute(ctx context.Context, reason string) {
	streak, err := d.ctx.CurrentStreak()
	if err != nil {
		logger.Warn("Failed to read streak", "error", err)
		return
	}
	res, err := d.ctx.Runner.Trigger(ctx, streak)
	if err != nil {
		logger.Warn("Recompute failed", "reason", reason, "error", err)
		return
	}
	if res != nil {
		logger.Info("Recompute done", "reason", reason, "run", res.RunID, "scheduled", len(res.Scheduled))
	}
}

// reload rebuilds the engine from cfg over the same store and recomputes.
// The database, the state directory and the dispatch interval are fixed for
// the life of the process.
func (d *daemon) reload(ctx context.Context, cfg *config.Config) error {
	old := d.ctx.Config
	if cfg.Database != old.Database || cfg.StateDir != old.StateDir || cfg.Dispatch.Interval != old.Dispatch.Interval {
		logger.Warn("database, state_dir and dispatch.interval changes apply after restart")
	}
	cfg.Database = old.Database
	cfg.StateDir = old.StateDir
	cfg.Dispatch.Interval = old.Dispatch.Interval

	next, err := cli.NewContext(cfg, d.ctx.Store, cli.WithNow(d.ctx.Now))
	if err != nil {
		return fmt.Errorf("failed to apply reloaded config: %w", err)
	}
	next.ConfigPath = d.ctx.ConfigPath
	d.ctx = next

	d.locked("reload", func() { d.recompute(ctx, "config reload") })
	return nil
}

func (cmd *ServeCmd) Run(ctx *cli.Context) error {
	stateDir, err := ctx.Config.ResolvedStateDir()
	if err != nil {
		return err
	}
	instance, err := lockfile.AcquireNamed(stateDir, constants.ServeLockFileName)
	if err != nil {
		return fmt.Errorf("another serve process is running: %w", err)
	}
	defer instance.Release()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := newDaemon(ctx)

	interval, err := ctx.Config.DispatchInterval()
	if err != nil {
		return err
	}
	c := cron.New(cron.WithLocation(ctx.Calendar.Location()))
	if _, err := c.AddFunc("@every "+interval.String(), func() { d.enqueue(jobDispatch) }); err != nil {
		return fmt.Errorf("failed to schedule dispatch: %w", err)
	}
	if _, err := c.AddFunc(constants.NightlyRecomputeSpec, func() { d.enqueue(jobNightly) }); err != nil {
		return fmt.Errorf("failed to schedule nightly recompute: %w", err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	var updates <-chan *config.Config
	if !cmd.NoWatch && ctx.ConfigPath != "" {
		w := config.NewWatcher(ctx.ConfigPath, ctx.Config)
		updates = w.Subscribe(1)
		go func() {
			if err := w.Watch(runCtx); err != nil {
				logger.Warn("Config watcher stopped", "error", err)
			}
		}()
	}

	d.locked("startup", func() {
		d.recompute(runCtx, "startup")
		d.run(runCtx, jobDispatch)
	})
	logger.Info("Serving", "interval", interval, "zone", ctx.Calendar.Location().String())
	fmt.Printf("versecue serving (dispatch every %s). Press Ctrl+C to stop.\n", interval)

	for {
		select {
		case <-runCtx.Done():
			logger.Info("Shutting down")
			return nil
		case j := <-d.jobs:
			d.handle(runCtx, j)
		case cfg := <-updates:
			if err := d.reload(runCtx, cfg); err != nil {
				logger.Warn("Config reload failed", "error", err)
			}
		}
	}
}
