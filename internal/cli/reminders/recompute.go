// Package reminders holds the commands that drive the scheduling engine.
package reminders

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/julianstephens/versecue/internal/cli"
	"github.com/julianstephens/versecue/internal/errors"
	"github.com/julianstephens/versecue/internal/scheduler"
	"github.com/julianstephens/versecue/internal/ui"
)

type RecomputeCmd struct {
	Streak int  `help:"Current streak length in days." required:""`
	DryRun bool `help:"Print the plan without touching the schedule."`
}

func (c *RecomputeCmd) Run(ctx *cli.Context) error {
	if c.Streak < 0 {
		return fmt.Errorf("streak must be >= 0, got %d", c.Streak)
	}
	if c.DryRun {
		plan, err := ctx.Engine.Plan(context.Background(), c.Streak)
		if err != nil {
			return err
		}
		printPlan(plan, ctx)
		return nil
	}

	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	res, err := ctx.Runner.Trigger(context.Background(), c.Streak)
	if err != nil {
		return PermissionExit(err)
	}
	if res == nil {
		fmt.Println("Recompute queued behind a running pass.")
		return nil
	}
	fmt.Printf("Scheduled %d notifications (cancelled %d, failed %d).\n",
		len(res.Scheduled), len(res.Cancelled), len(res.Failed))
	return nil
}

// PermissionExit maps a denied permission to its own exit code.
func PermissionExit(err error) error {
	if err != nil && stderrors.Is(err, scheduler.ErrPermissionDenied) {
		return errors.WithCode(err, errors.ExitPermission)
	}
	return err
}

func printPlan(plan scheduler.Plan, ctx *cli.Context) {
	status := "not at risk"
	if plan.CompletedToday {
		status = "completed today"
	} else if plan.StreakAtRisk {
		status = "at risk"
	}
	fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("Plan for %s (streak %s)", plan.Today, status)))
	fmt.Print(ui.NotificationTable(plan.Notifications, ctx.Calendar.Location()))
	if plan.SkippedPast > 0 || plan.SkippedBudget > 0 {
		fmt.Println(ui.MutedStyle.Render(fmt.Sprintf("Skipped: %d already past, %d over budget", plan.SkippedPast, plan.SkippedBudget)))
	}
}
