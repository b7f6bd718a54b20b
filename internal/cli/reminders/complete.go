package reminders

import (
	"context"
	"fmt"

	"github.com/julianstephens/versecue/internal/cli"
	"github.com/julianstephens/versecue/internal/scheduler"
)

type CompleteCmd struct {
	Streak int `help:"Streak length including today's completion." required:""`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	if c.Streak < 0 {
		return fmt.Errorf("streak must be >= 0, got %d", c.Streak)
	}

	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := ctx.Runner.Complete(context.Background(), c.Streak); err != nil {
		return PermissionExit(err)
	}

	fmt.Printf("Completion recorded for %s.\n", ctx.Calendar.Today(ctx.Now()))
	if scheduler.IsMilestone(c.Streak) {
		fmt.Printf("%d-day milestone reached.\n", c.Streak)
	}
	return nil
}
