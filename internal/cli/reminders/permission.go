package reminders

import (
	"context"
	"fmt"

	"github.com/julianstephens/versecue/internal/cli"
	"github.com/julianstephens/versecue/internal/logger"
	"github.com/julianstephens/versecue/internal/ui"
)

// PermissionGrantCmd allows delivery and refills the schedule.
type PermissionGrantCmd struct{}

func (c *PermissionGrantCmd) Run(ctx *cli.Context) error {
	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := ctx.Local.SetPermission(true); err != nil {
		return err
	}
	fmt.Println(ui.OKStyle.Render("Notification permission granted."))

	streak, err := ctx.CurrentStreak()
	if err != nil {
		return err
	}
	if _, err := ctx.Runner.Trigger(context.Background(), streak); err != nil {
		return err
	}
	return nil
}

// PermissionDenyCmd blocks future passes. Queued notifications stay until
// the next grant replaces them.
type PermissionDenyCmd struct{}

func (c *PermissionDenyCmd) Run(ctx *cli.Context) error {
	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := ctx.Local.SetPermission(false); err != nil {
		return err
	}
	logger.Info("Notification permission revoked")
	fmt.Println(ui.WarningStyle.Render("Notification permission denied."))
	return nil
}

type PermissionStatusCmd struct{}

func (c *PermissionStatusCmd) Run(ctx *cli.Context) error {
	granted, err := ctx.Local.RequestPermission(context.Background())
	if err != nil {
		return err
	}
	if granted {
		fmt.Println(ui.OKStyle.Render("granted"))
	} else {
		fmt.Println(ui.DangerStyle.Render("denied"))
	}
	return nil
}
