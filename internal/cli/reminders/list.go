package reminders

import (
	"context"
	"fmt"

	"github.com/julianstephens/versecue/internal/cli"
	"github.com/julianstephens/versecue/internal/ui"
)

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	pending, err := ctx.Local.Pending(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list notifications: %w", err)
	}
	fmt.Print(ui.NotificationTable(pending, ctx.Calendar.Location()))
	return nil
}
