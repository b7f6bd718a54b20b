package system

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/versecue/internal/cli"
	"github.com/julianstephens/versecue/internal/logger"
	"github.com/julianstephens/versecue/internal/notifier"
	"github.com/julianstephens/versecue/internal/ui"
)

// newDeliverer prefers the tray app and falls back to stdout.
var newDeliverer = func(ctx *cli.Context) notifier.Deliverer {
	if _, _, err := notifier.LocateTray(); err == nil {
		return notifier.NewTrayDeliverer()
	}
	logger.Debug("Tray not running, printing notifications")
	return notifier.NewWriterDeliverer(os.Stdout, ctx.Calendar.Location())
}

// DispatchCmd delivers the notifications that are due. The serve command
// runs it on a timer; it can also be wired to an external scheduler.
type DispatchCmd struct {
	DryRun bool `help:"Show due notifications without delivering them."`
}

func (c *DispatchCmd) Run(ctx *cli.Context) error {
	if c.DryRun {
		pending, err := ctx.Local.Pending(context.Background())
		if err != nil {
			return err
		}
		now := ctx.Now()
		due := 0
		for _, n := range pending {
			if n.FireAt.After(now) {
				break
			}
			fmt.Println(ui.Card(n, ctx.Calendar.Location()))
			due++
		}
		if due == 0 {
			fmt.Println(ui.MutedStyle.Render("Nothing due."))
		}
		return nil
	}

	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	report, err := dispatchDue(context.Background(), ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Delivered %d, expired %d, failed %d.\n", report.Delivered, report.Expired, report.Failed)
	return nil
}

func dispatchDue(c context.Context, ctx *cli.Context) (notifier.DispatchReport, error) {
	return ctx.Local.Dispatch(c, ctx.Now(), newDeliverer(ctx))
}
