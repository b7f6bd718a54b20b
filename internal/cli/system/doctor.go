package system

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/julianstephens/versecue/internal/calendar"
	"github.com/julianstephens/versecue/internal/cli"
	"github.com/julianstephens/versecue/internal/constants"
	"github.com/julianstephens/versecue/internal/keyring"
	"github.com/julianstephens/versecue/internal/migration"
	"github.com/julianstephens/versecue/internal/notifier"
	"github.com/julianstephens/versecue/internal/storage/sqlite"
	"github.com/julianstephens/versecue/migrations"
)

type DoctorCmd struct{}

type check struct {
	name string
	// warnOnly checks never fail the command.
	warnOnly bool
	// needsStore checks are skipped when a gatesStore check fails.
	needsStore bool
	gatesStore bool
	fn         func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Storage reachable", gatesStore: true, fn: checkStoreReachable},
	{name: "Schema version", needsStore: true, fn: checkSchemaVersion},
	{name: "Settings valid", needsStore: true, fn: checkSettings},
	{name: "Probe range", fn: checkProbeRange},
	{name: "Timezone round-trip", warnOnly: true, needsStore: true, fn: checkTimezoneRoundTrip},
	{name: "Tray reachable", warnOnly: true, fn: checkTray},
	{name: "Keyring available", warnOnly: true, fn: checkKeyring},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	failed := 0
	storeOK := true
	for _, c := range checks {
		if c.needsStore && !storeOK {
			fmt.Printf("⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}
		err := c.fn(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			failed++
			if c.gatesStore {
				storeOK = false
			}
		}
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if ctx.Store == nil {
		return errors.New("no storage configured")
	}
	_, err := ctx.Store.List(constants.PendingNotificationPrefix)
	return err
}

func checkSchemaVersion(ctx *cli.Context) error {
	s, ok := ctx.Store.(*sqlite.Store)
	if !ok || s.GetDB() == nil {
		// Other backends validate their schema on Load.
		return nil
	}
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return err
	}
	runner := migration.NewRunner(s.GetDB(), sub)
	if err := runner.ValidateVersion(); err != nil {
		return err
	}
	current, err := runner.GetCurrentVersion()
	if err != nil {
		return err
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("schema version %d is behind %d; run versecue init", current, latest)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Repo.LoadSettings()
	if err != nil {
		return err
	}
	return settings.Validate()
}

func checkProbeRange(ctx *cli.Context) error {
	return ctx.Calendar.Probe().Validate()
}

// checkTimezoneRoundTrip resolves every slot time over the horizon and
// checks that it formats back to the same local date and wall time.
func checkTimezoneRoundTrip(ctx *cli.Context) error {
	today := ctx.Calendar.Today(ctx.Now())
	settings, err := ctx.Repo.LoadSettings()
	if err != nil {
		return err
	}
	times := []struct{ h, m int }{
		{settings.DailyReminderTime.Hour, settings.DailyReminderTime.Minute},
		{settings.EveningReflectionTime.Hour, settings.EveningReflectionTime.Minute},
		{settings.StreakExpiryTime.Hour, settings.StreakExpiryTime.Minute},
		{constants.ReengageHour, constants.ReengageMinute},
	}

	var errs []error
	for offset := 0; offset < constants.HorizonDays; offset++ {
		date, err := calendar.AddDays(today, offset)
		if err != nil {
			return err
		}
		for _, tm := range times {
			res, err := ctx.Calendar.DateAtResolution(date, tm.h, tm.m)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if res.Degraded {
				errs = append(errs, fmt.Errorf("%s %02d:%02d does not exist in %s", date, tm.h, tm.m, ctx.Calendar.Location()))
			}
		}
	}
	return errors.Join(errs...)
}

func checkTray(ctx *cli.Context) error {
	_, _, err := notifier.LocateTray()
	if err != nil {
		return fmt.Errorf("%v; notifications will be printed by dispatch instead", err)
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}
