// Package settings edits the notification preferences.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/versecue/internal/cli"
	"github.com/julianstephens/versecue/internal/logger"
	"github.com/julianstephens/versecue/internal/models"
	"github.com/julianstephens/versecue/internal/scheduler"
	"github.com/julianstephens/versecue/internal/ui"
)

type ShowCmd struct{}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Repo.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	fmt.Println(ui.HeaderStyle.Render("Notification Settings"))
	fmt.Print(ui.KeyValues(models.SettingKeys(), models.SettingsToMap(settings)))
	return nil
}

type SetCmd struct {
	Key   string `arg:"" help:"Setting name, for example daily_reminder_time."`
	Value string `arg:"" help:"New value."`
}

func (c *SetCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Repo.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := models.ApplySetting(&settings, c.Key, c.Value); err != nil {
		return err
	}
	return save(ctx, settings)
}

type ResetCmd struct{}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	return save(ctx, models.DefaultNotificationSettings())
}

// save persists settings and refreshes the schedule with the current streak.
func save(ctx *cli.Context, settings models.NotificationSettings) error {
	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := ctx.Repo.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")

	streak, err := ctx.CurrentStreak()
	if err != nil {
		return err
	}
	if _, err := ctx.Runner.Trigger(context.Background(), streak); err != nil {
		if errors.Is(err, scheduler.ErrPermissionDenied) {
			logger.Info("Settings saved without rescheduling: permission denied")
			fmt.Println(ui.WarningStyle.Render("Notification permission is denied; the schedule was not refreshed."))
			return nil
		}
		return err
	}
	return nil
}
