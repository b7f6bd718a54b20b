// Package system holds setup, diagnostics and daemon commands.
package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/versecue/internal/backup"
	"github.com/julianstephens/versecue/internal/cli"
	"github.com/julianstephens/versecue/internal/constants"
	"github.com/julianstephens/versecue/internal/models"
	"github.com/julianstephens/versecue/internal/storage"
)

type InitCmd struct {
	Force    bool `help:"Delete an existing database file before initialization."`
	NoBackup bool `help:"Skip the snapshot taken before --force deletes the database." name:"no-backup"`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			if !c.NoBackup {
				path, err := backup.NewManager(dbPath).CreateBackup()
				if err != nil {
					return err
				}
				fmt.Printf("Backed up existing database to: %s\n", path)
			}
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}

	if _, err := ctx.Store.Get(constants.KeyNotificationSettings); errors.Is(err, storage.ErrNotFound) {
		if err := ctx.Repo.SaveSettings(models.DefaultNotificationSettings()); err != nil {
			return fmt.Errorf("failed to write default settings: %w", err)
		}
	} else if err != nil {
		return err
	}

	fmt.Printf("Initialized versecue storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
