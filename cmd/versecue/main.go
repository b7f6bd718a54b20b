package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/versecue/internal/cli"
	"github.com/julianstephens/versecue/internal/cli/reminders"
	"github.com/julianstephens/versecue/internal/cli/settings"
	"github.com/julianstephens/versecue/internal/cli/system"
	"github.com/julianstephens/versecue/internal/config"
	"github.com/julianstephens/versecue/internal/constants"
	"github.com/julianstephens/versecue/internal/errors"
	"github.com/julianstephens/versecue/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." default:"${config_file}" env:"VERSECUE_CONFIG"`
	Database string `help:"SQLite path, *.json file, PostgreSQL connection string, or 'keyring'. Overrides the config file. PostgreSQL credentials must NOT be embedded; use the OS keyring or .pgpass."`
	Debug    bool   `help:"Log debug output to stderr."`

	Init      system.InitCmd         `cmd:"" help:"Initialize versecue storage."`
	Recompute reminders.RecomputeCmd `cmd:"" help:"Rebuild the notification schedule."`
	Complete  reminders.CompleteCmd  `cmd:"" help:"Record today's completion."`
	List      reminders.ListCmd      `cmd:"" help:"List pending notifications." default:"1"`
	Settings  struct {
		Show  settings.ShowCmd  `cmd:"" help:"Show notification settings." default:"1"`
		Set   settings.SetCmd   `cmd:"" help:"Change one setting."`
		Reset settings.ResetCmd `cmd:"" help:"Restore the default settings."`
	} `cmd:"" help:"Manage notification settings."`
	Permission struct {
		Grant  reminders.PermissionGrantCmd  `cmd:"" help:"Allow notifications."`
		Deny   reminders.PermissionDenyCmd   `cmd:"" help:"Block notifications."`
		Status reminders.PermissionStatusCmd `cmd:"" help:"Show the permission state." default:"1"`
	} `cmd:"" help:"Manage notification permission."`
	Dispatch system.DispatchCmd `cmd:"" hidden:"" help:"Deliver due notifications once (used internally)."`
	Serve    system.ServeCmd    `cmd:"" help:"Run the dispatcher and nightly recompute."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Keyring  struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
	} `cmd:"" help:"Manage the database connection string in the OS keyring."`
}

func main() {
	if err := config.LoadEnvFiles(".env"); err != nil {
		fmt.Fprintln(os.Stderr, errors.Format(err))
		os.Exit(errors.ExitFailure)
	}

	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Local reminder scheduling for a daily reading habit"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": constants.DefaultConfigFile,
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Format(err))
		os.Exit(errors.ExitFailure)
	}
	if CLI.Database != "" {
		cfg.Database = CLI.Database
	}
	if CLI.Debug {
		cfg.Log.Debug = true
	}

	stateDir, err := cfg.ResolvedStateDir()
	if err != nil {
		errors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: cfg.Log.Debug, StateDir: stateDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	command := kctx.Command()
	if strings.HasPrefix(command, "keyring") {
		errors.Fatal(kctx.Run(&cli.Context{Config: cfg, ConfigPath: CLI.Config}))
		return
	}

	store, err := cli.OpenStore(cfg.Database)
	if err != nil {
		errors.Fatal(err)
	}

	appCtx, err := cli.NewContext(cfg, store)
	if err != nil {
		errors.Fatal(err)
	}
	appCtx.ConfigPath = CLI.Config

	if !strings.HasPrefix(command, "init") {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	err = kctx.Run(appCtx)
	if cerr := store.Close(); cerr != nil {
		logger.Warn("Failed to close storage", "error", cerr)
	}
	errors.Fatal(err)
}
