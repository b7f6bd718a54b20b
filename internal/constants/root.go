package constants

import "time"

const (
	AppName            = "versecue"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/versecue"
	DefaultConfigFile  = "~/.config/versecue/config.yaml"
	DefaultDBPath      = "~/.config/versecue/versecue.db"
	Version            = "v0.3.0"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "versecue-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.versecue"
	TrayExecutablePrefix   = "versecue-tray"

	// Dispatch defaults for the local notification queue
	DefaultDispatchInterval = time.Minute
	DefaultDispatchRate     = 1.0
	DefaultDispatchBurst    = 3
	DefaultGracePeriod      = 30 * time.Minute

	// NightlyRecomputeSpec rolls the horizon forward just after midnight.
	NightlyRecomputeSpec = "5 0 * * *"

	// State lock
	StateLockFileName = "versecue.lock"
	ServeLockFileName = "serve.lock"
)
