package notifier

import (
	"context"
	"sync"

	"github.com/julianstephens/versecue/internal/logger"
)

// Initializer registers delivery channels at most once.
type Initializer struct {
	once sync.Once
	err  error
}

var defaultInitializer Initializer

// EnsureInitialized configures channels on s the first time it is called and
// returns the outcome of that first attempt on every later call.
func (i *Initializer) EnsureInitialized(ctx context.Context, s Scheduler) error {
	i.once.Do(func() {
		cc, ok := s.(ChannelConfigurer)
		if !ok {
			return
		}
		i.err = cc.ConfigureChannels(ctx, DefaultChannels())
		if i.err != nil {
			logger.Warn("Failed to configure notification channels", "error", i.err)
			return
		}
		logger.Debug("Notification channels configured", "count", len(DefaultChannels()))
	})
	return i.err
}

// EnsureInitialized uses the process-wide Initializer.
func EnsureInitialized(ctx context.Context, s Scheduler) error {
	return defaultInitializer.EnsureInitialized(ctx, s)
}
