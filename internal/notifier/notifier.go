// Package notifier is the boundary between the scheduling engine and
// whatever actually shows a notification to the user.
package notifier

import (
	"context"
	"errors"

	"github.com/julianstephens/versecue/internal/models"
)

// ErrNotScheduled is returned by Cancel for an identifier the scheduler does
// not hold. Callers treat it as a no-op.
var ErrNotScheduled = errors.New("notification not scheduled")

// Scheduler is the platform notification scheduler the engine drives.
type Scheduler interface {
	RequestPermission(ctx context.Context) (bool, error)
	// Schedule queues n and returns the identifier the platform accepted.
	Schedule(ctx context.Context, n models.ScheduledNotification) (string, error)
	Cancel(ctx context.Context, id string) error
	ListScheduled(ctx context.Context) ([]string, error)
}

// Deliverer presents one notification to the user right now.
type Deliverer interface {
	Deliver(ctx context.Context, n models.ScheduledNotification) error
}

// ChannelDefinition describes one delivery channel to the platform.
type ChannelDefinition struct {
	ID          models.Channel `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Importance  string         `json:"importance"`
}

// ChannelConfigurer is implemented by schedulers that need channels
// registered before the first notification is scheduled.
type ChannelConfigurer interface {
	ConfigureChannels(ctx context.Context, channels []ChannelDefinition) error
}

// DefaultChannels returns the three channels in display order.
func DefaultChannels() []ChannelDefinition {
	return []ChannelDefinition{
		{
			ID:          models.ChannelRoutine,
			Name:        "Daily reminders",
			Description: "Morning verse, midday nudges, evening reflection and milestones",
			Importance:  "default",
		},
		{
			ID:          models.ChannelStreak,
			Name:        "Streak alerts",
			Description: "Warnings before your streak expires",
			Importance:  "high",
		},
		{
			ID:          models.ChannelReengagement,
			Name:        "Come back reminders",
			Description: "Occasional reminders after a few days away",
			Importance:  "low",
		},
	}
}
