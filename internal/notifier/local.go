package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/julianstephens/versecue/internal/constants"
	"github.com/julianstephens/versecue/internal/logger"
	"github.com/julianstephens/versecue/internal/models"
	"github.com/julianstephens/versecue/internal/storage"
)

// LocalScheduler keeps pending notifications in the key-value store and
// hands them to a Deliverer when Dispatch finds them due.
type LocalScheduler struct {
	store   storage.Provider
	limiter *rate.Limiter
	grace   time.Duration
}

type LocalOption func(*LocalScheduler)

// WithRateLimit bounds how fast Dispatch delivers a backlog.
func WithRateLimit(perSecond float64, burst int) LocalOption {
	return func(s *LocalScheduler) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithGracePeriod sets how late a notification may be delivered before it is dropped.
func WithGracePeriod(d time.Duration) LocalOption {
	return func(s *LocalScheduler) {
		s.grace = d
	}
}

func NewLocalScheduler(store storage.Provider, opts ...LocalOption) *LocalScheduler {
	s := &LocalScheduler{
		store:   store,
		limiter: rate.NewLimiter(rate.Limit(constants.DefaultDispatchRate), constants.DefaultDispatchBurst),
		grace:   constants.DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func pendingKey(id string) string {
	return constants.PendingNotificationPrefix + id
}

// RequestPermission reports granted unless permission was explicitly denied.
func (s *LocalScheduler) RequestPermission(ctx context.Context) (bool, error) {
	v, err := s.store.Get(constants.KeyNotificationPermission)
	if errors.Is(err, storage.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read notification permission: %w", err)
	}
	return v != constants.PermissionDenied, nil
}

// SetPermission records the user's answer to the permission prompt.
func (s *LocalScheduler) SetPermission(granted bool) error {
	v := constants.PermissionDenied
	if granted {
		v = constants.PermissionGranted
	}
	return s.store.Set(constants.KeyNotificationPermission, v)
}

func (s *LocalScheduler) Schedule(ctx context.Context, n models.ScheduledNotification) (string, error) {
	if n.ID == "" {
		return "", errors.New("notification has no identifier")
	}
	if n.FireAt.IsZero() {
		return "", fmt.Errorf("notification %s has no fire time", n.ID)
	}
	if n.Channel == "" {
		n.Channel = n.Category.Channel()
	}
	n.FireAt = n.FireAt.UTC()

	data, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("failed to serialize notification %s: %w", n.ID, err)
	}
	if err := s.store.Set(pendingKey(n.ID), string(data)); err != nil {
		return "", err
	}
	return n.ID, nil
}

func (s *LocalScheduler) Cancel(ctx context.Context, id string) error {
	if _, err := s.store.Get(pendingKey(id)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotScheduled
		}
		return err
	}
	return s.store.Delete(pendingKey(id))
}

func (s *LocalScheduler) ListScheduled(ctx context.Context) ([]string, error) {
	entries, err := s.store.List(constants.PendingNotificationPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for k := range entries {
		ids = append(ids, strings.TrimPrefix(k, constants.PendingNotificationPrefix))
	}
	sort.Strings(ids)
	return ids, nil
}

// Pending returns every queued notification ordered by fire time. Entries
// that fail to decode are logged and skipped.
func (s *LocalScheduler) Pending(ctx context.Context) ([]models.ScheduledNotification, error) {
	entries, err := s.store.List(constants.PendingNotificationPrefix)
	if err != nil {
		return nil, err
	}

	out := make([]models.ScheduledNotification, 0, len(entries))
	for k, v := range entries {
		var n models.ScheduledNotification
		if err := json.Unmarshal([]byte(v), &n); err != nil {
			logger.Warn("Skipping unreadable pending notification", "key", k, "error", err)
			continue
		}
		out = append(out, n)
	}
	sortByFireAt(out)
	return out, nil
}

func sortByFireAt(ns []models.ScheduledNotification) {
	sort.Slice(ns, func(i, j int) bool {
		if !ns[i].FireAt.Equal(ns[j].FireAt) {
			return ns[i].FireAt.Before(ns[j].FireAt)
		}
		return ns[i].ID < ns[j].ID
	})
}

func (s *LocalScheduler) ConfigureChannels(ctx context.Context, channels []ChannelDefinition) error {
	for _, ch := range channels {
		data, err := json.Marshal(ch)
		if err != nil {
			return err
		}
		if err := s.store.Set(constants.ChannelPrefix+string(ch.ID), string(data)); err != nil {
			return fmt.Errorf("failed to register channel %s: %w", ch.ID, err)
		}
	}
	return nil
}

// DispatchReport summarizes one Dispatch call.
type DispatchReport struct {
	Delivered int
	Expired   int
	Failed    int
}

// Dispatch delivers every notification due at now, oldest first. Entries
// later than the grace period are dropped undelivered. Failed deliveries stay
// queued for the next call.
func (s *LocalScheduler) Dispatch(ctx context.Context, now time.Time, d Deliverer) (DispatchReport, error) {
	var report DispatchReport

	pending, err := s.Pending(ctx)
	if err != nil {
		return report, err
	}

	for _, n := range pending {
		if n.FireAt.After(now) {
			break
		}

		if late := now.Sub(n.FireAt); late > s.grace {
			logger.Info("Dropping expired notification", "id", n.ID, "late", late.Round(time.Second))
			if err := s.store.Delete(pendingKey(n.ID)); err != nil {
				return report, err
			}
			report.Expired++
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return report, err
		}

		if err := d.Deliver(ctx, n); err != nil {
			logger.Warn("Notification delivery failed", "id", n.ID, "error", err)
			report.Failed++
			continue
		}
		if err := s.store.Delete(pendingKey(n.ID)); err != nil {
			return report, err
		}
		logger.Debug("Notification delivered", "id", n.ID, "channel", n.Channel)
		report.Delivered++
	}

	return report, nil
}
