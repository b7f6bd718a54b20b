package notifier

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/julianstephens/versecue/internal/models"
)

// Memory is an in-process Scheduler used by dry runs and tests.
type Memory struct {
	mu        sync.Mutex
	denied    bool
	failIDs   map[string]error
	pending   map[string]models.ScheduledNotification
	channels  []ChannelDefinition
	scheduled []string
	cancelled []string
}

func NewMemory() *Memory {
	return &Memory{
		failIDs: make(map[string]error),
		pending: make(map[string]models.ScheduledNotification),
	}
}

// SetPermission toggles the answer returned by RequestPermission.
func (m *Memory) SetPermission(granted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied = !granted
}

// FailSchedule makes Schedule fail for id with err.
func (m *Memory) FailSchedule(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failIDs[id] = err
}

func (m *Memory) RequestPermission(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.denied, nil
}

func (m *Memory) Schedule(ctx context.Context, n models.ScheduledNotification) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failIDs[n.ID]; ok {
		return "", fmt.Errorf("schedule %s: %w", n.ID, err)
	}
	m.pending[n.ID] = n
	m.scheduled = append(m.scheduled, n.ID)
	return n.ID, nil
}

func (m *Memory) Cancel(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, id)
	if _, ok := m.pending[id]; !ok {
		return ErrNotScheduled
	}
	delete(m.pending, id)
	return nil
}

func (m *Memory) ListScheduled(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.pending))
	for id := range m.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) ConfigureChannels(ctx context.Context, channels []ChannelDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = append([]ChannelDefinition(nil), channels...)
	return nil
}

// Pending returns the queued notifications ordered by fire time.
func (m *Memory) Pending() []models.ScheduledNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ScheduledNotification, 0, len(m.pending))
	for _, n := range m.pending {
		out = append(out, n)
	}
	sortByFireAt(out)
	return out
}

// Get returns the queued notification with id.
func (m *Memory) Get(id string) (models.ScheduledNotification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.pending[id]
	return n, ok
}

// Put queues n directly, bypassing failure injection.
func (m *Memory) Put(n models.ScheduledNotification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[n.ID] = n
}

// Channels returns the channels registered through ConfigureChannels.
func (m *Memory) Channels() []ChannelDefinition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ChannelDefinition(nil), m.channels...)
}

// ScheduleCalls returns every identifier passed to a successful Schedule, in order.
func (m *Memory) ScheduleCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.scheduled...)
}

// CancelCalls returns every identifier passed to Cancel, in order.
func (m *Memory) CancelCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.cancelled...)
}

// ResetCalls clears the recorded Schedule and Cancel calls.
func (m *Memory) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled = nil
	m.cancelled = nil
}
