package scheduler

import "github.com/julianstephens/versecue/internal/constants"

// Budget tracks slot usage for one recompute pass. It is discarded afterwards.
type Budget struct {
	today        string
	streakAtRisk bool
	perDay       map[string]int
	total        int
}

func NewBudget(today string, streakAtRisk bool) *Budget {
	return &Budget{
		today:        today,
		streakAtRisk: streakAtRisk,
		perDay:       make(map[string]int),
	}
}

// Cap is the most notifications date may hold.
func (b *Budget) Cap(date string) int {
	if date == b.today && b.streakAtRisk {
		return constants.MaxNotificationsPerDayAtRisk
	}
	return constants.MaxNotificationsPerDay
}

// TryPlace reserves a slot on date if both the day and the week have room.
func (b *Budget) TryPlace(date string) bool {
	if b.total >= constants.MaxNotificationsPerWeek {
		return false
	}
	if b.perDay[date] >= b.Cap(date) {
		return false
	}
	b.perDay[date]++
	b.total++
	return true
}

func (b *Budget) Count(date string) int { return b.perDay[date] }

func (b *Budget) Total() int { return b.total }

// Exhausted reports whether the weekly total is used up.
func (b *Budget) Exhausted() bool {
	return b.total >= constants.MaxNotificationsPerWeek
}
