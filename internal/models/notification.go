package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/versecue/internal/constants"
)

// Category tags what a notification is for.
type Category string

// Channel is the platform-level grouping a notification is presented under.
type Channel string

const (
	CategoryDailyReminder     Category = "dailyReminder"
	CategoryMiddayNudge       Category = "middayNudge"
	CategoryEveningReflection Category = "eveningReflection"
	CategoryStreakWarn4h      Category = "streakWarn4h"
	CategoryStreakWarn1h      Category = "streakWarn1h"
	CategoryStreakFinal       Category = "streakFinal"
	CategoryMilestone         Category = "milestone"
	CategoryReengage2d        Category = "reengage2d"
	CategoryReengage5d        Category = "reengage5d"
	CategoryReengageWeekly    Category = "reengageWeekly"

	ChannelRoutine      Channel = "routine"
	ChannelStreak       Channel = "streak"
	ChannelReengagement Channel = "reengagement"
)

// AllCategories lists every category in scheduling priority order.
var AllCategories = []Category{
	CategoryDailyReminder,
	CategoryMiddayNudge,
	CategoryEveningReflection,
	CategoryStreakWarn4h,
	CategoryStreakWarn1h,
	CategoryStreakFinal,
	CategoryMilestone,
	CategoryReengage2d,
	CategoryReengage5d,
	CategoryReengageWeekly,
}

// AllChannels lists the delivery channels.
var AllChannels = []Channel{ChannelRoutine, ChannelStreak, ChannelReengagement}

func ParseCategory(s string) (Category, error) {
	for _, c := range AllCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown notification category %q", s)
}

func (c Category) Channel() Channel {
	switch c {
	case CategoryStreakWarn4h, CategoryStreakWarn1h, CategoryStreakFinal:
		return ChannelStreak
	case CategoryReengage2d, CategoryReengage5d, CategoryReengageWeekly:
		return ChannelReengagement
	default:
		return ChannelRoutine
	}
}

// SameDaySensitive reports whether a completion makes today's instance moot.
func (c Category) SameDaySensitive() bool {
	switch c {
	case CategoryMiddayNudge, CategoryEveningReflection,
		CategoryStreakWarn4h, CategoryStreakWarn1h, CategoryStreakFinal,
		CategoryReengage2d, CategoryReengage5d, CategoryReengageWeekly:
		return true
	}
	return false
}

func (c Category) IsReengagement() bool {
	return c.Channel() == ChannelReengagement
}

// EngineOwned reports whether the recompute pass owns (and may cancel)
// notifications of this category. Milestones are fire-and-forget.
func (c Category) EngineOwned() bool {
	return c != CategoryMilestone
}

// ScheduledNotification is one local notification handed to the platform scheduler.
type ScheduledNotification struct {
	ID       string    `json:"id"`
	Category Category  `json:"category"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	FireAt   time.Time `json:"fire_at"`
	Channel  Channel   `json:"channel"`
}

// NotificationID builds the deterministic identifier
// <category>-<YYYY-MM-DD>[-<disambiguator>].
func NotificationID(category Category, date, disambiguator string) string {
	id := string(category) + "-" + date
	if disambiguator != "" {
		id += "-" + disambiguator
	}
	return id
}

// NotificationKey is a parsed identifier.
type NotificationKey struct {
	Category      Category
	Date          string
	Disambiguator string
}

// ParseNotificationID reverses NotificationID. Identifiers created by other
// apps or older releases fail to parse.
func ParseNotificationID(id string) (NotificationKey, error) {
	catPart, rest, ok := strings.Cut(id, "-")
	if !ok {
		return NotificationKey{}, fmt.Errorf("malformed notification id %q", id)
	}
	category, err := ParseCategory(catPart)
	if err != nil {
		return NotificationKey{}, err
	}

	dateLen := len(constants.DateFormat)
	if len(rest) < dateLen {
		return NotificationKey{}, fmt.Errorf("malformed notification id %q: missing date", id)
	}
	date := rest[:dateLen]
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return NotificationKey{}, fmt.Errorf("malformed notification id %q: %w", id, err)
	}

	key := NotificationKey{Category: category, Date: date}
	if tail := rest[dateLen:]; tail != "" {
		if !strings.HasPrefix(tail, "-") || len(tail) == 1 {
			return NotificationKey{}, fmt.Errorf("malformed notification id %q: bad suffix", id)
		}
		key.Disambiguator = tail[1:]
	}
	return key, nil
}
