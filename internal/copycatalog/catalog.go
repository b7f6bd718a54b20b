// Package copycatalog maps a notification category and tone to its title and
// body text. Choices are seeded so the same inputs always yield the same copy.
package copycatalog

import (
	"fmt"

	"github.com/julianstephens/versecue/internal/models"
	"github.com/julianstephens/versecue/internal/selector"
)

// Copy is the user-facing text of one notification.
type Copy struct {
	Title string
	Body  string
}

// Template renders one copy variant. Categories without a dynamic value
// ignore streak.
type Template func(streak int) Copy

func fixed(title, body string) Template {
	return func(int) Copy { return Copy{Title: title, Body: body} }
}

type buckets map[models.Tone][]Template

// Catalog resolves copy through its own selector so the configured hash
// decides which variant is shown.
type Catalog struct {
	sel     selector.Selector
	entries map[models.Category]buckets
}

// New returns a catalog with the built-in copy.
func New(sel selector.Selector) *Catalog {
	return &Catalog{sel: sel, entries: builtin}
}

// Default uses the default selector.
var Default = New(selector.Default)

// TextFor returns the copy for category and tone, chosen by seed. An unknown
// tone uses the default tone's bucket.
func (c *Catalog) TextFor(category models.Category, tone models.Tone, seed string, streak int) Copy {
	byTone, ok := c.entries[category]
	if !ok {
		return Copy{Title: "Versecue", Body: "Take a moment with today's verse."}
	}
	bucket := byTone[tone]
	if len(bucket) == 0 {
		bucket = byTone[models.DefaultTone]
	}
	return bucket[c.sel.Index(seed, len(bucket))](streak)
}

// TextFor resolves copy through the Default catalog.
func TextFor(category models.Category, tone models.Tone, seed string, streak int) Copy {
	return Default.TextFor(category, tone, seed, streak)
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

var builtin = map[models.Category]buckets{
	models.CategoryDailyReminder: {
		models.ToneGentle: {
			fixed("Your verse is waiting", "A few quiet minutes with today's verse can set the tone for your day."),
			fixed("A moment of stillness", "Today's reading is ready whenever you are."),
			fixed("Good morning", "Pause, breathe, and open today's verse."),
		},
		models.ToneEncouraging: {
			fixed("New day, new verse!", "Today's guidance is ready. You've got this!"),
			fixed("Start strong today", "Open today's verse and carry it with you."),
			fixed("Ready when you are", "A fresh word for a fresh day is waiting."),
		},
		models.ToneDirect: {
			fixed("Today's verse", "Your daily reading is ready."),
			fixed("Daily reading", "Take five minutes for today's verse."),
		},
	},
	models.CategoryMiddayNudge: {
		models.ToneGentle: {
			fixed("A midday pause", "If the morning got away from you, today's verse is still here."),
			fixed("Take a breath", "A short reading can reset the rest of your day."),
		},
		models.ToneEncouraging: {
			fixed("Halfway there!", "Recharge with today's verse before the afternoon rush."),
			fixed("Midday boost", "A quick reading now keeps the day on track."),
		},
		models.ToneDirect: {
			fixed("Still open", "You haven't read today's verse yet."),
			fixed("Reminder", "Today's reading takes five minutes."),
		},
	},
	models.CategoryEveningReflection: {
		models.ToneGentle: {
			fixed("Evening reflection", "Before the day ends, sit with today's verse for a moment."),
			fixed("Wind down", "Let today's reading be the last quiet thing you do tonight."),
		},
		models.ToneEncouraging: {
			fixed("Finish the day well", "Close out today with a verse and a short reflection."),
			fixed("One more good thing", "End today on a hopeful note with your reading."),
		},
		models.ToneDirect: {
			fixed("Evening reading", "Today's verse is still unread."),
			fixed("Reflect tonight", "Open today's reading before bed."),
		},
	},
	models.CategoryStreakWarn4h: {
		models.ToneGentle: {
			fixed("Your streak is still open", "There's plenty of time left to keep your streak going today."),
		},
		models.ToneEncouraging: {
			fixed("Keep it going!", "A few hours left to extend your streak. You can do it!"),
		},
		models.ToneDirect: {
			fixed("Streak ends in 4 hours", "Read today's verse to keep your streak."),
		},
	},
	models.CategoryStreakWarn1h: {
		models.ToneGentle: {
			fixed("One hour left", "Your streak is waiting for you. Today's verse only takes a moment."),
		},
		models.ToneEncouraging: {
			fixed("Almost out of time!", "One hour to protect your streak. Let's finish strong!"),
		},
		models.ToneDirect: {
			fixed("Streak ends in 1 hour", "Complete today's reading now."),
		},
	},
	models.CategoryStreakFinal: {
		models.ToneGentle: {
			func(streak int) Copy {
				return Copy{
					Title: "Don't let it slip away",
					Body:  fmt.Sprintf("Your %s streak ends in 15 minutes. There's still time.", days(streak)),
				}
			},
			func(streak int) Copy {
				return Copy{
					Title: "Just a few minutes left",
					Body:  fmt.Sprintf("%s of faithfulness. Take a moment to keep it going.", days(streak)),
				}
			},
		},
		models.ToneEncouraging: {
			func(streak int) Copy {
				return Copy{
					Title: "Final call!",
					Body:  fmt.Sprintf("Save your %s streak! 15 minutes left.", days(streak)),
				}
			},
		},
		models.ToneDirect: {
			func(streak int) Copy {
				return Copy{
					Title: "15 minutes left",
					Body:  fmt.Sprintf("Your %s streak resets at expiry.", days(streak)),
				}
			},
		},
	},
	models.CategoryMilestone: {
		models.ToneGentle: {
			func(streak int) Copy {
				return Copy{
					Title: fmt.Sprintf("%s in a row", days(streak)),
					Body:  "Small, steady steps. Well done.",
				}
			},
		},
		models.ToneEncouraging: {
			func(streak int) Copy {
				return Copy{
					Title: fmt.Sprintf("%s streak!", days(streak)),
					Body:  fmt.Sprintf("You've shown up %s straight. Amazing!", days(streak)),
				}
			},
			func(streak int) Copy {
				return Copy{
					Title: "Milestone reached!",
					Body:  fmt.Sprintf("%s of daily reading. Keep shining!", days(streak)),
				}
			},
		},
		models.ToneDirect: {
			func(streak int) Copy {
				return Copy{
					Title: "Milestone",
					Body:  fmt.Sprintf("Streak: %s.", days(streak)),
				}
			},
		},
	},
	models.CategoryReengage2d: {
		models.ToneGentle: {
			fixed("We saved your place", "Whenever you're ready, today's verse is here for you."),
		},
		models.ToneEncouraging: {
			fixed("Come back today!", "A new verse is ready. Let's pick up where you left off."),
		},
		models.ToneDirect: {
			fixed("It's been 2 days", "Open today's verse to get back on track."),
		},
	},
	models.CategoryReengage5d: {
		models.ToneGentle: {
			fixed("Thinking of you", "It's been a few days. A single verse is a good place to restart."),
		},
		models.ToneEncouraging: {
			fixed("Fresh start?", "Every day is a chance to begin again. Your next verse is ready."),
		},
		models.ToneDirect: {
			fixed("It's been 5 days", "Restart your habit with today's reading."),
		},
	},
	models.CategoryReengageWeekly: {
		models.ToneGentle: {
			fixed("Still here for you", "No pressure. Your daily verse is waiting when you want it."),
			fixed("A word for this week", "Take a quiet minute with a verse this week."),
		},
		models.ToneEncouraging: {
			fixed("We miss you!", "Come back for this week's encouragement."),
		},
		models.ToneDirect: {
			fixed("Weekly check-in", "You haven't opened a verse in a while."),
		},
	},
}
