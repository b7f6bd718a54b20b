// Package ui holds the terminal styles shared by CLI output.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/versecue/internal/models"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	TimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(18)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	DangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	OKStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(28)
)

var channelColors = map[models.Channel]lipgloss.Color{
	models.ChannelRoutine:      lipgloss.Color("39"),
	models.ChannelStreak:       lipgloss.Color("214"),
	models.ChannelReengagement: lipgloss.Color("141"),
}

// ChannelStyle colors a label by delivery channel.
func ChannelStyle(ch models.Channel) lipgloss.Style {
	c, ok := channelColors[ch]
	if !ok {
		c = lipgloss.Color("245")
	}
	return lipgloss.NewStyle().Foreground(c).Width(14)
}

// Card renders one notification as a bordered box.
func Card(n models.ScheduledNotification, loc *time.Location) string {
	border := channelColors[n.Channel]
	body := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(n.Title),
		n.Body,
		MutedStyle.Render(fmt.Sprintf("%s · %s", n.FireAt.In(loc).Format("Mon Jan 2 15:04"), n.ID)),
	)
	return cardStyle.BorderForeground(border).Render(body)
}

// NotificationTable renders one line per notification.
func NotificationTable(ns []models.ScheduledNotification, loc *time.Location) string {
	if len(ns) == 0 {
		return MutedStyle.Render("No notifications scheduled.")
	}
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%d scheduled", len(ns))))
	b.WriteString("\n")
	for _, n := range ns {
		b.WriteString(TimeStyle.Render(n.FireAt.In(loc).Format("Mon Jan 02 15:04")))
		b.WriteString(ChannelStyle(n.Channel).Render(string(n.Channel)))
		b.WriteString(TitleStyle.Render(n.Title))
		b.WriteString(" ")
		b.WriteString(MutedStyle.Render(n.ID))
		b.WriteString("\n")
	}
	return b.String()
}

// KeyValues renders aligned key/value pairs in the given key order.
func KeyValues(keys []string, values map[string]string) string {
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(keyStyle.Render(k))
		b.WriteString(values[k])
		b.WriteString("\n")
	}
	return b.String()
}
