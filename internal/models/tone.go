package models

import "strings"

// Tone selects the copy variant used for notification text. It never
// affects scheduling.
type Tone string

const (
	ToneGentle      Tone = "gentle"
	ToneEncouraging Tone = "encouraging"
	ToneDirect      Tone = "direct"

	DefaultTone = ToneGentle
)

// AllTones lists the closed set in display order.
var AllTones = []Tone{ToneGentle, ToneEncouraging, ToneDirect}

// toneMigrations maps values written by earlier releases onto the current set.
var toneMigrations = map[string]Tone{
	"":             ToneGentle,
	"default":      ToneGentle,
	"warm":         ToneGentle,
	"soft":         ToneGentle,
	"calm":         ToneGentle,
	"motivational": ToneEncouraging,
	"uplifting":    ToneEncouraging,
	"cheerful":     ToneEncouraging,
	"concise":      ToneDirect,
	"firm":         ToneDirect,
	"challenging":  ToneDirect,
}

// NormalizeTone maps legacy or unknown tone values to a member of AllTones.
func NormalizeTone(s string) Tone {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllTones {
		if string(t) == key {
			return t
		}
	}
	if t, ok := toneMigrations[key]; ok {
		return t
	}
	return DefaultTone
}

// IsKnown reports whether t is already a member of the closed set.
func (t Tone) IsKnown() bool {
	for _, known := range AllTones {
		if t == known {
			return true
		}
	}
	return false
}
