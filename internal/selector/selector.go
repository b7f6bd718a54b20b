// Package selector provides seeded, repeatable pseudo-random choices so that
// recomputing a schedule from the same inputs never flickers between days,
// times or copy variants.
package selector

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"unicode/utf16"

	"github.com/julianstephens/versecue/internal/constants"
)

// HashFunc is a stable seeded source: the same seed always yields the same value.
type HashFunc func(seed string) uint32

// FNV1a hashes the seed's bytes with 32-bit FNV-1a.
func FNV1a(seed string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return h.Sum32()
}

// Legacy reproduces the rolling multiply-add hash used by the first mobile
// release: h = h*31 + unit over UTF-16 code units with 32-bit wraparound,
// then the absolute value.
func Legacy(seed string) uint32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(seed)) {
		h = h*31 + int32(unit)
	}
	if h < 0 {
		h = -h
	}
	return uint32(h)
}

// HashByName resolves a configured hash name.
func HashByName(name string) (HashFunc, error) {
	switch name {
	case "", "fnv1a":
		return FNV1a, nil
	case "legacy":
		return Legacy, nil
	default:
		return nil, fmt.Errorf("unknown selector hash %q (want fnv1a or legacy)", name)
	}
}

// Selector makes deterministic picks from string seeds.
type Selector struct {
	hash            HashFunc
	windowStartHour int
	windowHours     int
}

type Option func(*Selector)

// WithWindow sets the time-of-day window used by PickTime.
func WithWindow(startHour, hours int) Option {
	return func(s *Selector) {
		s.windowStartHour = startHour
		s.windowHours = hours
	}
}

// New returns a Selector over hash (FNV1a when nil) with the midday window.
func New(hash HashFunc, opts ...Option) Selector {
	if hash == nil {
		hash = FNV1a
	}
	s := Selector{
		hash:            hash,
		windowStartHour: constants.MiddayWindowStartHour,
		windowHours:     constants.MiddayWindowHours,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.windowHours < 1 {
		s.windowHours = 1
	}
	return s
}

// Default is the selector used when no configuration is supplied.
var Default = New(FNV1a)

func (s Selector) Hash(seed string) uint32 {
	return s.hash(seed)
}

// Index picks a position in a bucket of n entries. n must be positive.
func (s Selector) Index(seed string, n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.hash(seed) % uint32(n))
}

// PickDays selects count distinct indices from [0, total), returned in
// ascending order. Each draw hashes seed with the draw number and indexes a
// shrinking pool.
func (s Selector) PickDays(total, count int, seed string) []int {
	if total <= 0 || count <= 0 {
		return []int{}
	}
	if count > total {
		count = total
	}

	pool := make([]int, total)
	for i := range pool {
		pool[i] = i
	}

	picked := make([]int, 0, count)
	for i := 0; i < count; i++ {
		idx := s.Index(seed+":"+strconv.Itoa(i), len(pool))
		picked = append(picked, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}

	sort.Ints(picked)
	return picked
}

// PickTime derives an hour inside the selector window and a minute in [0, 59).
func (s Selector) PickTime(seed string) (hour, minute int) {
	hour = s.windowStartHour + s.Index(seed, s.windowHours)
	minute = s.Index(seed+":minute", 59)
	return hour, minute
}
