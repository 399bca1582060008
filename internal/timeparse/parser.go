// Package timeparse resolves user supplied time expressions ("1d12h",
// "tomorrow", "2025-01-02 15:04") to absolute timestamps.
package timeparse

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/KirkDiggler/remindme/internal/common/clock"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_parser.go github.com/KirkDiggler/remindme/internal/timeparse Parser
type Parser interface {
	Parse(input string) (time.Time, error)
}

// Components in the only order they are accepted
var relativePattern = regexp.MustCompile(`^(\d+y)?(\d+M)?(\d+w)?(\d+d)?(\d+h)?(\d+m)?(\d+s)?$`)

const (
	day  = 24 * time.Hour
	week = 7 * day

	maxYears = 9999
)

var fixedUnits = [...]time.Duration{week, day, time.Hour, time.Minute, time.Second}

var errOutOfRange = errors.New("duration out of range")

type Config struct {
	Clock    clock.Clock
	Location *time.Location
}

type parser struct {
	clock clock.Clock
	loc   *time.Location
}

func New(cfg *Config) (*parser, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Clock == nil {
		return nil, errors.New("clock cannot be nil")
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	return &parser{
		clock: cfg.Clock,
		loc:   loc,
	}, nil
}

// Parse resolves input against the current time. Relative durations are
// tried first, then the named literals, then general date parsing.
func (p *parser) Parse(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, &ParseError{Input: input}
	}

	now := p.clock.Now().In(p.loc)

	if t, ok, err := parseRelative(now, input); err != nil {
		return time.Time{}, &ParseError{Input: input, Err: err}
	} else if ok {
		return t, nil
	}

	switch input {
	case "tomorrow":
		return now.Add(day), nil
	case "next week":
		return now.Add(week), nil
	}

	t, err := dateparse.ParseIn(input, p.loc)
	if err != nil {
		return time.Time{}, &ParseError{Input: input, Err: err}
	}

	return t.In(p.loc), nil
}

// parseRelative reports ok=false when input is not a relative expression.
// Fixed-length units are added first, then years and months on the calendar.
func parseRelative(now time.Time, input string) (time.Time, bool, error) {
	m := relativePattern.FindStringSubmatch(input)
	if m == nil {
		return time.Time{}, false, nil
	}

	var values [7]int64
	matched := false
	for i, group := range m[1:] {
		if group == "" {
			continue
		}
		matched = true

		v, err := strconv.ParseInt(group[:len(group)-1], 10, 32)
		if err != nil {
			return time.Time{}, false, errOutOfRange
		}
		values[i] = v
	}
	if !matched {
		return time.Time{}, false, nil
	}

	years, months := values[0], values[1]
	if years > maxYears || months > maxYears*12 {
		return time.Time{}, false, errOutOfRange
	}

	var seconds int64
	for i, unit := range fixedUnits {
		seconds += values[i+2] * int64(unit/time.Second)
	}
	if seconds > math.MaxInt64/int64(time.Second) {
		return time.Time{}, false, errOutOfRange
	}

	t := now.Add(time.Duration(seconds) * time.Second)
	if years != 0 || months != 0 {
		t = addMonths(t, int(years*12+months))
	}

	return t, true, nil
}

// addMonths moves t by n calendar months, clamping the day to the last day of
// the target month (Jan 31 + 1 month = Feb 28 or 29)
func addMonths(t time.Time, n int) time.Time {
	total := int(t.Month()) - 1 + n
	year := t.Year() + total/12
	month := time.Month(total%12 + 1)

	d := t.Day()
	if last := daysIn(year, month, t.Location()); d > last {
		d = last
	}

	return time.Date(year, month, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
