// Package recurrence parses the recurrence expression stored on a
// routine template and decides whether a given date matches it. The
// grammar is a compact subset of the standard format:
//
//	FREQ=DAILY;INTERVAL=2
//	FREQ=WEEKLY;BYDAY=MO,WE,FR
//	FREQ=MONTHLY;BYMONTHDAY=1,15
//
// Matching is pure: no datastore access, no clock.
package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Freq string

const (
	Daily   Freq = "DAILY"
	Weekly  Freq = "WEEKLY"
	Monthly Freq = "MONTHLY"
)

// Rule is a parsed recurrence expression.
type Rule struct {
	Freq       Freq
	Interval   int // every N days/weeks/months, minimum 1
	ByDay      []time.Weekday
	ByMonthDay []int
}

var weekdayCodes = map[string]time.Weekday{
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
	"SU": time.Sunday,
}

// Parse reads a rule expression. An empty expression is a daily rule.
func Parse(expr string) (Rule, error) {
	rule := Rule{Freq: Daily, Interval: 1}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return rule, nil
	}

	for _, part := range strings.Split(expr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return rule, fmt.Errorf("recurrence: malformed component %q", part)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.ToUpper(strings.TrimSpace(value))

		switch key {
		case "FREQ":
			switch Freq(value) {
			case Daily, Weekly, Monthly:
				rule.Freq = Freq(value)
			default:
				return rule, fmt.Errorf("recurrence: unsupported FREQ %q", value)
			}
		case "INTERVAL":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return rule, fmt.Errorf("recurrence: invalid INTERVAL %q", value)
			}
			rule.Interval = n
		case "BYDAY":
			for _, code := range strings.Split(value, ",") {
				day, ok := weekdayCodes[strings.TrimSpace(code)]
				if !ok {
					return rule, fmt.Errorf("recurrence: unknown weekday %q", code)
				}
				rule.ByDay = append(rule.ByDay, day)
			}
		case "BYMONTHDAY":
			for _, raw := range strings.Split(value, ",") {
				day, err := strconv.Atoi(strings.TrimSpace(raw))
				if err != nil || day < 1 || day > 31 {
					return rule, fmt.Errorf("recurrence: invalid month day %q", raw)
				}
				rule.ByMonthDay = append(rule.ByMonthDay, day)
			}
		default:
			return rule, fmt.Errorf("recurrence: unknown component %q", key)
		}
	}
	return rule, nil
}

// Matches reports whether date is an occurrence of the rule anchored
// at the template's creation date. Dates before the anchor never
// match, so a template created mid-day only expands from that day on.
func (r Rule) Matches(anchor, date time.Time) bool {
	anchor = truncate(anchor)
	date = truncate(date)
	if date.Before(anchor) {
		return false
	}
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	switch r.Freq {
	case Weekly:
		days := r.ByDay
		if len(days) == 0 {
			days = []time.Weekday{anchor.Weekday()}
		}
		if !containsWeekday(days, date.Weekday()) {
			return false
		}
		weeks := int(weekStart(date).Sub(weekStart(anchor)).Hours() / 24 / 7)
		return weeks%interval == 0

	case Monthly:
		monthDays := r.ByMonthDay
		if len(monthDays) == 0 {
			monthDays = []int{anchor.Day()}
		}
		last := daysInMonth(date.Month(), date.Year())
		matched := false
		for _, day := range monthDays {
			if day > last {
				day = last // clamp for short months
			}
			if date.Day() == day {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
		months := (date.Year()-anchor.Year())*12 + int(date.Month()) - int(anchor.Month())
		return months%interval == 0

	default: // Daily
		days := int(date.Sub(anchor).Hours() / 24)
		return days%interval == 0
	}
}

// MatchesDate is the convenience form used by expansion: parse and
// match in one call.
func MatchesDate(expr string, anchor, date time.Time) (bool, error) {
	rule, err := Parse(expr)
	if err != nil {
		return false, err
	}
	return rule.Matches(anchor, date), nil
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekStart returns the Monday of t's week.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func containsWeekday(days []time.Weekday, day time.Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
