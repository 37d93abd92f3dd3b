package recurrence

import (
	"testing"
	"time"
)

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseRejectsMalformedRules(t *testing.T) {
	for _, expr := range []string{
		"FREQ=YEARLY",
		"FREQ",
		"INTERVAL=0",
		"BYDAY=XX",
		"BYMONTHDAY=32",
		"NOPE=1",
	} {
		if _, err := Parse(expr); err == nil {
			t.Errorf("Parse(%q): expected error, got nil", expr)
		}
	}
}

func TestParseEmptyIsDaily(t *testing.T) {
	rule, err := Parse("")
	if err != nil {
		t.Fatalf("Parse empty: %v", err)
	}
	if rule.Freq != Daily || rule.Interval != 1 {
		t.Fatalf("expected daily/1, got %s/%d", rule.Freq, rule.Interval)
	}
}

func TestMatches(t *testing.T) {
	cases := []struct {
		name   string
		expr   string
		anchor string
		date   string
		want   bool
	}{
		{"daily matches any later day", "FREQ=DAILY", "2026-01-01", "2026-03-15", true},
		{"daily never before anchor", "FREQ=DAILY", "2026-01-10", "2026-01-09", false},
		{"daily anchor day itself", "FREQ=DAILY", "2026-01-10", "2026-01-10", true},
		{"every other day on", "FREQ=DAILY;INTERVAL=2", "2026-01-01", "2026-01-03", true},
		{"every other day off", "FREQ=DAILY;INTERVAL=2", "2026-01-01", "2026-01-04", false},
		{"weekly byday hit", "FREQ=WEEKLY;BYDAY=MO,WE,FR", "2026-01-01", "2026-01-05", true}, // a Monday
		{"weekly byday miss", "FREQ=WEEKLY;BYDAY=MO,WE,FR", "2026-01-01", "2026-01-06", false},
		{"weekly defaults to anchor weekday", "FREQ=WEEKLY", "2026-01-01", "2026-01-08", true}, // Thursdays
		{"biweekly off week", "FREQ=WEEKLY;INTERVAL=2", "2026-01-01", "2026-01-08", false},
		{"biweekly on week", "FREQ=WEEKLY;INTERVAL=2", "2026-01-01", "2026-01-15", true},
		{"monthly default day", "FREQ=MONTHLY", "2026-01-15", "2026-02-15", true},
		{"monthly wrong day", "FREQ=MONTHLY", "2026-01-15", "2026-02-16", false},
		{"monthly bymonthday", "FREQ=MONTHLY;BYMONTHDAY=1,20", "2026-01-01", "2026-03-20", true},
		{"monthly clamps short month", "FREQ=MONTHLY;BYMONTHDAY=31", "2026-01-31", "2026-02-28", true},
		{"quarterly off month", "FREQ=MONTHLY;INTERVAL=3", "2026-01-10", "2026-02-10", false},
		{"quarterly on month", "FREQ=MONTHLY;INTERVAL=3", "2026-01-10", "2026-04-10", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MatchesDate(tc.expr, date(tc.anchor), date(tc.date))
			if err != nil {
				t.Fatalf("MatchesDate(%q): %v", tc.expr, err)
			}
			if got != tc.want {
				t.Fatalf("MatchesDate(%q, %s, %s) = %v, want %v",
					tc.expr, tc.anchor, tc.date, got, tc.want)
			}
		})
	}
}

func TestAnchorTimeOfDayIgnored(t *testing.T) {
	anchor := time.Date(2026, 1, 10, 17, 45, 0, 0, time.UTC)
	got, err := MatchesDate("FREQ=DAILY", anchor, date("2026-01-10"))
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Fatal("a template created mid-day must still match its creation date")
	}
}
