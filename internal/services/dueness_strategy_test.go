package services

import (
	"testing"
	"time"

	"spendwise/internal/core"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestDuenessCheckers(t *testing.T) {
	never := time.Time{}

	tests := []struct {
		name  string
		every core.RepetitionType
		last  time.Time
		now   time.Time
		start time.Time
		want  bool
	}{
		// daily
		{"daily first run", core.Daily, never, at(2024, 5, 1, 9), at(2024, 1, 1, 0), true},
		{"daily same calendar day", core.Daily, at(2024, 5, 1, 0), at(2024, 5, 1, 23), at(2024, 1, 1, 0), false},
		{"daily next day after less than 24h", core.Daily, at(2024, 5, 1, 23), at(2024, 5, 2, 1), at(2024, 1, 1, 0), true},

		// weekly
		{"weekly first run", core.Weekly, never, at(2024, 5, 1, 9), at(2024, 1, 1, 0), true},
		{"weekly six days later", core.Weekly, at(2024, 5, 1, 9), at(2024, 5, 7, 9), at(2024, 1, 1, 0), false},
		{"weekly exactly seven days", core.Weekly, at(2024, 5, 1, 9), at(2024, 5, 8, 9), at(2024, 1, 1, 0), true},

		// monthly
		{"monthly already ran this month", core.Monthly, at(2024, 5, 2, 9), at(2024, 5, 28, 9), at(2024, 1, 2, 0), false},
		{"monthly new month before anchor day", core.Monthly, at(2024, 4, 20, 9), at(2024, 5, 19, 9), at(2024, 1, 20, 0), false},
		{"monthly new month on anchor day", core.Monthly, at(2024, 4, 20, 9), at(2024, 5, 20, 0), at(2024, 1, 20, 0), true},
		{"monthly anchor 31 clamps in April", core.Monthly, at(2024, 3, 31, 9), at(2024, 4, 30, 9), at(2024, 1, 31, 0), true},
		{"monthly anchor 31 clamps in leap February", core.Monthly, at(2024, 1, 31, 9), at(2024, 2, 29, 9), at(2023, 12, 31, 0), true},
		{"monthly across year boundary", core.Monthly, at(2023, 12, 5, 9), at(2024, 1, 5, 9), at(2023, 1, 5, 0), true},

		// yearly
		{"yearly first run", core.Yearly, never, at(2024, 5, 1, 9), at(2023, 6, 1, 0), true},
		{"yearly already ran this year", core.Yearly, at(2024, 1, 1, 9), at(2024, 12, 31, 9), at(2020, 1, 1, 0), false},
		{"yearly before anchor month", core.Yearly, at(2023, 6, 15, 9), at(2024, 5, 30, 9), at(2020, 6, 15, 0), false},
		{"yearly anchor month before day", core.Yearly, at(2023, 6, 15, 9), at(2024, 6, 14, 9), at(2020, 6, 15, 0), false},
		{"yearly anchor day", core.Yearly, at(2023, 6, 15, 9), at(2024, 6, 15, 9), at(2020, 6, 15, 0), true},
		{"yearly after anchor month", core.Yearly, at(2023, 6, 15, 9), at(2024, 8, 1, 9), at(2020, 6, 15, 0), true},
		{"yearly Feb 29 anchor in common year", core.Yearly, at(2024, 2, 29, 9), at(2025, 2, 28, 9), at(2024, 2, 29, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, err := GetDuenessChecker(tt.every)
			if err != nil {
				t.Fatalf("GetDuenessChecker(%s): %v", tt.every, err)
			}
			if got := checker.IsDue(tt.last, tt.now, tt.start); got != tt.want {
				t.Errorf("IsDue(last=%s, now=%s) = %v, want %v",
					tt.last.Format(time.DateTime), tt.now.Format(time.DateTime), got, tt.want)
			}
		})
	}
}

func TestGetDuenessChecker_Unknown(t *testing.T) {
	for _, every := range []core.RepetitionType{"", "hourly", "biweekly"} {
		if _, err := GetDuenessChecker(every); err == nil {
			t.Errorf("GetDuenessChecker(%q) expected error", every)
		}
	}
}

func TestClampDay(t *testing.T) {
	tests := []struct {
		day   int
		year  int
		month time.Month
		want  int
	}{
		{31, 2023, time.February, 28},
		{31, 2024, time.February, 29},
		{31, 2024, time.April, 30},
		{15, 2024, time.April, 15},
	}
	for _, tt := range tests {
		if got := clampDay(tt.day, tt.year, tt.month); got != tt.want {
			t.Errorf("clampDay(%d, %d, %s) = %d, want %d", tt.day, tt.year, tt.month, got, tt.want)
		}
	}
}
