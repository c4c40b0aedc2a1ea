package services

import (
	"fmt"
	"time"

	"spendwise/internal/core"
)

// DuenessChecker decides whether a recurring spend template should produce
// spend at now, given when it last did (zero if never) and its start date.
type DuenessChecker interface {
	IsDue(lastRun, now, start time.Time) bool
}

type (
	DailyChecker   struct{}
	WeeklyChecker  struct{}
	MonthlyChecker struct{}
	YearlyChecker  struct{}
)

// IsDue is true once per calendar day.
func (DailyChecker) IsDue(lastRun, now, _ time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	ly, lm, ld := lastRun.Date()
	ny, nm, nd := now.Date()
	return ly != ny || lm != nm || ld != nd
}

// IsDue is true when at least seven days have passed since the last run.
func (WeeklyChecker) IsDue(lastRun, now, _ time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	return now.Sub(lastRun) >= 7*24*time.Hour
}

// IsDue is true in a month without a run once the start date's day of month
// is reached, clamped to the month's last day.
func (MonthlyChecker) IsDue(lastRun, now, start time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	if lastRun.Year() == now.Year() && lastRun.Month() == now.Month() {
		return false
	}
	return now.Day() >= clampDay(start.Day(), now.Year(), now.Month())
}

// IsDue is true in a year without a run once the start date's month and day
// are reached.
func (YearlyChecker) IsDue(lastRun, now, start time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	if lastRun.Year() == now.Year() {
		return false
	}
	switch {
	case now.Month() < start.Month():
		return false
	case now.Month() > start.Month():
		return true
	default:
		return now.Day() >= clampDay(start.Day(), now.Year(), now.Month())
	}
}

// clampDay caps day at the length of the given month, so a template
// started on the 31st runs on the 30th in April.
func clampDay(day, year int, month time.Month) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

var duenessStrategies = map[core.RepetitionType]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

func GetDuenessChecker(every core.RepetitionType) (DuenessChecker, error) {
	checker, ok := duenessStrategies[every]
	if !ok {
		return nil, fmt.Errorf("unknown repetition type: %s", every)
	}
	return checker, nil
}
