// Package period classifies budgeting periods as open or closed relative to
// an explicit instant.
package period

import (
	"sort"
	"time"

	"spendwise/internal/core"
)

// Partition splits periods into still-open and closed ones.
type Partition struct {
	Current []core.Period
	Past    []core.Period
}

// IsClosed reports whether p has ended at now. A period whose end equals now
// is closed.
func IsClosed(p core.Period, now time.Time) bool {
	return !now.Before(p.EndAt)
}

// Classify partitions periods without mutating the input. Current keeps the
// input order; Past is ordered by EndAt, most recently closed first.
// Any number of open periods is accepted.
func Classify(periods []core.Period, now time.Time) Partition {
	part := Partition{
		Current: make([]core.Period, 0, len(periods)),
		Past:    make([]core.Period, 0, len(periods)),
	}
	for _, p := range periods {
		if IsClosed(p, now) {
			part.Past = append(part.Past, p)
		} else {
			part.Current = append(part.Current, p)
		}
	}
	sort.SliceStable(part.Past, func(i, j int) bool {
		return part.Past[i].EndAt.After(part.Past[j].EndAt)
	})
	return part
}

// Previous returns the period that ended most recently at or before
// current.StartAt, excluding current itself.
func Previous(periods []core.Period, current core.Period) (core.Period, bool) {
	var (
		best  core.Period
		found bool
	)
	for _, p := range periods {
		if p.ID == current.ID && p.ID != "" {
			continue
		}
		if p.EndAt.After(current.StartAt) {
			continue
		}
		if !found || p.EndAt.After(best.EndAt) {
			best, found = p, true
		}
	}
	return best, found
}

// Contains reports whether t lies within [StartAt, EndAt].
func Contains(p core.Period, t time.Time) bool {
	return !t.Before(p.StartAt) && !t.After(p.EndAt)
}
