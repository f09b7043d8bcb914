package pipeline

import (
	"time"

	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
)

const (
	dateLayout = "2006-01-02"
	dayStart   = " 00:00:00"
	dayEnd     = " 23:59:59"
)

// Step is the bucket size of a date window
type Step int

const (
	// StepDay walks one calendar day per bucket
	StepDay Step = iota
	// StepMonth walks one calendar month per bucket
	StepMonth
)

func (s Step) String() string {
	if s == StepMonth {
		return "month"
	}
	return "day"
}

// Bucket is one slice of a window; both ends are whole days and inclusive
type Bucket struct {
	Start time.Time
	End   time.Time
}

// Range returns the bucket as a source query range covering both days fully
func (b Bucket) Range() magento.Range {
	return magento.Range{
		From: b.Start.Format(dateLayout) + dayStart,
		To:   b.End.Format(dateLayout) + dayEnd,
	}
}

func (b Bucket) String() string {
	if b.Start.Equal(b.End) {
		return b.Start.Format(dateLayout)
	}
	return b.Start.Format(dateLayout) + ".." + b.End.Format(dateLayout)
}

// DateWindow is an inclusive range of days walked in buckets.
// Without an upper bound it runs up to the day Buckets is given as today.
type DateWindow struct {
	From  time.Time
	To    time.Time
	HasTo bool
	Step  Step
}

// LastDays is the window starting days ago and ending today
func LastDays(today time.Time, days int) DateWindow {
	return DateWindow{From: truncateDay(today).AddDate(0, 0, -days), Step: StepDay}
}

// LastMonths is the monthly window starting months ago and ending today
func LastMonths(today time.Time, months int) DateWindow {
	return DateWindow{From: truncateDay(today).AddDate(0, -months, 0), Step: StepMonth}
}

// Until returns the window bounded at to
func (w DateWindow) Until(to time.Time) DateWindow {
	w.To = truncateDay(to)
	w.HasTo = true
	return w
}

// Bounded returns the window with today as upper bound when it has none
func (w DateWindow) Bounded(today time.Time) DateWindow {
	if w.HasTo {
		return w
	}
	return w.Until(today)
}

// Buckets lists the buckets to visit.
//
// An open-ended day window is walked backward from today down to From, one
// day per bucket. A bounded window, or any month window, is walked forward
// from From to To inclusive. Month buckets do not overlap: each ends the day
// before the next one starts and the last one ends at To.
func (w DateWindow) Buckets(today time.Time) []Bucket {
	from := truncateDay(w.From)
	today = truncateDay(today)

	if !w.HasTo && w.Step == StepDay {
		var out []Bucket
		for d := today; !d.Before(from); d = d.AddDate(0, 0, -1) {
			out = append(out, Bucket{Start: d, End: d})
		}
		return out
	}

	to := today
	if w.HasTo {
		to = truncateDay(w.To)
	}

	var out []Bucket
	if w.Step == StepMonth {
		for i := 0; ; i++ {
			start := from.AddDate(0, i, 0)
			if start.After(to) {
				break
			}
			end := from.AddDate(0, i+1, 0).AddDate(0, 0, -1)
			if end.After(to) {
				end = to
			}
			out = append(out, Bucket{Start: start, End: end})
		}
		return out
	}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, Bucket{Start: d, End: d})
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
