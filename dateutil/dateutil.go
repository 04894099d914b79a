// Package dateutil parses dates given on the command line and turns them into
// day aligned windows.
package dateutil

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jinzhu/now"
)

// Interval groups start and end.
type Interval struct {
	Start time.Time
	End   time.Time
}

// String renders an interval.
func (iv Interval) String() string {
	return fmt.Sprintf("%s %s", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}

// Validate checks if the interval is valid (end after start)
func (iv Interval) Validate() error {
	if iv.End.Before(iv.Start) {
		return fmt.Errorf("invalid interval: end %v before start %v", iv.End, iv.Start)
	}
	return nil
}

// Contains reports whether t lies within the interval, bounds included. A
// zero bound is open.
func (iv Interval) Contains(t time.Time) bool {
	if !iv.Start.IsZero() && t.Before(iv.Start) {
		return false
	}
	if !iv.End.IsZero() && t.After(iv.End) {
		return false
	}
	return true
}

// Parse accepts most common date layouts, like 2024-01-02, 01/02/2024 or
// "Jan 2, 2024".
func Parse(value string) (time.Time, error) {
	return dateparse.ParseStrict(value)
}

// MustParse is like Parse but panics on error
func MustParse(value string) time.Time {
	t, err := dateparse.ParseStrict(value)
	if err != nil {
		panic(err)
	}
	return t
}

// Window returns the interval from the beginning of the day of since to the
// end of the day of until. Empty values leave the bound open.
func Window(since, until string) (Interval, error) {
	var iv Interval
	if since != "" {
		t, err := Parse(since)
		if err != nil {
			return iv, fmt.Errorf("since: %w", err)
		}
		iv.Start = now.With(t).BeginningOfDay()
	}
	if until != "" {
		t, err := Parse(until)
		if err != nil {
			return iv, fmt.Errorf("until: %w", err)
		}
		iv.End = now.With(t).EndOfDay()
	}
	if !iv.Start.IsZero() && !iv.End.IsZero() {
		if err := iv.Validate(); err != nil {
			return iv, err
		}
	}
	return iv, nil
}
