// Package filter derives filtered views of report collections.
//
// A nil Predicate is inactive and passes every record. Predicates combine
// with All by logical AND; with no active predicate the view is the input.
package filter

import (
	"sort"
	"time"

	"cctv-surveillance-reports/be/models"
)

const dayLayout = "2006-01-02"

type Predicate[T any] func(T) bool

// All is the conjunction of the active predicates among preds.
func All[T any](preds ...Predicate[T]) Predicate[T] {
	var active []Predicate[T]
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return func(rec T) bool {
		for _, p := range active {
			if !p(rec) {
				return false
			}
		}
		return true
	}
}

// Apply returns the records that pass pred, keeping their order.
func Apply[T any](records []T, pred Predicate[T]) []T {
	if pred == nil {
		out := make([]T, len(records))
		copy(out, records)
		return out
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// DayOf truncates a date or datetime string to its calendar day.
// It reports false when the first ten characters are not a YYYY-MM-DD date.
func DayOf(value string) (string, bool) {
	if len(value) < len(dayLayout) {
		return "", false
	}
	day := value[:len(dayLayout)]
	if _, err := time.Parse(dayLayout, day); err != nil {
		return "", false
	}
	return day, true
}

// DateRange passes records whose day lies within [from, to], both inclusive.
// An empty bound does not constrain; with both empty the predicate is inactive.
// Records without a parseable day fail whenever a bound is set.
func DateRange[T any](field func(T) string, from, to string) Predicate[T] {
	if from == "" && to == "" {
		return nil
	}
	return func(rec T) bool {
		day, ok := DayOf(field(rec))
		if !ok {
			return false
		}
		if from != "" && day < from {
			return false
		}
		if to != "" && day > to {
			return false
		}
		return true
	}
}

// Equals passes records whose field matches want exactly; empty want is inactive.
func Equals[T any](field func(T) string, want string) Predicate[T] {
	if want == "" {
		return nil
	}
	return func(rec T) bool { return field(rec) == want }
}

// DistinctSorted lists the distinct non-empty values of field, sorted.
func DistinctSorted[T any](records []T, field func(T) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range records {
		v := field(rec)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ActivityCriteria are the filters offered for activity reports.
type ActivityCriteria struct {
	From      string
	To        string
	Location  string
	Intensity string
}

func (c ActivityCriteria) Active() bool {
	return c != ActivityCriteria{}
}

func (c ActivityCriteria) Predicate() Predicate[models.ActivityReport] {
	return All(
		DateRange(ActivityDatetime, c.From, c.To),
		Equals(ActivityLocation, c.Location),
		Equals(ActivityIntensity, c.Intensity),
	)
}

// StatusCriteria are the filters offered for status reports.
type StatusCriteria struct {
	From     string
	To       string
	Location string
}

func (c StatusCriteria) Active() bool {
	return c != StatusCriteria{}
}

func (c StatusCriteria) Predicate() Predicate[models.StatusReport] {
	return All(
		DateRange(StatusDate, c.From, c.To),
		Equals(StatusLocation, c.Location),
	)
}

func ActivityDatetime(r models.ActivityReport) string  { return r.Datetime }
func ActivityLocation(r models.ActivityReport) string  { return r.Location }
func ActivityIntensity(r models.ActivityReport) string { return r.Intensity }
func StatusDate(s models.StatusReport) string          { return s.Date }
func StatusLocation(s models.StatusReport) string      { return s.Location }
