// Package view holds the in-memory browse state of a report collection:
// the full dataset fetched once, the filtered subset and the current page.
package view

import (
	"context"
	"fmt"
	"strings"

	"cctv-surveillance-reports/be/client/filter"
	"cctv-surveillance-reports/be/models"
)

// PageSize is the number of records per page.
const PageSize = 25

// Fetch loads an entire collection.
type Fetch[T any] func(ctx context.Context) ([]T, error)

// View is the filtered, paged projection of one dataset.
// The filtered slice is derived and never aliases the dataset.
type View[T any] struct {
	all      []T
	filtered []T
	page     int
}

func newView[T any](records []T) View[T] {
	return View[T]{all: records, filtered: filter.Apply(records, nil), page: 1}
}

func (v *View[T]) apply(pred filter.Predicate[T]) {
	v.filtered = filter.Apply(v.all, pred)
	v.page = 1
}

// Total is the size of the loaded dataset.
func (v *View[T]) Total() int { return len(v.all) }

// Filtered returns the records passing the active filters, in dataset order.
func (v *View[T]) Filtered() []T {
	out := make([]T, len(v.filtered))
	copy(out, v.filtered)
	return out
}

// TotalPages is ceil(len(filtered) / PageSize).
func (v *View[T]) TotalPages() int {
	return (len(v.filtered) + PageSize - 1) / PageSize
}

func (v *View[T]) CurrentPage() int { return v.page }

// GoTo moves to page p when 1 <= p <= TotalPages and reports whether it moved.
// Any other p leaves the current page unchanged.
func (v *View[T]) GoTo(p int) bool {
	if p < 1 || p > v.TotalPages() {
		return false
	}
	v.page = p
	return true
}

func (v *View[T]) Next() bool { return v.GoTo(v.page + 1) }
func (v *View[T]) Prev() bool { return v.GoTo(v.page - 1) }

// Page returns the records of the current page.
func (v *View[T]) Page() []T {
	start := (v.page - 1) * PageSize
	if start >= len(v.filtered) {
		return []T{}
	}
	end := start + PageSize
	if end > len(v.filtered) {
		end = len(v.filtered)
	}
	out := make([]T, end-start)
	copy(out, v.filtered[start:end])
	return out
}

// SerialOffset is added to a row's index within Page to get its serial number.
func (v *View[T]) SerialOffset() int { return (v.page-1)*PageSize + 1 }

// ActivityView browses activity reports.
type ActivityView struct {
	View[models.ActivityReport]
	criteria filter.ActivityCriteria
}

// LoadActivities fetches the collection once and shows it unfiltered.
func LoadActivities(ctx context.Context, fetch Fetch[models.ActivityReport]) (*ActivityView, error) {
	records, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	return NewActivityView(records), nil
}

func NewActivityView(records []models.ActivityReport) *ActivityView {
	return &ActivityView{View: newView(records)}
}

// SetCriteria re-derives the filtered view and returns to page 1.
func (v *ActivityView) SetCriteria(c filter.ActivityCriteria) {
	v.criteria = c
	v.apply(c.Predicate())
}

func (v *ActivityView) Criteria() filter.ActivityCriteria { return v.criteria }

// ClearFilters restores the full dataset.
func (v *ActivityView) ClearFilters() { v.SetCriteria(filter.ActivityCriteria{}) }

// LocationOptions and IntensityOptions list the values present in the
// loaded dataset, for pickers.
func (v *ActivityView) LocationOptions() []string {
	return filter.DistinctSorted(v.all, filter.ActivityLocation)
}

func (v *ActivityView) IntensityOptions() []string {
	return filter.DistinctSorted(v.all, filter.ActivityIntensity)
}

// Summary describes the active filters, or returns "" when none is set.
func (v *ActivityView) Summary() string {
	c := v.criteria
	if !c.Active() {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d of %d activities", len(v.filtered), len(v.all))
	writeRange(&b, c.From, c.To)
	if c.Location != "" {
		fmt.Fprintf(&b, " at %s", c.Location)
	}
	if c.Intensity != "" {
		fmt.Fprintf(&b, " with %s intensity", c.Intensity)
	}
	return b.String()
}

// StatusView browses daily status reports.
type StatusView struct {
	View[models.StatusReport]
	criteria filter.StatusCriteria
}

func LoadStatuses(ctx context.Context, fetch Fetch[models.StatusReport]) (*StatusView, error) {
	records, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	return NewStatusView(records), nil
}

func NewStatusView(records []models.StatusReport) *StatusView {
	return &StatusView{View: newView(records)}
}

func (v *StatusView) SetCriteria(c filter.StatusCriteria) {
	v.criteria = c
	v.apply(c.Predicate())
}

func (v *StatusView) Criteria() filter.StatusCriteria { return v.criteria }

func (v *StatusView) ClearFilters() { v.SetCriteria(filter.StatusCriteria{}) }

func (v *StatusView) LocationOptions() []string {
	return filter.DistinctSorted(v.all, filter.StatusLocation)
}

func (v *StatusView) Summary() string {
	c := v.criteria
	if !c.Active() {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d of %d status records", len(v.filtered), len(v.all))
	writeRange(&b, c.From, c.To)
	if c.Location != "" {
		fmt.Fprintf(&b, " at %s", c.Location)
	}
	return b.String()
}

func writeRange(b *strings.Builder, from, to string) {
	switch {
	case from != "" && to != "":
		fmt.Fprintf(b, " from %s to %s", from, to)
	case from != "":
		fmt.Fprintf(b, " from %s", from)
	case to != "":
		fmt.Fprintf(b, " until %s", to)
	}
}
