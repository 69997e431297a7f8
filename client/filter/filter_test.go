package filter

import (
	"testing"

	"cctv-surveillance-reports/be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataset() []models.ActivityReport {
	return []models.ActivityReport{
		{ID: "1", Datetime: "2024-02-01T09:00", Location: "Daska", Intensity: "High"},
		{ID: "2", Datetime: "2024-01-31T23:59", Location: "Daska", Intensity: "Low"},
		{ID: "3", Datetime: "2024-01-15T12:00", Location: "Narowal", Intensity: "Medium"},
		{ID: "4", Datetime: "2024-01-01T00:00", Location: "Daska", Intensity: "Medium"},
		{ID: "5", Datetime: "2023-12-31T22:00", Location: "Daska", Intensity: "High"},
		{ID: "6", Datetime: "garbage", Location: "Daska", Intensity: "High"},
		{ID: "7", Datetime: "2024-01-20T08:00", Location: "", Intensity: ""},
	}
}

func ids(records []models.ActivityReport) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestJanuaryAtDaska(t *testing.T) {
	all := dataset()
	crit := ActivityCriteria{From: "2024-01-01", To: "2024-01-31", Location: "Daska"}

	view := Apply(all, crit.Predicate())
	assert.Equal(t, []string{"2", "4"}, ids(view))

	cleared := Apply(all, ActivityCriteria{}.Predicate())
	assert.Equal(t, ids(all), ids(cleared))
}

func TestNoActivePredicateIsIdentity(t *testing.T) {
	all := dataset()
	assert.Nil(t, All[models.ActivityReport]())
	assert.Nil(t, All[models.ActivityReport](nil, nil))

	view := Apply(all, nil)
	assert.Equal(t, all, view)
	view[0].ID = "changed"
	assert.Equal(t, "1", all[0].ID)
}

func TestSingleBoundDateRange(t *testing.T) {
	all := dataset()

	onlyFrom := Apply(all, DateRange(ActivityDatetime, "2024-01-20", ""))
	assert.Equal(t, []string{"1", "2", "7"}, ids(onlyFrom))

	onlyTo := Apply(all, DateRange(ActivityDatetime, "", "2024-01-01"))
	assert.Equal(t, []string{"4", "5"}, ids(onlyTo))
}

func TestEveryCombinationIsASubsetSatisfyingAllPredicates(t *testing.T) {
	all := dataset()
	froms := []string{"", "2024-01-01", "2024-01-20"}
	tos := []string{"", "2024-01-31"}
	locations := []string{"", "Daska", "Narowal", "Chishtian"}
	intensities := []string{"", "High", "Medium"}

	for _, from := range froms {
		for _, to := range tos {
			for _, loc := range locations {
				for _, intensity := range intensities {
					crit := ActivityCriteria{From: from, To: to, Location: loc, Intensity: intensity}
					view := Apply(all, crit.Predicate())
					require.LessOrEqual(t, len(view), len(all))
					if !crit.Active() {
						assert.Equal(t, all, view)
					}
					for _, rec := range view {
						day, ok := DayOf(rec.Datetime)
						if from != "" || to != "" {
							require.True(t, ok, crit)
						}
						if from != "" {
							assert.GreaterOrEqual(t, day, from)
						}
						if to != "" {
							assert.LessOrEqual(t, day, to)
						}
						if loc != "" {
							assert.Equal(t, loc, rec.Location)
						}
						if intensity != "" {
							assert.Equal(t, intensity, rec.Intensity)
						}
					}
				}
			}
		}
	}
}

func TestDayOf(t *testing.T) {
	day, ok := DayOf("2024-03-05T10:15:00.000Z")
	assert.True(t, ok)
	assert.Equal(t, "2024-03-05", day)

	day, ok = DayOf("2024-03-05")
	assert.True(t, ok)
	assert.Equal(t, "2024-03-05", day)

	for _, bad := range []string{"", "2024-3-5", "05/03/2024 10:00", "2024-13-01"} {
		_, ok := DayOf(bad)
		assert.False(t, ok, bad)
	}
}

func TestDistinctSortedOptions(t *testing.T) {
	all := dataset()
	assert.Equal(t, []string{"Daska", "Narowal"}, DistinctSorted(all, ActivityLocation))
	assert.Equal(t, []string{"High", "Low", "Medium"}, DistinctSorted(all, ActivityIntensity))
	assert.Empty(t, DistinctSorted([]models.ActivityReport{}, ActivityLocation))
}

func TestStatusCriteria(t *testing.T) {
	statuses := []models.StatusReport{
		{ID: "a", Date: "2024-01-10", Location: "Khanewal"},
		{ID: "b", Date: "2024-02-10", Location: "Khanewal"},
		{ID: "c", Date: "2024-01-11", Location: "MDA"},
	}
	view := Apply(statuses, StatusCriteria{From: "2024-01-01", To: "2024-01-31", Location: "Khanewal"}.Predicate())
	require.Len(t, view, 1)
	assert.Equal(t, "a", view[0].ID)
}
