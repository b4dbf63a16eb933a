package app

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profitpulse/domain/project"
	"profitpulse/domain/table"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func filterFixture() *table.Table {
	t := table.New(5)
	t.SetColumn(project.ColTopic, table.RoleText, []table.Value{
		table.NewStringValue("A"), table.NewStringValue("B"), table.NewStringValue("C"),
		table.NewStringValue("D"), table.NewStringValue("E"),
	})
	t.SetColumn(project.ColRegion, table.RoleText, []table.Value{
		table.NewStringValue("West"), table.NewStringValue("East"), table.NewMissingValue(),
		table.NewStringValue("West"), table.NewStringValue("Central"),
	})
	t.SetColumn(project.ColProjectedEndDate, table.RoleDate, []table.Value{
		table.NewTimestampValue(day(2024, 12, 15)),
		table.NewTimestampValue(day(2025, 1, 1)),
		table.NewTimestampValue(time.Date(2025, 3, 31, 17, 30, 0, 0, time.UTC)),
		table.NewMissingValue(),
		table.NewTimestampValue(day(2025, 6, 30)),
	})
	return t
}

func TestDefaultDateRange(t *testing.T) {
	start, end, ok := DefaultDateRange(filterFixture(), project.ColProjectedEndDate)
	require.True(t, ok)
	assert.Equal(t, day(2025, 1, 1), start)
	assert.Equal(t, day(2025, 3, 31), end)

	narrow := table.New(2)
	narrow.SetColumn(project.ColProjectedEndDate, table.RoleDate, []table.Value{
		table.NewTimestampValue(day(2025, 2, 10)), table.NewTimestampValue(day(2025, 2, 20)),
	})
	start, end, ok = DefaultDateRange(narrow, project.ColProjectedEndDate)
	require.True(t, ok)
	assert.Equal(t, day(2025, 2, 10), start, "clamped to the earliest date")
	assert.Equal(t, day(2025, 2, 20), end, "clamped to the latest date")

	outside := table.New(1)
	outside.SetColumn(project.ColProjectedEndDate, table.RoleDate, []table.Value{
		table.NewTimestampValue(day(2023, 7, 4)),
	})
	start, end, ok = DefaultDateRange(outside, project.ColProjectedEndDate)
	require.True(t, ok)
	assert.Equal(t, day(2023, 7, 4), start)
	assert.Equal(t, day(2023, 7, 4), end)

	_, _, ok = DefaultDateRange(table.Empty(), project.ColProjectedEndDate)
	assert.False(t, ok)
}

func TestRegionOptions(t *testing.T) {
	assert.Equal(t, []string{"All", "Central", "East", "West"}, RegionOptions(filterFixture()))
	assert.Equal(t, []string{"All"}, RegionOptions(table.Empty()))
}

func TestApplyFilters(t *testing.T) {
	source := filterFixture()
	before := source.Fingerprint()

	tests := []struct {
		name   string
		opts   FilterOptions
		topics []string
	}{
		{name: "no filters", opts: DefaultFilterOptions(), topics: []string{"A", "B", "C", "D", "E"}},
		{
			name:   "Q1 inclusive by calendar date",
			opts:   FilterOptions{Start: day(2025, 1, 1), End: day(2025, 3, 31), Region: AllRegions},
			topics: []string{"B", "C"},
		},
		{name: "region only", opts: FilterOptions{Region: "West"}, topics: []string{"A", "D"}},
		{
			name:   "open end drops missing dates",
			opts:   FilterOptions{Start: day(2025, 1, 1), Region: "West"},
			topics: []string{},
		},
		{name: "unknown region", opts: FilterOptions{Region: "North"}, topics: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilters(source, tt.opts)
			topics := []string{}
			for row := 0; row < got.NumRows(); row++ {
				topics = append(topics, got.Value(project.ColTopic, row).String())
			}
			assert.Equal(t, tt.topics, topics)
		})
	}

	assert.Equal(t, before, source.Fingerprint(), "filters must not mutate the shared table")
}

func TestApplyFiltersWithoutColumns(t *testing.T) {
	bare := table.New(2)
	bare.SetColumn(project.ColTopic, table.RoleText, []table.Value{table.NewStringValue("A"), table.NewStringValue("B")})

	got := ApplyFilters(bare, FilterOptions{Start: day(2025, 1, 1), End: day(2025, 1, 2), Region: "West"})
	assert.Equal(t, 2, got.NumRows())
	assert.Equal(t, 0, ApplyFilters(nil, DefaultFilterOptions()).NumRows())
}

func TestFilterFromQuery(t *testing.T) {
	projects := filterFixture()

	opts, err := FilterFromQuery(url.Values{}, projects)
	require.NoError(t, err)
	assert.Equal(t, day(2025, 1, 1), opts.Start)
	assert.Equal(t, day(2025, 3, 31), opts.End)
	assert.Equal(t, AllRegions, opts.Region)

	opts, err = FilterFromQuery(url.Values{"start": {"2024-12-01"}, "region": {"West"}}, projects)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 12, 1), opts.Start)
	assert.Equal(t, "West", opts.Region)
	narrowed := ApplyFilters(projects, opts)
	require.Equal(t, 1, narrowed.NumRows())
	assert.Equal(t, "A", narrowed.Value(project.ColTopic, 0).String())

	_, err = FilterFromQuery(url.Values{"end": {"03/31/2025"}}, projects)
	assert.Error(t, err)

	_, err = FilterFromQuery(url.Values{"start": {"2025-04-01"}, "end": {"2025-01-01"}}, projects)
	assert.Error(t, err)

	opts, err = FilterFromQuery(url.Values{}, table.Empty())
	require.NoError(t, err)
	assert.False(t, opts.HasDateRange())
}
