package app

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"profitpulse/domain/project"
	"profitpulse/domain/table"
)

// AllRegions is the region option that disables region filtering
const AllRegions = "All"

// FilterOptions narrows the projects table the way the sidebar does
type FilterOptions struct {
	DateColumn string
	// Start and End are inclusive calendar dates; a zero value leaves that side open.
	Start  time.Time
	End    time.Time
	Region string
}

// DefaultFilterOptions returns options for the projected end date and all regions
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{DateColumn: project.ColProjectedEndDate, Region: AllRegions}
}

// HasDateRange reports whether either bound is set
func (o FilterOptions) HasDateRange() bool {
	return !o.Start.IsZero() || !o.End.IsZero()
}

// DateBounds returns the earliest and latest dates in column
func DateBounds(projects *table.Table, column string) (earliest, latest time.Time, ok bool) {
	col, found := projects.Column(column)
	if !found {
		return time.Time{}, time.Time{}, false
	}
	for _, cell := range col.Cells {
		t, isTime := cell.Time()
		if !isTime {
			continue
		}
		if !ok || t.Before(earliest) {
			earliest = t
		}
		if !ok || t.After(latest) {
			latest = t
		}
		ok = true
	}
	return earliest, latest, ok
}

// DefaultDateRange is Q1 2025 clamped to the dates present in column.
// When Q1 2025 does not overlap the data the full data range is used.
func DefaultDateRange(projects *table.Table, column string) (start, end time.Time, ok bool) {
	earliest, latest, ok := DateBounds(projects, column)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	earliest, latest = calendarDate(earliest), calendarDate(latest)

	start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	if start.Before(earliest) {
		start = earliest
	}
	if end.After(latest) {
		end = latest
	}
	if start.After(end) {
		return earliest, latest, true
	}
	return start, end, true
}

// RegionOptions returns "All" followed by the sorted distinct regions
func RegionOptions(projects *table.Table) []string {
	options := []string{AllRegions}
	col, ok := projects.Column(project.ColRegion)
	if !ok {
		return options
	}

	seen := make(map[string]bool)
	var regions []string
	for _, cell := range col.Cells {
		if cell.Missing() {
			continue
		}
		name := cell.String()
		if !seen[name] {
			seen[name] = true
			regions = append(regions, name)
		}
	}
	sort.Strings(regions)
	return append(options, regions...)
}

// ApplyFilters returns a narrowed copy of projects. Rows without a date are
// dropped while a date range is active. Missing columns disable their filter.
func ApplyFilters(projects *table.Table, opts FilterOptions) *table.Table {
	if projects == nil {
		return table.Empty()
	}
	if opts.DateColumn == "" {
		opts.DateColumn = project.ColProjectedEndDate
	}

	useDates := opts.HasDateRange() && projects.Has(opts.DateColumn)
	useRegion := opts.Region != "" && opts.Region != AllRegions && projects.Has(project.ColRegion)
	if !useDates && !useRegion {
		return projects.Clone()
	}

	start, end := calendarDate(opts.Start), calendarDate(opts.End)
	return projects.Filter(func(row int) bool {
		if useDates {
			t, ok := projects.Value(opts.DateColumn, row).Time()
			if !ok {
				return false
			}
			day := calendarDate(t)
			if !opts.Start.IsZero() && day.Before(start) {
				return false
			}
			if !opts.End.IsZero() && day.After(end) {
				return false
			}
		}
		if useRegion {
			region := projects.Value(project.ColRegion, row)
			if region.Missing() || region.String() != opts.Region {
				return false
			}
		}
		return true
	})
}

func calendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// QueryDateLayout is the date format of the start and end query parameters
const QueryDateLayout = "2006-01-02"

// FilterFromQuery reads start, end and region from a request query. Absent
// dates fall back to DefaultDateRange; malformed dates are reported.
func FilterFromQuery(q url.Values, projects *table.Table) (FilterOptions, error) {
	opts := DefaultFilterOptions()
	if region := strings.TrimSpace(q.Get("region")); region != "" {
		opts.Region = region
	}

	start, end, hasDates := DefaultDateRange(projects, opts.DateColumn)
	if hasDates {
		opts.Start, opts.End = start, end
	}

	if raw := strings.TrimSpace(q.Get("start")); raw != "" {
		t, err := time.Parse(QueryDateLayout, raw)
		if err != nil {
			return opts, fmt.Errorf("invalid start date %q: %w", raw, err)
		}
		opts.Start = t
	}
	if raw := strings.TrimSpace(q.Get("end")); raw != "" {
		t, err := time.Parse(QueryDateLayout, raw)
		if err != nil {
			return opts, fmt.Errorf("invalid end date %q: %w", raw, err)
		}
		opts.End = t
	}
	if !opts.Start.IsZero() && !opts.End.IsZero() && opts.End.Before(opts.Start) {
		return opts, fmt.Errorf("end date %s is before start date %s",
			opts.End.Format(QueryDateLayout), opts.Start.Format(QueryDateLayout))
	}
	return opts, nil
}
