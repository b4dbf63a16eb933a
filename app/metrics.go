package app

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"profitpulse/adapters/coercer"
	"profitpulse/domain/project"
	"profitpulse/domain/table"
)

// Overview holds the headline dashboard figures
type Overview struct {
	ProjectCount            int     `json:"project_count"`
	TotalRevenue            float64 `json:"total_revenue"`
	TotalCosts              float64 `json:"total_costs"`
	TotalCostsVariance      float64 `json:"total_costs_variance"`
	AverageMargin           float64 `json:"average_margin"`
	MedianMargin            float64 `json:"median_margin"`
	HasMargin               bool    `json:"has_margin"`
	NegativeCount           int     `json:"negative_count"`
	NegativeShare           float64 `json:"negative_share"`
	TotalLaborHoursVariance float64 `json:"total_labor_hours_variance"`
}

// GroupStat aggregates one value column for one key
type GroupStat struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Mean  float64 `json:"mean"`
}

// MonthPoint is the mean of a value column over one calendar month
type MonthPoint struct {
	Month time.Time `json:"month"`
	Label string    `json:"label"`
	Count int       `json:"count"`
	Mean  float64   `json:"mean"`
}

// Correlation is a Pearson coefficient with its two-sided p-value
type Correlation struct {
	R      float64 `json:"r"`
	PValue float64 `json:"p_value"`
	N      int     `json:"n"`
}

// Metrics computes the aggregates the dashboard pages show.
// Every method tolerates empty tables and absent columns.
type Metrics struct{}

// NewMetrics creates a new metrics calculator
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Overview summarizes the (already filtered) projects table
func (m *Metrics) Overview(projects *table.Table) Overview {
	var o Overview
	if projects.IsEmpty() {
		return o
	}

	o.ProjectCount = projects.NumRows()
	o.TotalRevenue = sum(columnFloats(projects, project.ColTotalInstallPrice))
	o.TotalCosts = sum(columnFloats(projects, project.ColTotalCosts))
	o.TotalCostsVariance = sum(columnFloats(projects, project.ColTotalCostsVariance))
	o.TotalLaborHoursVariance = sum(columnFloats(projects, project.ColLaborHoursVariance))

	margins := columnFloats(projects, project.ColActualMargin)
	if len(margins) > 0 {
		o.HasMargin = true
		o.AverageMargin, _ = stats.Mean(margins)
		o.MedianMargin, _ = stats.Median(margins)
	}

	o.NegativeCount = m.NegativeMarginProjects(projects).NumRows()
	o.NegativeShare = float64(o.NegativeCount) / float64(o.ProjectCount)
	return o
}

// NegativeMarginProjects returns the rows flagged Is_Negative_Margin
func (m *Metrics) NegativeMarginProjects(projects *table.Table) *table.Table {
	if projects == nil || !projects.Has(project.ColIsNegativeMargin) {
		return table.Empty()
	}
	return projects.Filter(func(row int) bool {
		negative, _ := projects.Value(project.ColIsNegativeMargin, row).Bool()
		return negative
	})
}

// GroupBy aggregates valueColumn per distinct keyColumn value, sorted by key.
// Rows with a missing key are skipped; missing values do not count toward Sum or Mean.
func (m *Metrics) GroupBy(projects *table.Table, keyColumn, valueColumn string) []GroupStat {
	if projects == nil || !projects.Has(keyColumn) {
		return nil
	}

	counts := make(map[string]int)
	values := make(map[string][]float64)
	for row := 0; row < projects.NumRows(); row++ {
		key := projects.Value(keyColumn, row)
		if key.Missing() {
			continue
		}
		k := key.String()
		counts[k]++
		if v, ok := coercer.CoerceNumericCell(projects.Value(valueColumn, row)); ok {
			values[k] = append(values[k], v)
		}
	}

	out := make([]GroupStat, 0, len(counts))
	for k, count := range counts {
		g := GroupStat{Key: k, Count: count}
		if vs := values[k]; len(vs) > 0 {
			g.Sum = sum(vs)
			g.Mean, _ = stats.Mean(vs)
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// LaborMarginCorrelation correlates labor-hours overrun with actual margin.
// ok is false with fewer than three complete pairs or a constant series.
func (m *Metrics) LaborMarginCorrelation(projects *table.Table) (Correlation, bool) {
	if projects == nil {
		return Correlation{}, false
	}

	var xs, ys []float64
	for row := 0; row < projects.NumRows(); row++ {
		x, xok := coercer.CoerceNumericCell(projects.Value(project.ColLaborHoursVariancePct, row))
		y, yok := coercer.CoerceNumericCell(projects.Value(project.ColActualMargin, row))
		if xok && yok {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 3 {
		return Correlation{}, false
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return Correlation{}, false
	}
	return Correlation{R: r, PValue: correlationPValue(r, len(xs)), N: len(xs)}, true
}

// MonthlyTrend averages valueColumn per calendar month of dateColumn
func (m *Metrics) MonthlyTrend(projects *table.Table, dateColumn, valueColumn string) []MonthPoint {
	if projects == nil || !projects.Has(dateColumn) {
		return nil
	}

	buckets := make(map[time.Time][]float64)
	for row := 0; row < projects.NumRows(); row++ {
		t, ok := projects.Value(dateColumn, row).Time()
		if !ok {
			continue
		}
		v, ok := coercer.CoerceNumericCell(projects.Value(valueColumn, row))
		if !ok {
			continue
		}
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		buckets[month] = append(buckets[month], v)
	}

	out := make([]MonthPoint, 0, len(buckets))
	for month, vs := range buckets {
		mean, _ := stats.Mean(vs)
		out = append(out, MonthPoint{Month: month, Label: month.Format("2006-01"), Count: len(vs), Mean: mean})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// correlationPValue is the two-sided t-test p-value for a Pearson r over n pairs
func correlationPValue(r float64, n int) float64 {
	df := float64(n - 2)
	if df <= 0 {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

// columnFloats collects the numeric cells of a column, skipping missing ones
func columnFloats(t *table.Table, name string) []float64 {
	col, ok := t.Column(name)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(col.Cells))
	for _, cell := range col.Cells {
		if v, ok := coercer.CoerceNumericCell(cell); ok {
			out = append(out, v)
		}
	}
	return out
}

func sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total, _ := stats.Sum(values)
	return total
}
