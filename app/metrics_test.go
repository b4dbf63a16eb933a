package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profitpulse/domain/project"
	"profitpulse/domain/table"
)

func nums(values ...interface{}) []table.Value {
	out := make([]table.Value, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case nil:
			out[i] = table.NewMissingValue()
		case float64:
			out[i] = table.NewNumericValue(x)
		case int:
			out[i] = table.NewNumericValue(float64(x))
		case bool:
			out[i] = table.NewBooleanValue(x)
		case string:
			out[i] = table.NewStringValue(x)
		case time.Time:
			out[i] = table.NewTimestampValue(x)
		}
	}
	return out
}

func metricsFixture() *table.Table {
	t := table.New(4)
	t.SetColumn(project.ColOwner, table.RoleText, nums("Kim", "Lee", "Kim", nil))
	t.SetColumn(project.ColActualMargin, table.RolePercentage, nums(-0.10, 0.20, 0.05, nil))
	t.SetColumn(project.ColTotalInstallPrice, table.RoleMonetary, nums(1000, 2000, 500, 250))
	t.SetColumn(project.ColTotalCosts, table.RoleMonetary, nums(1100, 1600, nil, 200))
	t.SetColumn(project.ColIsNegativeMargin, table.RoleDerived, nums(true, false, false, false))
	t.SetColumn(project.ColLaborHoursVariance, table.RoleDerived, nums(10, -2, 4, nil))
	t.SetColumn(project.ColLaborHoursVariancePct, table.RoleDerived, nums(0.5, -0.1, 0.2, nil))
	t.SetColumn(project.ColProjectedEndDate, table.RoleDate, nums(
		day(2025, 1, 5), day(2025, 1, 20), day(2025, 2, 3), nil,
	))
	return t
}

func TestOverview(t *testing.T) {
	o := NewMetrics().Overview(metricsFixture())

	assert.Equal(t, 4, o.ProjectCount)
	assert.Equal(t, 3750.0, o.TotalRevenue)
	assert.Equal(t, 2900.0, o.TotalCosts)
	assert.True(t, o.HasMargin)
	assert.InDelta(t, 0.05, o.AverageMargin, 1e-12)
	assert.InDelta(t, 0.05, o.MedianMargin, 1e-12)
	assert.Equal(t, 1, o.NegativeCount)
	assert.InDelta(t, 0.25, o.NegativeShare, 1e-12)
	assert.Equal(t, 12.0, o.TotalLaborHoursVariance)
}

func TestOverviewEmpty(t *testing.T) {
	o := NewMetrics().Overview(table.Empty())
	assert.Equal(t, Overview{}, o)
}

func TestGroupBy(t *testing.T) {
	groups := NewMetrics().GroupBy(metricsFixture(), project.ColOwner, project.ColActualMargin)
	require.Len(t, groups, 2)

	assert.Equal(t, "Kim", groups[0].Key)
	assert.Equal(t, 2, groups[0].Count)
	assert.InDelta(t, -0.05, groups[0].Sum, 1e-12)
	assert.InDelta(t, -0.025, groups[0].Mean, 1e-12)

	assert.Equal(t, "Lee", groups[1].Key)
	assert.InDelta(t, 0.2, groups[1].Mean, 1e-12)

	assert.Nil(t, NewMetrics().GroupBy(metricsFixture(), "Nope", project.ColActualMargin))
}

func TestLaborMarginCorrelation(t *testing.T) {
	corr, ok := NewMetrics().LaborMarginCorrelation(metricsFixture())
	require.True(t, ok)
	assert.Equal(t, 3, corr.N)
	assert.Less(t, corr.R, 0.0, "larger overruns go with lower margins")
	assert.GreaterOrEqual(t, corr.PValue, 0.0)
	assert.LessOrEqual(t, corr.PValue, 1.0)

	few := metricsFixture().Head(2)
	_, ok = NewMetrics().LaborMarginCorrelation(few)
	assert.False(t, ok)
}

func TestNegativeMarginProjects(t *testing.T) {
	negative := NewMetrics().NegativeMarginProjects(metricsFixture())
	require.Equal(t, 1, negative.NumRows())
	assert.Equal(t, "Kim", negative.Value(project.ColOwner, 0).String())

	assert.Equal(t, 0, NewMetrics().NegativeMarginProjects(table.Empty()).NumRows())
}

func TestMonthlyTrend(t *testing.T) {
	trend := NewMetrics().MonthlyTrend(metricsFixture(), project.ColProjectedEndDate, project.ColActualMargin)
	require.Len(t, trend, 2)

	assert.Equal(t, "2025-01", trend[0].Label)
	assert.Equal(t, 2, trend[0].Count)
	assert.InDelta(t, 0.05, trend[0].Mean, 1e-12)
	assert.Equal(t, "2025-02", trend[1].Label)
	assert.InDelta(t, 0.05, trend[1].Mean, 1e-12)
}

func TestCorrelationPValue(t *testing.T) {
	assert.Equal(t, 1.0, correlationPValue(0.5, 2))
	assert.Equal(t, 0.0, correlationPValue(1, 10))
	assert.InDelta(t, 1.0, correlationPValue(0, 10), 1e-9)
}
