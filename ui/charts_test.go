package ui

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profitpulse/domain/table"
)

func chartFixture() *table.Table {
	t := table.New(4)
	t.SetColumn("Topic", table.RoleText, []table.Value{
		table.NewStringValue("Roof Repair"), table.NewStringValue("Boiler"),
		table.NewStringValue("HVAC"), table.NewStringValue("Gutters"),
	})
	t.SetColumn("Variance", table.RoleText, []table.Value{
		table.NewStringValue("$1,200"), table.NewNumericValue(-300),
		table.NewStringValue("pending"), table.NewMissingValue(),
	})
	t.SetColumn("Share", table.RoleText, []table.Value{
		table.NewStringValue("25%"), table.NewStringValue("75%"),
		table.NewMissingValue(), table.NewNumericValue(0.1),
	})
	return t
}

func bounds(t *testing.T, r []*float64) (float64, *float64) {
	t.Helper()
	require.Len(t, r, 2)
	require.NotNil(t, r[0])
	return *r[0], r[1]
}

func TestAxisRange(t *testing.T) {
	yMin := -50.0

	tests := []struct {
		name    string
		values  []float64
		title   string
		yMin    *float64
		lower   float64
		upper   float64
		noUpper bool
	}{
		{name: "explicit minimum", values: []float64{-10, 100}, title: "Anything", yMin: &yMin, lower: -50, upper: 110},
		{name: "financial positive only", values: []float64{10, 100}, title: "Total Costs $", lower: -20, upper: 110},
		{name: "financial deep negative", values: []float64{-100, 50}, title: "Labor Variance", lower: -110, upper: 55},
		{name: "financial shallow negative", values: []float64{-1, 100}, title: "Margin by Region", lower: -20, upper: 110},
		{name: "plain positive", values: []float64{3, 9}, title: "Projects per Owner", lower: 0, upper: 9.9},
		{name: "plain negative", values: []float64{-4, 8}, title: "Hours", lower: -4.4, upper: 8.8},
		{name: "plain all negative leaves top open", values: []float64{-4, -2}, title: "Hours", lower: -4.4, noUpper: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, upper := bounds(t, AxisRange(tt.values, tt.title, tt.yMin))
			assert.InDelta(t, tt.lower, lower, 1e-9)
			if tt.noUpper {
				assert.Nil(t, upper)
				return
			}
			require.NotNil(t, upper)
			assert.InDelta(t, tt.upper, *upper, 1e-9)
		})
	}

	assert.Nil(t, AxisRange(nil, "Total Costs $", nil))
}

func TestBarChartColorsAndCleaning(t *testing.T) {
	src := chartFixture()
	before := src.Fingerprint()

	fig := BarChart(src, "Topic", "Variance", "Variance $ by Project", Vertical, nil)
	require.Len(t, fig.Data, 1)
	bar := fig.Data[0]

	assert.Equal(t, []interface{}{"Roof Repair", "Boiler"}, bar.X)
	assert.Equal(t, []interface{}{1200.0, -300.0}, bar.Y)
	assert.Equal(t, []string{positiveColor, negativeColor}, bar.Marker.Color)
	assert.NotNil(t, fig.Layout.YAxis.Range)
	assert.Nil(t, fig.Layout.XAxis.Range)

	assert.Equal(t, before, src.Fingerprint(), "chart building must not touch the source table")
}

func TestBarChartHorizontalMovesRangeToXAxis(t *testing.T) {
	fig := BarChart(chartFixture(), "Topic", "Variance", "Variance", Horizontal, nil)
	bar := fig.Data[0]

	assert.Equal(t, Horizontal, bar.Orientation)
	assert.Equal(t, []interface{}{"Roof Repair", "Boiler"}, bar.Y)
	assert.NotNil(t, fig.Layout.XAxis.Range)
	assert.Nil(t, fig.Layout.YAxis.Range)
}

func TestLineChartLeavesGaps(t *testing.T) {
	fig := LineChart(chartFixture(), "Topic", []string{"Share", "Absent"}, "Share over time")
	require.Len(t, fig.Data, 1)

	line := fig.Data[0]
	assert.Equal(t, "lines+markers", line.Mode)
	require.Len(t, line.Y, 4)
	assert.InDelta(t, 0.25, line.Y[0], 1e-12)
	assert.InDelta(t, 0.75, line.Y[1], 1e-12)
	assert.Nil(t, line.Y[2])
	assert.InDelta(t, 0.1, line.Y[3], 1e-12)
}

func TestPieChartIsDonut(t *testing.T) {
	fig := PieChart(chartFixture(), "Share", "Topic", "Share by Project")
	pie := fig.Data[0]

	assert.Equal(t, 0.4, pie.Hole)
	assert.Equal(t, []string{"Roof Repair", "Boiler", "Gutters"}, pie.Labels)
	assert.InDeltaSlice(t, []float64{0.25, 0.75, 0.1}, pie.Values, 1e-12)
	assert.Equal(t, 3, fig.Points())
}

func TestFigureJSON(t *testing.T) {
	fig := BarChart(chartFixture(), "Topic", "Variance", "Hours", Vertical, nil)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(fig.JSON()), &decoded))
	assert.Contains(t, decoded, "data")
	layout := decoded["layout"].(map[string]interface{})
	assert.Equal(t, "plotly_dark", layout["template"])
}
