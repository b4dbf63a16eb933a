package ui

import (
	"encoding/json"
	"html/template"
	"strings"

	"profitpulse/adapters/coercer"
	"profitpulse/domain/table"
)

const (
	positiveColor = "#40CC5A"
	negativeColor = "#F04D4D"
)

var lineColors = []string{"#4D6FF3", "#F04D4D", "#40CC5A", "#E6C830", "#9850E6", "#F98D00", "#00D0FA"}

var pieColors = []string{
	"#4CAF50", "#2196F3", "#F44336", "#FF9800", "#9C27B0",
	"#00BCD4", "#FFEB3B", "#8BC34A", "#3F51B5", "#009688",
	"#673AB7", "#CDDC39", "#795548", "#E91E63", "#607D8B",
}

var financialTerms = []string{"$", "variance", "margin", "cost"}

// Orientation of a bar chart
type Orientation string

const (
	Vertical   Orientation = "v"
	Horizontal Orientation = "h"
)

// Figure is a Plotly figure: traces plus layout
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly trace. Only the fields the dashboard uses are modelled.
type Trace struct {
	Type        string        `json:"type"`
	Name        string        `json:"name,omitempty"`
	X           []interface{} `json:"x,omitempty"`
	Y           []interface{} `json:"y,omitempty"`
	Labels      []string      `json:"labels,omitempty"`
	Values      []float64     `json:"values,omitempty"`
	Orientation Orientation   `json:"orientation,omitempty"`
	Mode        string        `json:"mode,omitempty"`
	Hole        float64       `json:"hole,omitempty"`
	Marker      *Marker       `json:"marker,omitempty"`
	Line        *Line         `json:"line,omitempty"`
	ShowLegend  *bool         `json:"showlegend,omitempty"`
}

// Marker styles bars, points and pie slices
type Marker struct {
	Color  interface{} `json:"color,omitempty"`
	Colors []string    `json:"colors,omitempty"`
	Size   int         `json:"size,omitempty"`
}

// Line styles a line trace
type Line struct {
	Width int    `json:"width"`
	Color string `json:"color,omitempty"`
}

// Layout holds the figure-level settings
type Layout struct {
	Title        string `json:"title"`
	Height       int    `json:"height"`
	Template     string `json:"template"`
	PlotBGColor  string `json:"plot_bgcolor"`
	PaperBGColor string `json:"paper_bgcolor"`
	XAxis        Axis   `json:"xaxis"`
	YAxis        Axis   `json:"yaxis"`
}

// Axis holds one axis. A nil bound in Range lets Plotly pick it.
type Axis struct {
	Range    []*float64 `json:"range,omitempty"`
	ZeroLine bool       `json:"zeroline"`
	ShowGrid bool       `json:"showgrid"`
}

// JSON renders the figure for Plotly.newPlot inside a script tag
func (f *Figure) JSON() template.JS {
	raw, err := json.Marshal(f)
	if err != nil {
		return template.JS("{}")
	}
	return template.JS(raw)
}

// Points reports how many values the figure plots
func (f *Figure) Points() int {
	n := 0
	for _, tr := range f.Data {
		n += len(tr.Y) + len(tr.Values)
	}
	return n
}

func newLayout(title string) Layout {
	return Layout{
		Title:        title,
		Height:       400,
		Template:     "plotly_dark",
		PlotBGColor:  "rgba(30,30,30,0.3)",
		PaperBGColor: "rgba(0,0,0,0)",
		XAxis:        Axis{ShowGrid: true},
		YAxis:        Axis{ShowGrid: true, ZeroLine: true},
	}
}

// BarChart plots y against x with one bar per row, green for values >= 0 and red
// below. Rows whose y does not coerce to a number are left out. yMin, when set,
// fixes the lower bound of the value axis.
func BarChart(t *table.Table, x, y, title string, orientation Orientation, yMin *float64) *Figure {
	if orientation != Horizontal {
		orientation = Vertical
	}

	var labels []interface{}
	var values []interface{}
	var colors []string
	var numbers []float64
	for row := 0; row < t.NumRows(); row++ {
		n, ok := coercer.CoerceNumericCell(t.Value(y, row))
		if !ok {
			continue
		}
		labels = append(labels, t.Value(x, row).String())
		values = append(values, n)
		numbers = append(numbers, n)
		if n >= 0 {
			colors = append(colors, positiveColor)
		} else {
			colors = append(colors, negativeColor)
		}
	}

	hide := false
	trace := Trace{
		Type:        "bar",
		Orientation: orientation,
		Marker:      &Marker{Color: colors},
		ShowLegend:  &hide,
	}
	layout := newLayout(title)
	valueRange := AxisRange(numbers, title, yMin)
	if orientation == Vertical {
		trace.X, trace.Y = labels, values
		layout.YAxis.Range = valueRange
	} else {
		trace.X, trace.Y = values, labels
		layout.XAxis.Range = valueRange
	}

	return &Figure{Data: []Trace{trace}, Layout: layout}
}

// AxisRange picks the value-axis bounds for a bar chart. Financial titles always
// show some negative range so losses stay visible next to gains.
func AxisRange(values []float64, title string, yMin *float64) []*float64 {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	upper := hi * 1.1
	if yMin != nil {
		return []*float64{floatPtr(*yMin), &upper}
	}

	if isFinancial(title) {
		lower := -hi * 0.2
		if lo < 0 && lo*1.1 < lower {
			lower = lo * 1.1
		}
		return []*float64{&lower, &upper}
	}

	lower := 0.0
	if lo < 0 {
		lower = lo * 1.1
	}
	if hi > 0 {
		return []*float64{&lower, &upper}
	}
	return []*float64{&lower, nil}
}

// LineChart plots each ys column against x as a line with markers.
// Cells that do not coerce to a number become gaps.
func LineChart(t *table.Table, x string, ys []string, title string) *Figure {
	fig := &Figure{Layout: newLayout(title)}
	fig.Layout.YAxis.ZeroLine = false

	xs := make([]interface{}, t.NumRows())
	for row := range xs {
		xs[row] = t.Value(x, row).String()
	}

	for i, y := range ys {
		if !t.Has(y) {
			continue
		}
		points := make([]interface{}, t.NumRows())
		for row := range points {
			if n, ok := coercer.CoerceNumericCell(t.Value(y, row)); ok {
				points[row] = n
			}
		}
		color := lineColors[i%len(lineColors)]
		fig.Data = append(fig.Data, Trace{
			Type:   "scatter",
			Mode:   "lines+markers",
			Name:   y,
			X:      xs,
			Y:      points,
			Line:   &Line{Width: 3, Color: color},
			Marker: &Marker{Size: 8, Color: color},
		})
	}
	return fig
}

// PieChart shows the share of values per name as a donut
func PieChart(t *table.Table, values, names, title string) *Figure {
	trace := Trace{
		Type:   "pie",
		Hole:   0.4,
		Marker: &Marker{Colors: pieColors},
	}
	for row := 0; row < t.NumRows(); row++ {
		n, ok := coercer.CoerceNumericCell(t.Value(values, row))
		if !ok {
			continue
		}
		trace.Labels = append(trace.Labels, t.Value(names, row).String())
		trace.Values = append(trace.Values, n)
	}
	return &Figure{Data: []Trace{trace}, Layout: newLayout(title)}
}

func isFinancial(title string) bool {
	lower := strings.ToLower(title)
	for _, term := range financialTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func floatPtr(f float64) *float64 {
	return &f
}
