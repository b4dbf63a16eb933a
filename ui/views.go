package ui

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"profitpulse/adapters/coercer"
	"profitpulse/app"
	"profitpulse/domain/project"
	"profitpulse/domain/table"
	"profitpulse/models"
)

// Page names accepted by ?page=
const (
	PageDashboard = "Dashboard"
	PageNegative  = "Negative"
	PagePersonnel = "Personnel"
	PageDetails   = "Details"
	PageAI        = "AI"
)

// NavItem is one sidebar button
type NavItem struct {
	Page    string
	Label   string
	Icon    string
	Current bool
}

var navPages = []NavItem{
	{Page: PageDashboard, Label: "Dashboard Overview", Icon: "📊"},
	{Page: PageNegative, Label: "Negative Margin Projects", Icon: "📉"},
	{Page: PagePersonnel, Label: "Personnel Analysis", Icon: "👥"},
	{Page: PageDetails, Label: "Project Details", Icon: "🔍"},
	{Page: PageAI, Label: "AI Project Analysis", Icon: "🤖"},
}

// resolvePage maps an unknown page name to the dashboard
func resolvePage(name string) string {
	for _, item := range navPages {
		if item.Page == name {
			return name
		}
	}
	return PageDashboard
}

func navFor(current string) []NavItem {
	items := make([]NavItem, len(navPages))
	for i, item := range navPages {
		item.Current = item.Page == current
		items[i] = item
	}
	return items
}

// FilterView is the sidebar state echoed back into the form
type FilterView struct {
	Start   string
	End     string
	MinDate string
	MaxDate string
	Region  string
	Regions []string
	HasDate bool
}

// Query renders the filter as a query string suffix for navigation links
func (f FilterView) Query() template.URL {
	var parts []string
	if f.Start != "" {
		parts = append(parts, "start="+f.Start)
	}
	if f.End != "" {
		parts = append(parts, "end="+f.End)
	}
	if f.Region != "" && f.Region != app.AllRegions {
		parts = append(parts, "region="+template.URLQueryEscaper(f.Region))
	}
	if len(parts) == 0 {
		return ""
	}
	return template.URL("&" + strings.Join(parts, "&"))
}

// TableView is a table pre-formatted for display
type TableView struct {
	Headers []string
	Rows    [][]string
	Total   int
}

// MetricCard is one headline number
type MetricCard struct {
	Title    string
	Value    string
	Negative bool
}

// DashboardView is the overview page
type DashboardView struct {
	Cards   []MetricCard
	Summary TableView
	Charts  []*Figure
}

// NegativeView lists projects with a negative actual margin
type NegativeView struct {
	Count       int
	Projects    TableView
	Charts      []*Figure
	Correlation string
}

// PersonnelView compares owners
type PersonnelView struct {
	Owners []app.GroupStat
	Charts []*Figure
}

// AIView holds the latest analysis and recent history
type AIView struct {
	NegativeCount int
	Analysis      *models.Analysis
	HTML          template.HTML
	Recent        []*models.Analysis
}

// pageData is everything index.html renders
type pageData struct {
	Title     string
	Page      string
	Nav       []NavItem
	Filter    FilterView
	NoData    bool
	NoMatches bool
	Error     string
	Warning   string
	Dashboard *DashboardView
	Negative  *NegativeView
	Personnel *PersonnelView
	Details   *TableView
	AI        *AIView
}

// newTableView formats up to limit rows by column role. limit <= 0 shows all rows.
func newTableView(t *table.Table, limit int) TableView {
	view := TableView{Headers: t.Names(), Total: t.NumRows()}
	rows := t
	if limit > 0 {
		rows = t.Head(limit)
	}
	cols := rows.Columns()
	for row := 0; row < rows.NumRows(); row++ {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = formatCell(col.Name, col.Role, col.Cells[row])
		}
		view.Rows = append(view.Rows, cells)
	}
	return view
}

func formatCell(name string, role table.Role, v table.Value) string {
	if v.Missing() {
		return ""
	}
	if b, ok := v.Bool(); ok {
		if b {
			return "Yes"
		}
		return "No"
	}
	if _, ok := v.Text(); ok {
		return v.String()
	}

	switch role {
	case table.RoleMonetary:
		return coercer.FormatCurrency(v)
	case table.RolePercentage:
		return coercer.FormatPercentage(v)
	}
	if name == project.ColMarginDifference || name == project.ColLaborHoursVariancePct {
		return coercer.FormatPercentage(v)
	}
	if n, ok := v.Float64(); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return v.String()
}

// groupTable turns group stats into a two-column table for the chart builders
func groupTable(stats []app.GroupStat, keyName string, valueName string, useSum bool) *table.Table {
	t := table.New(len(stats))
	keys := make([]table.Value, len(stats))
	values := make([]table.Value, len(stats))
	for i, s := range stats {
		keys[i] = table.NewStringValue(s.Key)
		if useSum {
			values[i] = table.NewNumericValue(s.Sum)
		} else {
			values[i] = table.NewNumericValue(s.Mean)
		}
	}
	t.SetColumn(keyName, table.RoleText, keys)
	t.SetColumn(valueName, table.RoleDerived, values)
	return t
}

func trendTable(points []app.MonthPoint, valueName string) *table.Table {
	t := table.New(len(points))
	months := make([]table.Value, len(points))
	values := make([]table.Value, len(points))
	for i, p := range points {
		months[i] = table.NewStringValue(p.Label)
		values[i] = table.NewNumericValue(p.Mean)
	}
	t.SetColumn("Month", table.RoleText, months)
	t.SetColumn(valueName, table.RoleDerived, values)
	return t
}

func buildDashboard(m *app.Metrics, summary, projects *table.Table) *DashboardView {
	o := m.Overview(projects)
	view := &DashboardView{
		Cards: []MetricCard{
			{Title: "Projects", Value: strconv.Itoa(o.ProjectCount)},
			{Title: "Total Revenue", Value: coercer.FormatCurrency(o.TotalRevenue)},
			{Title: "Total Costs", Value: coercer.FormatCurrency(o.TotalCosts)},
			{Title: "Negative Margin Projects", Value: fmt.Sprintf("%d (%s)", o.NegativeCount, coercer.FormatPercentage(o.NegativeShare)), Negative: o.NegativeCount > 0},
		},
		Summary: newTableView(summary, 0),
	}
	if o.HasMargin {
		view.Cards = append(view.Cards,
			MetricCard{Title: "Average Margin", Value: coercer.FormatPercentage(o.AverageMargin), Negative: o.AverageMargin < 0},
			MetricCard{Title: "Median Margin", Value: coercer.FormatPercentage(o.MedianMargin), Negative: o.MedianMargin < 0},
		)
	}

	if byRegion := m.GroupBy(projects, project.ColRegion, project.ColActualMargin); len(byRegion) > 0 && projects.Has(project.ColActualMargin) {
		view.Charts = append(view.Charts,
			BarChart(groupTable(byRegion, project.ColRegion, project.ColActualMargin, false),
				project.ColRegion, project.ColActualMargin, "Average Margin by Region", Vertical, nil))
	}
	if revenue := m.GroupBy(projects, project.ColRegion, project.ColTotalInstallPrice); len(revenue) > 0 && projects.Has(project.ColTotalInstallPrice) {
		view.Charts = append(view.Charts,
			PieChart(groupTable(revenue, project.ColRegion, project.ColTotalInstallPrice, true),
				project.ColTotalInstallPrice, project.ColRegion, "Revenue by Region"))
	}
	if trend := m.MonthlyTrend(projects, project.ColProjectedEndDate, project.ColActualMargin); len(trend) > 0 {
		view.Charts = append(view.Charts,
			LineChart(trendTable(trend, project.ColActualMargin), "Month", []string{project.ColActualMargin}, "Average Margin by Month"))
	}
	return view
}

func buildNegative(m *app.Metrics, projects *table.Table) *NegativeView {
	negative := m.NegativeMarginProjects(projects)
	columns := make([]string, 0, len(project.AnalysisColumns)+1)
	columns = append(columns, project.AnalysisColumns...)
	columns = append(columns, project.ColMarginDifference)
	view := &NegativeView{
		Count:    negative.NumRows(),
		Projects: newTableView(negative.Select(columns...), 0),
	}
	if negative.NumRows() > 0 {
		view.Charts = append(view.Charts,
			BarChart(negative, project.ColTopic, project.ColActualMargin, "Actual Margin % by Project", Horizontal, nil))
		if negative.Has(project.ColTotalCostsVariance) {
			view.Charts = append(view.Charts,
				BarChart(negative, project.ColTopic, project.ColTotalCostsVariance, "Total Costs Variance $ by Project", Vertical, nil))
		}
	}
	if c, ok := m.LaborMarginCorrelation(projects); ok {
		view.Correlation = fmt.Sprintf("r = %.2f (p = %.3f, n = %d)", c.R, c.PValue, c.N)
	}
	return view
}

func buildPersonnel(m *app.Metrics, projects *table.Table) *PersonnelView {
	view := &PersonnelView{Owners: m.GroupBy(projects, project.ColOwner, project.ColActualMargin)}
	if len(view.Owners) > 0 && projects.Has(project.ColActualMargin) {
		view.Charts = append(view.Charts,
			BarChart(groupTable(view.Owners, project.ColOwner, project.ColActualMargin, false),
				project.ColOwner, project.ColActualMargin, "Average Margin by Owner", Vertical, nil))
	}
	if hours := m.GroupBy(projects, project.ColOwner, project.ColLaborHoursVariance); len(hours) > 0 && projects.Has(project.ColLaborHoursVariance) {
		view.Charts = append(view.Charts,
			BarChart(groupTable(hours, project.ColOwner, project.ColLaborHoursVariance, true),
				project.ColOwner, project.ColLaborHoursVariance, "Labor Hours Variance by Owner", Vertical, nil))
	}
	return view
}
