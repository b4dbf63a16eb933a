package ui

import (
	"context"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"profitpulse/app"
	"profitpulse/domain/table"
	"profitpulse/models"
)

const recentAnalyses = 5

type loginData struct {
	Title string
	Error string
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

func (s *Server) handleLoginPage(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "login.html", loginData{Title: "Project Profit Pulse"})
}

func (s *Server) handleLogin(c *gin.Context) {
	if !s.checkPassword(c.PostForm("password")) {
		s.logger.Warn("failed login from %s", c.ClientIP())
		s.renderTemplate(c, http.StatusUnauthorized, "login.html", loginData{
			Title: "Project Profit Pulse",
			Error: "😕 Password incorrect",
		})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, s.token, int((7 * 24 * time.Hour).Seconds()), "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) handleIndex(c *gin.Context) {
	page := resolvePage(c.Query("page"))
	data, _ := s.buildPage(c.Request.Context(), c.Request.URL.Query(), page)
	s.renderTemplate(c, http.StatusOK, "index.html", data)
}

// handleAnalyze runs the negative-margin analysis on the filtered projects
func (s *Server) handleAnalyze(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}

	ctx := c.Request.Context()
	data, filtered := s.buildPage(ctx, c.Request.Form, PageAI)
	if data.NoData || data.AI == nil || s.analyzer == nil {
		s.renderTemplate(c, http.StatusOK, "index.html", data)
		return
	}

	analysis, err := s.analyzer.Analyze(ctx, filtered)
	if err != nil {
		s.logger.Warn("analysis aborted: %v", err)
		data.Error = "The analysis was cancelled before it finished."
		s.renderTemplate(c, http.StatusOK, "index.html", data)
		return
	}

	data.AI.Analysis = analysis
	data.AI.HTML = template.HTML(analysis.HTML)
	data.AI.Recent = s.recentAnalyses(ctx)
	s.renderTemplate(c, http.StatusOK, "index.html", data)
}

// buildPage loads the tables, applies the sidebar filter and prepares the
// selected page. It returns the filtered projects alongside the page data.
func (s *Server) buildPage(ctx context.Context, q url.Values, page string) (*pageData, *table.Table) {
	result := s.loader.Load(ctx)
	projects := result.Projects

	data := &pageData{Title: "Project Profit Pulse", Page: page, Nav: navFor(page)}
	if !result.OK() {
		data.Warning = "The data files could not be loaded. Check the server logs for details."
	}

	opts, err := app.FilterFromQuery(q, projects)
	if err != nil {
		data.Error = err.Error()
		opts, _ = app.FilterFromQuery(url.Values{"region": {q.Get("region")}}, projects)
	}

	dated := app.ApplyFilters(projects, app.FilterOptions{DateColumn: opts.DateColumn, Start: opts.Start, End: opts.End})
	filtered := app.ApplyFilters(dated, app.FilterOptions{DateColumn: opts.DateColumn, Region: opts.Region})

	data.Filter = FilterView{
		Start:   dateString(opts.Start),
		End:     dateString(opts.End),
		Region:  opts.Region,
		Regions: app.RegionOptions(dated),
	}
	if earliest, latest, ok := app.DateBounds(projects, opts.DateColumn); ok {
		data.Filter.HasDate = true
		data.Filter.MinDate = dateString(earliest)
		data.Filter.MaxDate = dateString(latest)
	}

	data.NoData = projects.IsEmpty()
	if data.NoData {
		return data, filtered
	}
	data.NoMatches = filtered.IsEmpty()

	switch page {
	case PageNegative:
		data.Negative = buildNegative(s.metrics, filtered)
	case PagePersonnel:
		data.Personnel = buildPersonnel(s.metrics, filtered)
	case PageDetails:
		details := newTableView(filtered, 0)
		data.Details = &details
	case PageAI:
		data.AI = &AIView{
			NegativeCount: s.metrics.NegativeMarginProjects(filtered).NumRows(),
			Recent:        s.recentAnalyses(ctx),
		}
	default:
		data.Dashboard = buildDashboard(s.metrics, result.Summary, filtered)
	}
	return data, filtered
}

func (s *Server) recentAnalyses(ctx context.Context) []*models.Analysis {
	if s.repo == nil {
		return nil
	}
	recent, err := s.repo.List(ctx, recentAnalyses)
	if err != nil {
		s.logger.Warn("failed to list recent analyses: %v", err)
		return nil
	}
	return recent
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(app.QueryDateLayout)
}
