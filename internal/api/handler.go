package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"profitpulse/app"
	"profitpulse/domain/core"
	"profitpulse/domain/table"
	"profitpulse/internal"
	"profitpulse/internal/errors"
	"profitpulse/ports"
)

// Handler serves the dashboard tables, metrics and stored analyses as JSON
type Handler struct {
	loader  ports.TableLoader
	metrics *app.Metrics
	repo    ports.AnalysisRepository
	logger  *internal.Logger
}

// NewHandler creates a new API handler. repo may be nil.
func NewHandler(loader ports.TableLoader, repo ports.AnalysisRepository, logger *internal.Logger) *Handler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Handler{
		loader:  loader,
		metrics: app.NewMetrics(),
		repo:    repo,
		logger:  logger.With("API"),
	}
}

// TableResponse wraps a table with its load status
type TableResponse struct {
	Rows    int          `json:"row_count"`
	Table   *table.Table `json:"table"`
	Warning string       `json:"warning,omitempty"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Routes returns a chi router for the API endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)
	r.Get("/projects", h.GetProjects)
	r.Get("/metrics/overview", h.GetOverview)
	r.Get("/analyses", h.ListAnalyses)
	r.Get("/analyses/{id}", h.GetAnalysis)
	return r
}

// GetSummary returns the summary table
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	result := h.loader.Load(r.Context())
	render.JSON(w, r, TableResponse{Rows: result.Summary.NumRows(), Table: result.Summary, Warning: loadWarning(result)})
}

// GetProjects returns the projects table narrowed by start, end and region
func (h *Handler) GetProjects(w http.ResponseWriter, r *http.Request) {
	projects, warning, ok := h.filteredProjects(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, TableResponse{Rows: projects.NumRows(), Table: projects, Warning: warning})
}

// GetOverview returns the headline metrics of the filtered projects
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	projects, _, ok := h.filteredProjects(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, h.metrics.Overview(projects))
}

// ListAnalyses returns the newest stored analyses
func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		render.JSON(w, r, []interface{}{})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.respondError(w, r, errors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}

	analyses, err := h.repo.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list analyses: %v", err)
		h.respondError(w, r, errors.InternalError("failed to list analyses"))
		return
	}
	render.JSON(w, r, analyses)
}

// GetAnalysis returns one stored analysis with its rendered HTML
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseAnalysisID(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, errors.InvalidInput(err.Error()))
		return
	}
	if h.repo == nil {
		h.respondError(w, r, errors.NotFound("analysis"))
		return
	}

	analysis, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.GetCode(err) != errors.CodeNotFound {
			h.logger.Error("failed to get analysis %s: %v", id, err)
			err = errors.InternalError("failed to get analysis")
		}
		h.respondError(w, r, err)
		return
	}
	analysis.HTML = app.RenderMarkdown(analysis.Markdown)
	render.JSON(w, r, analysis)
}

func (h *Handler) filteredProjects(w http.ResponseWriter, r *http.Request) (*table.Table, string, bool) {
	result := h.loader.Load(r.Context())
	opts, err := app.FilterFromQuery(r.URL.Query(), result.Projects)
	if err != nil {
		h.respondError(w, r, errors.InvalidInput(err.Error()))
		return nil, "", false
	}
	return app.ApplyFilters(result.Projects, opts), loadWarning(result), true
}

// respondError writes err with the status of its code. Errors without a code
// never reach the client verbatim.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.IsAppError(err) {
		h.logger.Error("unclassified error: %v", err)
		err = errors.InternalError("internal error")
	}
	render.Status(r, statusForCode(errors.GetCode(err)))
	render.JSON(w, r, ErrorResponse{Error: err.Error(), Timestamp: time.Now().UTC()})
}

func statusForCode(code string) int {
	switch code {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeUnauthorized:
		return http.StatusUnauthorized
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// loadWarning explains a degraded load without leaking file paths
func loadWarning(result table.LoadResult) string {
	if result.OK() {
		return ""
	}
	return "No data available: the source files could not be loaded"
}
