package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "niftycli/internal/errors"
	"niftycli/internal/middleware"
	"niftycli/internal/services"
)

// nRule bounds every n query parameter
const nRule = "min=1,max=100"

// DashboardHandler serves the analytics accessors as JSON
type DashboardHandler struct {
	service      AnalysisServiceInterface
	validator    *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	topN         int
	cumulativeN  int
}

// NewDashboardHandler creates a dashboard handler. topN and cumulativeN are
// the defaults used when n is absent.
func NewDashboardHandler(service AnalysisServiceInterface, topN, cumulativeN int, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	logger = logger.With(slog.String("component", "dashboard_handler"))
	return &DashboardHandler{
		service:      service,
		validator:    middleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger,
		errorHandler: errorHandler,
		topN:         topN,
		cumulativeN:  cumulativeN,
	}
}

// Routes returns the dashboard routes as a standalone router
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the dashboard routes on r
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/overview", h.GetOverview)
	r.Get("/performers", h.GetPerformers)
	r.Get("/sectors", h.GetSectors)
	r.Get("/volatility", h.GetVolatility)
	r.Get("/correlation", h.GetCorrelation)
	r.Get("/cumulative", h.GetCumulative)
	r.Get("/symbols", h.GetSymbols)
	r.Get("/symbols/{symbol}", h.GetSymbol)
	r.Post("/refresh", h.PostRefresh)
}

// handleServiceError maps service errors onto API errors
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoSnapshot):
		err = apierrors.ErrNoAnalysis
	case errors.Is(err, services.ErrSymbolNotFound):
		err = apierrors.ErrSymbolNotFound
	case errors.Is(err, services.ErrRefreshRunning):
		err = apierrors.ErrRefreshRunning
	}
	h.errorHandler.HandleError(w, r, err)
}

// GetOverview handles GET /api/overview
func (h *DashboardHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, overview)
}

// GetPerformers handles GET /api/performers?n=
func (h *DashboardHandler) GetPerformers(w http.ResponseWriter, r *http.Request) {
	n, ok := h.validator.ValidateInt(w, r, "n", nRule, h.topN)
	if !ok {
		return
	}
	view, err := h.service.Performers(r.Context(), n)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetSectors handles GET /api/sectors
func (h *DashboardHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := h.service.Sectors(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"sectors": sectors})
}

// GetVolatility handles GET /api/volatility?n=
func (h *DashboardHandler) GetVolatility(w http.ResponseWriter, r *http.Request) {
	n, ok := h.validator.ValidateInt(w, r, "n", nRule, h.topN)
	if !ok {
		return
	}
	ranked, err := h.service.Volatility(r.Context(), n)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"symbols": ranked})
}

// GetCorrelation handles GET /api/correlation
func (h *DashboardHandler) GetCorrelation(w http.ResponseWriter, r *http.Request) {
	matrix, err := h.service.Correlation(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, matrix)
}

// GetCumulative handles GET /api/cumulative?n=
func (h *DashboardHandler) GetCumulative(w http.ResponseWriter, r *http.Request) {
	n, ok := h.validator.ValidateInt(w, r, "n", nRule, h.cumulativeN)
	if !ok {
		return
	}
	curves, err := h.service.Cumulative(r.Context(), n)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"series": curves})
}

// GetSymbols handles GET /api/symbols
func (h *DashboardHandler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Symbols(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

// GetSymbol handles GET /api/symbols/{symbol}
func (h *DashboardHandler) GetSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if !h.validator.ValidateSymbol(w, r, "symbol", symbol) {
		return
	}
	m, err := h.service.Symbol(r.Context(), symbol)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, m)
}

// PostRefresh handles POST /api/refresh
func (h *DashboardHandler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Refresh(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "refresh request failed", slog.String("error", err.Error()))
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}
