package api

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"vacstat/internal/models"
)

type Handler struct {
	mu     sync.RWMutex
	data   *models.Report
	failed error
}

func NewHandler(data *models.Report) *Handler {
	return &Handler{data: data}
}

// SetData swaps in a finished report.
func (h *Handler) SetData(r *models.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.data = r
	h.failed = nil
}

// SetError records a failed pipeline run; data routes keep answering 503.
func (h *Handler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed = err
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/status", h.GetStatus)
	api.GET("/report", h.GetReport)
	api.GET("/years", h.GetYears)
	api.GET("/cities/salary", h.GetCitySalary)
	api.GET("/cities/share", h.GetCityShare)
}

// --- HANDLERS ---
func getLimit(c echo.Context, defaultLimit int) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	return limit
}

func (h *Handler) report() *models.Report {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.data
}

func loading(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
}

func (h *Handler) GetStatus(c echo.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	switch {
	case h.failed != nil:
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "failed", "error": h.failed.Error()})
	case h.data == nil:
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":       "ready",
		"source":       h.data.Source,
		"records":      h.data.Records,
		"partitions":   h.data.Partitions,
		"generated_at": h.data.GeneratedAt,
	})
}

func (h *Handler) GetReport(c echo.Context) error {
	r := h.report()
	if r == nil {
		return loading(c)
	}
	return c.JSON(http.StatusOK, r)
}

// year dynamics for all vacancies and for the profession
func (h *Handler) GetYears(c echo.Context) error {
	r := h.report()
	if r == nil {
		return loading(c)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"profession": r.Profession,
		"data":       r.Years,
	})
}

// returns top cities by mean salary
func (h *Handler) GetCitySalary(c echo.Context) error {
	r := h.report()
	if r == nil {
		return loading(c)
	}
	data := r.Cities.SalaryByCity
	limit := getLimit(c, len(data))

	if limit < len(data) {
		return c.JSON(http.StatusOK, data[:limit])
	}
	return c.JSON(http.StatusOK, data)
}

// returns top cities by vacancy share
func (h *Handler) GetCityShare(c echo.Context) error {
	r := h.report()
	if r == nil {
		return loading(c)
	}
	data := r.Cities.ShareByCity
	limit := getLimit(c, len(data))

	if limit < len(data) {
		return c.JSON(http.StatusOK, data[:limit])
	}
	return c.JSON(http.StatusOK, data)
}
