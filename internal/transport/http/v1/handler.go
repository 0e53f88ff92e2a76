// Package v1 provides the HTTP API of the coach service.
package v1

import (
	"errors"
	"net/http"

	"github.com/interviewlab/coach/internal/service"
	"github.com/interviewlab/coach/internal/store"
	"github.com/labstack/echo/v4"
)

// userHeader identifies the calling user. There is no auth layer in front of
// the service yet; the header is trusted as-is.
const userHeader = "X-User-ID"

const defaultUser = "default_user"

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers the API routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Interview sessions
	e.POST("/v1/sessions", h.CreateSession)
	e.GET("/v1/sessions/:session_id", h.GetSession)
	e.POST("/v1/sessions/:session_id/answers", h.RecordAnswer)
	e.POST("/v1/sessions/:session_id/report", h.FinishInterview)
	e.GET("/v1/sessions/:session_id/report", h.GetReport)

	// Study planning
	e.POST("/v1/plans/today", h.CreateDailyPlan)
	e.GET("/v1/plans/today", h.GetDailyPlan)
	e.PATCH("/v1/plans/today/tasks/:index", h.CompletePlanTask)
	e.PUT("/v1/plans/today/reflection", h.SaveReflection)
	e.POST("/v1/roadmap", h.Roadmap)
	e.GET("/v1/roadmap/templates", h.ListRoadmapTemplates)
	e.GET("/v1/roadmap/templates/:name", h.GetRoadmapTemplate)

	// Knowledge library
	e.GET("/v1/library", h.ListLibraryDocs)
	e.GET("/v1/library/:title", h.GetLibraryDoc)
	e.POST("/v1/library/research", h.ResearchTopic)
	e.DELETE("/v1/library/:title", h.DeleteLibraryDoc)

	// Progress and job scouting
	e.GET("/v1/progress", h.Progress)
	e.GET("/v1/jobs", h.ListJobs)
	e.POST("/v1/jobs/analyze", h.AnalyzeJD)
	e.POST("/v1/jobs/analyze/pdf", h.AnalyzeJDPDF)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

func userID(c echo.Context) string {
	if id := c.Request().Header.Get(userHeader); id != "" {
		return id
	}
	return defaultUser
}

func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrCuratedDoc):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
