package v1

import (
	"net/http"
	"strconv"

	"github.com/interviewlab/coach/internal/domain"
	"github.com/labstack/echo/v4"
)

// CreateDailyPlan returns today's study plan, generating it on the first
// request of the day.
// POST /v1/plans/today
func (h *Handler) CreateDailyPlan(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.DailyPlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	plan, err := h.service.DailyPlan(ctx, userID(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

// GetDailyPlan returns today's plan if one exists.
// GET /v1/plans/today
func (h *Handler) GetDailyPlan(c echo.Context) error {
	ctx := c.Request().Context()

	plan, err := h.service.TodayPlan(ctx, userID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

// CompletePlanTask marks one task on today's plan as done.
// PATCH /v1/plans/today/tasks/:index
func (h *Handler) CompletePlanTask(c echo.Context) error {
	ctx := c.Request().Context()

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid task index"})
	}

	plan, err := h.service.CompletePlanTask(ctx, userID(c), index)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

// SaveReflection stores an end-of-day note on today's plan.
// PUT /v1/plans/today/reflection
func (h *Handler) SaveReflection(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.ReflectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Reflection == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "reflection is required"})
	}

	plan, err := h.service.SaveReflection(ctx, userID(c), req.Reflection)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

// Roadmap generates a phased preparation roadmap.
// POST /v1/roadmap
func (h *Handler) Roadmap(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.RoadmapRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.TargetRole == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "target_role is required"})
	}

	roadmap, err := h.service.Roadmap(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, roadmap)
}

// Progress returns the user's ability radar and trend.
// GET /v1/progress
func (h *Handler) Progress(c echo.Context) error {
	ctx := c.Request().Context()

	report, err := h.service.Progress(ctx, userID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
