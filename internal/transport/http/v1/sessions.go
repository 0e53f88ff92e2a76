package v1

import (
	"net/http"

	"github.com/interviewlab/coach/internal/domain"
	"github.com/labstack/echo/v4"
)

// CreateSession starts a new interview session. The response carries the
// interviewer's opening turn so the client can render it immediately.
// POST /v1/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Topic == "" && req.JDText == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "topic or jd_text is required"})
	}

	session, opening, err := h.service.CreateSession(ctx, userID(c), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"session": session,
		"opening": opening,
	})
}

// GetSession returns a session with its transcript.
// GET /v1/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()

	session, turns, err := h.service.GetSession(ctx, userID(c), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session": session,
		"turns":   turns,
	})
}

// RecordAnswer submits one candidate answer and returns the interviewer's
// reply. A transient reply (generator outage) comes back as 503 with retry
// semantics: nothing was recorded, send the same answer again.
// POST /v1/sessions/:session_id/answers
func (h *Handler) RecordAnswer(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.AnswerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}

	resp, err := h.service.RecordAnswer(ctx, userID(c), c.Param("session_id"), req)
	if err != nil {
		return writeError(c, err)
	}
	if resp.Transient {
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// FinishInterview generates (or returns the already stored) final report and
// concludes the session.
// POST /v1/sessions/:session_id/report
func (h *Handler) FinishInterview(c echo.Context) error {
	ctx := c.Request().Context()

	report, err := h.service.FinishInterview(ctx, userID(c), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// GetReport returns the stored report without generating one.
// GET /v1/sessions/:session_id/report
func (h *Handler) GetReport(c echo.Context) error {
	ctx := c.Request().Context()

	report, err := h.service.GetReport(ctx, userID(c), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
