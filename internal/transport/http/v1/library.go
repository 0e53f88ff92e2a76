package v1

import (
	"net/http"
	"net/url"

	"github.com/interviewlab/coach/internal/domain"
	"github.com/labstack/echo/v4"
)

// ListLibraryDocs lists the knowledge library: curated docs plus the user's
// researched notes.
// GET /v1/library
func (h *Handler) ListLibraryDocs(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.LibraryDocs(userID(c)))
}

// GetLibraryDoc returns one library doc by title.
// GET /v1/library/:title
func (h *Handler) GetLibraryDoc(c echo.Context) error {
	doc, err := h.service.LibraryDoc(userID(c), pathTitle(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// ResearchTopic generates a technical note on a topic and files it in the
// user's library.
// POST /v1/library/research
func (h *Handler) ResearchTopic(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.ResearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Topic == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "topic is required"})
	}

	doc, err := h.service.Research(ctx, userID(c), req.Topic)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// DeleteLibraryDoc removes one of the user's researched notes. Curated docs
// are refused.
// DELETE /v1/library/:title
func (h *Handler) DeleteLibraryDoc(c echo.Context) error {
	if err := h.service.DeleteLibraryDoc(userID(c), pathTitle(c)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRoadmapTemplates lists the curated roadmap tracks.
// GET /v1/roadmap/templates
func (h *Handler) ListRoadmapTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.RoadmapTemplates())
}

// GetRoadmapTemplate returns one curated track by name.
// GET /v1/roadmap/templates/:name
func (h *Handler) GetRoadmapTemplate(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("name"))
	if err != nil {
		name = c.Param("name")
	}
	tpl, err := h.service.RoadmapTemplate(name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tpl)
}

// pathTitle decodes the :title path segment; doc titles contain spaces.
func pathTitle(c echo.Context) string {
	title, err := url.PathUnescape(c.Param("title"))
	if err != nil {
		return c.Param("title")
	}
	return title
}
