package v1

import (
	"io"
	"net/http"

	"github.com/interviewlab/coach/internal/domain"
	"github.com/interviewlab/coach/internal/jobtext"
	"github.com/labstack/echo/v4"
)

// maxPDFBytes caps uploaded job-description PDFs at 10 MB.
const maxPDFBytes = 10 << 20

// ListJobs returns curated postings, optionally filtered by role keyword.
// GET /v1/jobs?role=go
func (h *Handler) ListJobs(c echo.Context) error {
	jobs := h.service.Jobs(c.QueryParam("role"))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"jobs": jobs,
	})
}

// AnalyzeJD analyzes a pasted job description.
// POST /v1/jobs/analyze
func (h *Handler) AnalyzeJD(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.AnalyzeJDRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.JDText == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "jd_text is required"})
	}

	analysis, err := h.service.AnalyzeJD(ctx, req.JDText)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, analysis)
}

// AnalyzeJDPDF analyzes a job description uploaded as a PDF. The file comes
// in a multipart form under the "file" field.
// POST /v1/jobs/analyze/pdf
func (h *Handler) AnalyzeJDPDF(c echo.Context) error {
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "a PDF file is required under the \"file\" field"})
	}
	if fileHeader.Size > maxPDFBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "file exceeds 10 MB"})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not read uploaded file"})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPDFBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not read uploaded file"})
	}
	if len(data) > maxPDFBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "file exceeds 10 MB"})
	}

	text, err := jobtext.FromPDF(data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not extract text from the PDF"})
	}

	analysis, err := h.service.AnalyzeJD(ctx, text)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, analysis)
}
