package export

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/shared/server/middleware"
	"recruit-backend/internal/shared/server/respond"
	"recruit-backend/internal/shared/telemetry"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves the candidate workbook.
type Handler struct {
	Svc *Service
	Now func() time.Time
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/exports/candidates.xlsx", h.candidates)
}

func (h *Handler) candidates(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.Svc.Write(c.Request.Context(), &buf); err != nil {
		telemetry.Error("export.failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to build export", nil)
		return
	}
	name := fmt.Sprintf("candidates-%s.xlsx", h.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
