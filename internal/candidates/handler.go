package candidates

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/extract"
	"recruit-backend/internal/extraction"
	"recruit-backend/internal/shared/server/middleware"
	"recruit-backend/internal/shared/server/respond"
	"recruit-backend/internal/technology"
)

const (
	maxUploadSize = 25 << 20 // 25MB per request
	uploadField   = "upload_doc"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc          *Service
	Vocab        *technology.Vocabulary
	ShareBaseURL string
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, vocab *technology.Vocabulary, shareBaseURL string) *Handler {
	if vocab == nil {
		vocab = technology.Default()
	}
	return &Handler{Svc: svc, Vocab: vocab, ShareBaseURL: shareBaseURL}
}

// RegisterRoutes attaches candidate routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/candidates", h.intake)
	rg.GET("/candidates", h.list)
	rg.GET("/candidates/:id", h.get)
	rg.GET("/share/:token", h.shared)
}

func (h *Handler) intake(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "multipart form with upload_doc is required", nil)
		return
	}
	files := form.File[uploadField]
	if len(files) == 0 {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "upload_doc is required", nil)
		return
	}

	uploads := make([]Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read file", gin.H{"file": fh.Filename})
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read file", gin.H{"file": fh.Filename})
			return
		}
		uploads = append(uploads, Upload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	created, err := h.Svc.Intake(c.Request.Context(), uploads)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]CandidateResponse, 0, len(created))
	for _, cand := range created {
		resp = append(resp, toResponse(cand, h.Vocab, h.ShareBaseURL))
	}
	if len(created) == 1 {
		c.Set(middleware.CandidateIDKey, created[0].ID)
	}
	respond.JSON(c, http.StatusCreated, gin.H{"candidates": resp})
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.CandidateIDKey, id)

	cand, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(cand, h.Vocab, h.ShareBaseURL))
}

func (h *Handler) shared(c *gin.Context) {
	cand, err := h.Svc.Shared(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(middleware.CandidateIDKey, cand.ID)
	respond.JSON(c, http.StatusOK, toResponse(cand, h.Vocab, h.ShareBaseURL))
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 100 {
		limit = 100
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	list, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]CandidateResponse, 0, len(list))
	for _, cand := range list {
		resp = append(resp, toResponse(cand, h.Vocab, h.ShareBaseURL))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var details gin.H
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		details = gin.H{"file": fileErr.FileName, "index": fileErr.Index}
	}

	var exErr *extraction.Error
	if errors.As(err, &exErr) {
		c.Set(middleware.StageKey, exErr.Kind.String())
		if details == nil {
			details = gin.H{}
		}
		if len(exErr.Missing) > 0 {
			details["missing"] = exErr.Missing
		}
		switch exErr.Kind {
		case extraction.KindProviderUnavailable:
			respond.Error(c, http.StatusServiceUnavailable, respond.CodeProviderUnavailable, "model provider unavailable, retry later", orNil(details))
		default:
			respond.Error(c, http.StatusUnprocessableEntity, respond.CodeUnprocessable, "could not extract a complete record", orNil(details))
		}
		return
	}

	switch {
	case errors.Is(err, ErrDuplicateEmail):
		respond.Error(c, http.StatusBadRequest, respond.CodeDuplicateEmail, ErrDuplicateEmail.Error(), orNil(details))
	case errors.Is(err, ErrInvalidInput), errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), orNil(details))
	case errors.Is(err, extract.ErrNoText):
		respond.Error(c, http.StatusUnprocessableEntity, respond.CodeUnprocessable, "document contains no text", orNil(details))
	case errors.Is(err, extraction.ErrProviderUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, respond.CodeProviderUnavailable, "model provider unavailable, retry later", orNil(details))
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "candidate not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to process candidate", orNil(details))
	}
}

func orNil(h gin.H) any {
	if len(h) == 0 {
		return nil
	}
	return h
}
