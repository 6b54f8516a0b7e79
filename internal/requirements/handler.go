package requirements

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

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc   *Service
	Vocab *technology.Vocabulary
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, vocab *technology.Vocabulary) *Handler {
	if vocab == nil {
		vocab = technology.Default()
	}
	return &Handler{Svc: svc, Vocab: vocab}
}

// RegisterRoutes attaches requirement, JD assistant and vocabulary routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/technologies", h.technologies)

	rg.POST("/requirements", h.create)
	rg.GET("/requirements", h.list)
	rg.GET("/requirements/:id", h.get)
	rg.DELETE("/requirements/:id", h.delete)

	jd := rg.Group("/jd-assistant")
	jd.POST("/analyze", h.analyze)
	jd.POST("/generate", h.generate)
	jd.POST("/save", h.save)
}

func (h *Handler) technologies(c *gin.Context) {
	respond.JSON(c, http.StatusOK, h.Vocab.Entries())
}

func (h *Handler) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		fileHeader, err = c.FormFile("upload_doc")
	}
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read file", nil)
		return
	}

	req, err := h.Svc.CreateFromFile(c.Request.Context(), Upload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(middleware.RequirementIDKey, req.ID)
	respond.JSON(c, http.StatusCreated, toResponse(req, h.Vocab))
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 0 {
		limit = 0
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	list, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]RequirementResponse, 0, len(list))
	for _, req := range list {
		resp = append(resp, toResponse(req, h.Vocab))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.RequirementIDKey, id)
	req, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(req, h.Vocab))
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.RequirementIDKey, id)
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type analyzeRequest struct {
	Message string `json:"message"`
}

func (h *Handler) analyze(c *gin.Context) {
	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	analysis, err := h.Svc.Analyze(c.Request.Context(), body.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, analysis)
}

type generateRequest struct {
	Fields Fields `json:"fields"`
}

func (h *Handler) generate(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	fields, text, err := h.Svc.Generate(c.Request.Context(), body.Fields)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"fields": fields, "jd_text": text})
}

type saveRequest struct {
	Fields Fields `json:"fields"`
	JDText string `json:"jd_text"`
}

func (h *Handler) save(c *gin.Context) {
	var body saveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	req, err := h.Svc.Save(c.Request.Context(), body.Fields, body.JDText)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(middleware.RequirementIDKey, req.ID)
	respond.JSON(c, http.StatusCreated, toResponse(req, h.Vocab))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var exErr *extraction.Error
	if errors.As(err, &exErr) {
		c.Set(middleware.StageKey, exErr.Kind.String())
		if exErr.Kind == extraction.KindUnprocessable {
			respond.Error(c, http.StatusUnprocessableEntity, respond.CodeUnprocessable, "could not extract a complete requirement", gin.H{"missing": exErr.Missing})
			return
		}
		respond.Error(c, http.StatusServiceUnavailable, respond.CodeProviderUnavailable, "model provider unavailable, retry later", nil)
		return
	}
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, extract.ErrNoText):
		respond.Error(c, http.StatusUnprocessableEntity, respond.CodeUnprocessable, "document contains no text", nil)
	case errors.Is(err, extraction.ErrProviderUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, respond.CodeProviderUnavailable, "model provider unavailable, retry later", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "requirement not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to process requirement", nil)
	}
}
