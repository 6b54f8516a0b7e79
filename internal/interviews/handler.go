package interviews

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/extraction"
	"recruit-backend/internal/shared/server/middleware"
	"recruit-backend/internal/shared/server/respond"
)

const maxPhotoUploadSize = 40 << 20 // 40MB per request

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches interview routes under /candidates/:id.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	c := rg.Group("/candidates/:id")
	c.POST("/photos", h.uploadPhotos)
	c.GET("/photos", h.listPhotos)
	c.POST("/emotion-summary", h.summarize)
	c.GET("/emotion-summary", h.emotionReport)
	c.POST("/communication", h.scoreCommunication)
	c.GET("/communication", h.communication)
	c.POST("/questions", h.generateQuestions)
	c.GET("/questions", h.questions)
	c.PUT("/questions/:questionId/answer", h.submitAnswer)
	c.POST("/questions/:questionId/rate", h.rateAnswer)
}

func candidateID(c *gin.Context) string {
	id := c.Param("id")
	c.Set(middleware.CandidateIDKey, id)
	return id
}

func (h *Handler) uploadPhotos(c *gin.Context) {
	id := candidateID(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoUploadSize)

	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "multipart form with photos is required", nil)
		return
	}
	files := make([]*multipart.FileHeader, 0, len(form.File["photos"])+len(form.File["photo"]))
	files = append(files, form.File["photos"]...)
	files = append(files, form.File["photo"]...)
	if len(files) == 0 {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "photos is required", nil)
		return
	}

	uploads := make([]Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read photo", nil)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read photo", nil)
			return
		}
		uploads = append(uploads, Upload{FileName: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data})
	}

	photos, err := h.Svc.UploadPhotos(c.Request.Context(), id, middleware.RequestIDFromContext(c), uploads)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]PhotoResponse, 0, len(photos))
	for _, p := range photos {
		resp = append(resp, toPhotoResponse(p))
	}
	respond.JSON(c, http.StatusCreated, gin.H{"photos": resp})
}

func (h *Handler) listPhotos(c *gin.Context) {
	photos, err := h.Svc.ListPhotos(c.Request.Context(), candidateID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]PhotoResponse, 0, len(photos))
	for _, p := range photos {
		resp = append(resp, toPhotoResponse(p))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) summarize(c *gin.Context) {
	id := candidateID(c)
	if c.Query("async") == "true" {
		queued, err := h.Svc.RequestEmotionSummary(c.Request.Context(), id, middleware.RequestIDFromContext(c))
		if err != nil {
			h.writeError(c, err)
			return
		}
		if queued {
			respond.JSON(c, http.StatusAccepted, gin.H{"candidateId": id, "status": "queued"})
			return
		}
	}
	rep, err := h.Svc.SummarizeEmotions(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toEmotionResponse(rep))
}

func (h *Handler) emotionReport(c *gin.Context) {
	rep, err := h.Svc.EmotionReport(c.Request.Context(), candidateID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toEmotionResponse(rep))
}

type communicationRequest struct {
	Answers []string `json:"answers"`
}

func (h *Handler) scoreCommunication(c *gin.Context) {
	id := candidateID(c)
	var body communicationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
			return
		}
	}
	score, err := h.Svc.ScoreCommunication(c.Request.Context(), id, body.Answers)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toCommunicationResponse(score))
}

func (h *Handler) communication(c *gin.Context) {
	score, err := h.Svc.Communication(c.Request.Context(), candidateID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toCommunicationResponse(score))
}

type generateQuestionsRequest struct {
	Count int `json:"count"`
}

func (h *Handler) generateQuestions(c *gin.Context) {
	id := candidateID(c)
	var body generateQuestionsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
			return
		}
	}
	qs, err := h.Svc.GenerateQuestions(c.Request.Context(), id, body.Count)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, toQuestionResponses(qs))
}

func (h *Handler) questions(c *gin.Context) {
	qs, err := h.Svc.Questions(c.Request.Context(), candidateID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toQuestionResponses(qs))
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (h *Handler) submitAnswer(c *gin.Context) {
	id := candidateID(c)
	var body answerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	q, err := h.Svc.SubmitAnswer(c.Request.Context(), id, c.Param("questionId"), middleware.RequestIDFromContext(c), body.Answer)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toQuestionResponse(q))
}

func (h *Handler) rateAnswer(c *gin.Context) {
	id := candidateID(c)
	if err := h.Svc.ensureCandidate(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	q, err := h.Svc.RateAnswer(c.Request.Context(), id, c.Param("questionId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toQuestionResponse(q))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var exErr *extraction.Error
	if errors.As(err, &exErr) {
		c.Set(middleware.StageKey, exErr.Kind.String())
		if exErr.Kind == extraction.KindUnprocessable {
			respond.Error(c, http.StatusUnprocessableEntity, respond.CodeUnprocessable, "model output could not be scored", gin.H{"missing": exErr.Missing})
			return
		}
		respond.Error(c, http.StatusServiceUnavailable, respond.CodeProviderUnavailable, "model provider unavailable, retry later", nil)
		return
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, ErrCandidateNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "candidate not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "not found", nil)
	case errors.Is(err, extraction.ErrProviderUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, respond.CodeProviderUnavailable, "model provider unavailable, retry later", nil)
	case errors.Is(err, extraction.ErrUnprocessable):
		respond.Error(c, http.StatusUnprocessableEntity, respond.CodeUnprocessable, "model output could not be read", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "interview request failed", nil)
	}
}
