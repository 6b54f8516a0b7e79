package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/shared/telemetry"
)

// Context keys handlers set so the request log can name the resource.
const (
	CandidateIDKey   = "candidateId"
	RequirementIDKey = "requirementId"
	StageKey         = "extractionStage"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		candidateID, _ := c.Get(CandidateIDKey)
		requirementID, _ := c.Get(RequirementIDKey)
		stage := c.GetString(StageKey)

		telemetry.Info("request.complete", map[string]any{
			"request_id":     RequestIDFromContext(c),
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"route":          c.FullPath(),
			"status":         c.Writer.Status(),
			"duration_ms":    float64(latency.Microseconds()) / 1000.0,
			"candidate_id":   candidateID,
			"requirement_id": requirementID,
			"stage":          stage,
			"client_ip":      c.ClientIP(),
			"user_agent":     c.Request.UserAgent(),
		})
	}
}
