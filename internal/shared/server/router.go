package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/candidates"
	"recruit-backend/internal/export"
	"recruit-backend/internal/interviews"
	"recruit-backend/internal/requirements"
	"recruit-backend/internal/services/health"
	"recruit-backend/internal/shared/config"
	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/server/middleware"
	"recruit-backend/internal/shared/server/respond"
)

const (
	groupExtraction = "EXTRACTION"
	groupRead       = "READ"
	groupDefault    = "DEFAULT"
	groupUnlimited  = "UNLIMITED"
)

// Routes that call the language model or the emotion detector.
var extractionRoutes = routeSet(
	"POST /api/v1/candidates",
	"POST /api/v1/requirements",
	"POST /api/v1/jd-assistant/analyze",
	"POST /api/v1/jd-assistant/generate",
	"POST /api/v1/jd-assistant/save",
	"POST /api/v1/candidates/:id/emotion-summary",
	"POST /api/v1/candidates/:id/communication",
	"POST /api/v1/candidates/:id/questions",
	"PUT /api/v1/candidates/:id/questions/:questionId/answer",
	"POST /api/v1/candidates/:id/questions/:questionId/rate",
)

// RouterDeps carries the handlers registered on the engine. Nil handlers are
// skipped.
type RouterDeps struct {
	Config             config.Config
	Health             *health.Service
	CandidateHandler   *candidates.Handler
	RequirementHandler *requirements.Handler
	InterviewHandler   *interviews.Handler
	ExportHandler      *export.Handler
	RateLimiter        *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsDevLike() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: groupDefault,
			GroupFor:     rateLimitGroup,
			Limiter:      deps.RateLimiter,
			Rules: map[string]middleware.RateLimitRule{
				groupExtraction: {Rate: 1, Burst: 5},
				groupRead:       {Rate: 10, Burst: 40},
				groupDefault:    {Rate: 5, Burst: 20},
			},
		}),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil, deps.Config.ObjectStoreType)
	}

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status, ok := healthSvc.Status(c.Request.Context())
		if !ok {
			respond.JSON(c, http.StatusServiceUnavailable, status)
			return
		}
		respond.OK(c, status)
	})
	if deps.CandidateHandler != nil {
		deps.CandidateHandler.RegisterRoutes(api)
	}
	if deps.RequirementHandler != nil {
		deps.RequirementHandler.RegisterRoutes(api)
	}
	if deps.InterviewHandler != nil {
		deps.InterviewHandler.RegisterRoutes(api)
	}
	if deps.ExportHandler != nil {
		deps.ExportHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "route not found", nil)
	})

	return r
}

func rateLimitGroup(c *gin.Context) string {
	path := c.FullPath()
	if path == "/metrics" || path == "/api/v1/health" {
		return groupUnlimited
	}
	if extractionRoutes[c.Request.Method+" "+path] {
		return groupExtraction
	}
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		return groupRead
	}
	return groupDefault
}

func routeSet(routes ...string) map[string]bool {
	out := make(map[string]bool, len(routes))
	for _, r := range routes {
		out[r] = true
	}
	return out
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
