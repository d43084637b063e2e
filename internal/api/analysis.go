package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sentiment-analyzer/backend/internal/nlu"
	"sentiment-analyzer/backend/internal/service"
	"sentiment-analyzer/backend/pkg/errors"
	"sentiment-analyzer/backend/pkg/middleware"
)

// AnalysisController handles the analyze and history endpoints
type AnalysisController struct {
	service *service.AnalysisService
}

// NewAnalysisController creates a new analysis controller
func NewAnalysisController(analysisService *service.AnalysisService) *AnalysisController {
	return &AnalysisController{service: analysisService}
}

// RegisterRoutes registers the analysis routes. The burst limiter
// applies to the analyze endpoint only; the session check runs first
// so a missing header is reported before rate accounting.
func (ctl *AnalysisController) RegisterRoutes(api *gin.RouterGroup, burstLimiter gin.HandlerFunc) {
	api.GET("/health", ctl.Health)
	api.GET("/session/new", ctl.NewSession)
	api.POST("/analyze", middleware.RequireSession(), burstLimiter, ctl.Analyze)
	api.GET("/history", middleware.RequireSession(), ctl.History)
}

// Health reports service liveness
func (ctl *AnalysisController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// NewSession issues a fresh opaque session token. Nothing is stored
// server-side; the token only groups future analyses.
func (ctl *AnalysisController) NewSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"session_id": uuid.New().String()})
}

type analyzeRequest struct {
	Text         string `json:"text"`
	CaptchaToken string `json:"captchaToken"`
}

// Analyze validates the request envelope and hands off to the
// orchestrator. Check order: quota before body parsing, captcha and
// text bounds inside the service.
func (ctl *AnalysisController) Analyze(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)

	if err := ctl.service.CheckQuota(c.Request.Context(), sessionID); err != nil {
		c.Error(err)
		return
	}

	if c.ContentType() != "application/json" {
		c.Error(errors.NewUnsupportedMediaTypeError("UNSUPPORTED_MEDIA_TYPE", "Request must be of type application/json."))
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_JSON", "The request body is not valid JSON."))
		return
	}

	annotation, err := ctl.service.Analyze(c.Request.Context(), sessionID, req.Text, req.CaptchaToken)
	if err != nil {
		c.Error(err)
		return
	}

	// The emotions object is always present in the response, zeroed
	// when the provider omitted the feature
	emotions := annotation.Emotions
	if emotions == nil {
		emotions = &nlu.EmotionScores{}
	}

	c.JSON(http.StatusOK, gin.H{
		"sentiment": annotation.Sentiment,
		"emotions":  emotions,
		"keywords":  annotation.Keywords,
	})
}

// History returns the most recent analyses for the caller's session
func (ctl *AnalysisController) History(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)

	summaries, err := ctl.service.History(c.Request.Context(), sessionID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"analyses":   summaries,
		"count":      len(summaries),
	})
}
