package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/hive-backend/internal/http/response"
	"github.com/yungbote/hive-backend/internal/pkg/ctxutil"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
	"github.com/yungbote/hive-backend/internal/services"
)

type ScoreHandler struct {
	log          *logger.Logger
	scoreService services.ScoreService
}

func NewScoreHandler(log *logger.Logger, scoreService services.ScoreService) *ScoreHandler {
	return &ScoreHandler{
		log:          log.With("handler", "ScoreHandler"),
		scoreService: scoreService,
	}
}

func requestUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// GET /api/score
func (h *ScoreHandler) DailyScore(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	date := c.DefaultQuery("date", services.TodayUTC())
	if _, err := time.Parse("2006-01-02", date); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	score, err := h.scoreService.ComputeUserDailyScore(c.Request.Context(), userID, date)
	if err != nil {
		response.RespondServiceError(c, "daily_score_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"date": date, "score": score})
}

// GET /api/rating
func (h *ScoreHandler) GetRating(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	rating, err := h.scoreService.GetRating(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, "rating_failed", err)
		return
	}
	response.RespondOK(c, rating)
}

// GET /api/leaderboard
func (h *ScoreHandler) Leaderboard(c *gin.Context) {
	board, err := h.scoreService.Leaderboard(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "leaderboard_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"leaderboard": board})
}

// GET /api/ranking/domain
func (h *ScoreHandler) DomainRankings(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	rankings, err := h.scoreService.DomainRankings(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, "rankings_failed", err)
		return
	}
	response.RespondOK(c, rankings)
}

// GET /api/summary/:date
func (h *ScoreHandler) SummaryForDate(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	summary, err := h.scoreService.SummaryForDate(c.Request.Context(), userID, date)
	if err != nil {
		response.RespondServiceError(c, "summary_failed", err)
		return
	}
	if summary == nil {
		response.RespondOK(c, gin.H{"date": date, "summary": nil, "message": "No activity recorded for this date"})
		return
	}
	response.RespondOK(c, gin.H{"date": date, "summary": summary})
}

// GET /api/uncategorized
func (h *ScoreHandler) UncategorizedApps(c *gin.Context) {
	if _, ok := requestUser(c); !ok {
		return
	}
	apps, err := h.scoreService.UncategorizedApps(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "uncategorized_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"apps": apps})
}
