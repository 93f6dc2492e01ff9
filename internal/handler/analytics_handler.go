package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/middleware"
	"github.com/yourusername/quizmaster-api/internal/service"
)

// AnalyticsHandler обрабатывает запросы аналитики и лидерборда
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler создает новый обработчик аналитики
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Leaderboard возвращает лидерборд за период
// GET /api/leaderboard?period=week|month|all&limit=20
func (h *AnalyticsHandler) Leaderboard(c *gin.Context) {
	period := c.DefaultQuery("period", service.PeriodAll)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := h.analyticsService.Leaderboard(period, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Позиция текущего пользователя, даже если он не попал в топ
	myRank, err := h.analyticsService.UserRank(middleware.CurrentUserID(c), period)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"period": period, "leaderboard": entries, "my_rank": myRank})
}

// MyPerformance возвращает сводку результатов текущего пользователя
func (h *AnalyticsHandler) MyPerformance(c *gin.Context) {
	perf, err := h.analyticsService.GetUserPerformance(middleware.CurrentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, perf)
}

// AdminOverview возвращает сводную статистику для панели администратора
func (h *AnalyticsHandler) AdminOverview(c *gin.Context) {
	overview, err := h.analyticsService.GetAdminOverview()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
