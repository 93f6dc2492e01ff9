package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/middleware"
	"github.com/yourusername/quizmaster-api/internal/service"
)

// AttemptHandler обрабатывает запросы жизненного цикла попыток
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler создает новый обработчик попыток
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// StartAttempt начинает попытку прохождения викторины
// POST /api/quizzes/:id/attempts
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	result, err := h.attemptService.StartAttempt(middleware.CurrentUserID(c), middleware.GetUintParam(c, "quizID"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// SubmitRequest представляет запрос на завершение попытки.
// Ключи answers — ID вопросов, значения — выбранные буквы.
type SubmitRequest struct {
	Answers entity.AnswerMap `json:"answers" binding:"required"`
}

// SubmitAttempt завершает попытку и возвращает результат
// POST /api/attempts/:id/submit
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.attemptService.SubmitAttempt(middleware.CurrentUserID(c), middleware.GetUintParam(c, "attemptID"), req.Answers)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAttempt возвращает попытку
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attempt, err := h.attemptService.GetAttempt(
		middleware.GetUintParam(c, "attemptID"),
		middleware.CurrentUserID(c),
		middleware.IsAdmin(c),
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

// ListMyAttempts возвращает историю попыток текущего пользователя
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	attempts, err := h.attemptService.ListUserAttempts(middleware.CurrentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}
