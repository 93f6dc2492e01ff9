package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/internal/service"
)

// handleServiceError переводит ошибки сервисного слоя в HTTP-статусы.
// Ошибки жизненного цикла попытки получают машинно-читаемый error_type.
func handleServiceError(c *gin.Context, err error) {
	var notOpen *service.QuizNotOpenError
	if errors.As(err, &notOpen) {
		c.JSON(http.StatusConflict, gin.H{
			"error":      err.Error(),
			"error_type": "quiz_not_open",
			"start_time": notOpen.StartTime.Format(time.RFC3339),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrQuizInactive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "quiz_inactive"})
	case errors.Is(err, service.ErrQuizNotYetOpen):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "quiz_not_open"})
	case errors.Is(err, service.ErrQuizExpired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "quiz_expired"})
	case errors.Is(err, service.ErrNoQuestions):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "quiz_empty"})
	case errors.Is(err, repository.ErrAttemptInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "attempt_in_progress"})
	case errors.Is(err, repository.ErrAttemptAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "attempt_completed"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
