package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	"github.com/yourusername/quizmaster-api/internal/middleware"
	"github.com/yourusername/quizmaster-api/internal/service"
)

// QuizHandler обрабатывает запросы к викторинам и вопросам
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// QuizRequest представляет запрос на создание викторины
type QuizRequest struct {
	Title           string `json:"title" binding:"required,min=3,max=200"`
	Description     string `json:"description" binding:"omitempty,max=1000"`
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=1,max=600"`
	// RFC3339; пустая строка означает викторину без расписания
	StartTime string `json:"start_time" binding:"omitempty"`
	IsActive  *bool  `json:"is_active"`
}

func (r *QuizRequest) parsedStartTime(c *gin.Context) (*time.Time, bool) {
	if r.StartTime == "" {
		return nil, true
	}
	ts, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time must be RFC3339"})
		return nil, false
	}
	return &ts, true
}

// CreateQuiz создает викторину в главе
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	startTime, ok := req.parsedStartTime(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.CreateQuiz(middleware.GetUintParam(c, "chapterID"), req.Title, req.Description, req.DurationMinutes, startTime)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

// UpdateQuiz обновляет викторину
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	startTime, ok := req.parsedStartTime(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.UpdateQuiz(middleware.GetUintParam(c, "quizID"), req.Title, req.Description, req.DurationMinutes, startTime, req.IsActive)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// DeleteQuiz удаляет викторину
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	if err := h.quizService.DeleteQuiz(middleware.GetUintParam(c, "quizID")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted"})
}

// GetQuiz возвращает викторину с вопросами (для администратора)
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.quizService.GetQuiz(middleware.GetUintParam(c, "quizID"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// ListQuizzes возвращает викторины по фильтрам
// GET /api/admin/quizzes?chapter_id=1&search=go&page=1&per_page=20
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	chapterID, _ := strconv.ParseUint(c.DefaultQuery("chapter_id", "0"), 10, 32)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}

	filters := repository.QuizFilters{
		ChapterID: uint(chapterID),
		Search:    c.Query("search"),
		OnlyOpen:  c.Query("only_open") == "true",
	}
	quizzes, total, err := h.quizService.ListQuizzes(filters, perPage, (page-1)*perPage)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"quizzes":  quizzes,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// GetQuizStatus возвращает вычисленный статус викторины
// GET /api/quizzes/:id/status
func (h *QuizHandler) GetQuizStatus(c *gin.Context) {
	status, err := h.quizService.GetQuizStatus(middleware.GetUintParam(c, "quizID"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ListAvailable возвращает викторины, доступные для прохождения
func (h *QuizHandler) ListAvailable(c *gin.Context) {
	available, err := h.quizService.ListAvailable()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": available})
}

// QuestionRequest представляет запрос на создание/обновление вопроса
type QuestionRequest struct {
	Text          string `json:"text" binding:"required,min=3"`
	OptionA       string `json:"option_a" binding:"required"`
	OptionB       string `json:"option_b" binding:"required"`
	OptionC       string `json:"option_c" binding:"required"`
	OptionD       string `json:"option_d" binding:"required"`
	CorrectOption string `json:"correct_option" binding:"required,oneof=A B C D"`
}

// AddQuestion добавляет вопрос в викторину
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.quizService.AddQuestion(
		middleware.GetUintParam(c, "quizID"),
		req.Text, req.OptionA, req.OptionB, req.OptionC, req.OptionD, req.CorrectOption,
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion обновляет вопрос
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.quizService.UpdateQuestion(
		middleware.GetUintParam(c, "questionID"),
		req.Text, req.OptionA, req.OptionB, req.OptionC, req.OptionD, req.CorrectOption,
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// DeleteQuestion удаляет вопрос
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	if err := h.quizService.DeleteQuestion(middleware.GetUintParam(c, "questionID")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted"})
}
