package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/middleware"
	"github.com/yourusername/quizmaster-api/internal/service"
)

// SearchHandler обрабатывает поисковые запросы
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler создает новый обработчик поиска
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search ищет по каталогу; администратору — также по пользователям и вопросам
// GET /api/search?q=...
func (h *SearchHandler) Search(c *gin.Context) {
	results, err := h.searchService.Search(c.Query("q"), middleware.IsAdmin(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
