package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/middleware"
	"github.com/yourusername/quizmaster-api/internal/service"
)

// CatalogHandler обрабатывает запросы к каталогу предметов и глав
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// SubjectRequest представляет запрос на создание/обновление предмета
type SubjectRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

// ListSubjects возвращает все предметы
func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.catalogService.ListSubjects()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

// GetSubject возвращает предмет с главами
func (h *CatalogHandler) GetSubject(c *gin.Context) {
	subject, err := h.catalogService.GetSubject(middleware.GetUintParam(c, "subjectID"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subject)
}

// CreateSubject создает предмет
func (h *CatalogHandler) CreateSubject(c *gin.Context) {
	var req SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	subject, err := h.catalogService.CreateSubject(req.Name, req.Description)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subject)
}

// UpdateSubject обновляет предмет
func (h *CatalogHandler) UpdateSubject(c *gin.Context) {
	var req SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	subject, err := h.catalogService.UpdateSubject(middleware.GetUintParam(c, "subjectID"), req.Name, req.Description)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subject)
}

// DeleteSubject удаляет предмет
func (h *CatalogHandler) DeleteSubject(c *gin.Context) {
	if err := h.catalogService.DeleteSubject(middleware.GetUintParam(c, "subjectID")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subject deleted"})
}

// ChapterRequest представляет запрос на создание/обновление главы
type ChapterRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

// ListChapters возвращает главы предмета
func (h *CatalogHandler) ListChapters(c *gin.Context) {
	chapters, err := h.catalogService.ListChapters(middleware.GetUintParam(c, "subjectID"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chapters": chapters})
}

// CreateChapter создает главу в предмете
func (h *CatalogHandler) CreateChapter(c *gin.Context) {
	var req ChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	chapter, err := h.catalogService.CreateChapter(middleware.GetUintParam(c, "subjectID"), req.Name, req.Description)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chapter)
}

// UpdateChapter обновляет главу
func (h *CatalogHandler) UpdateChapter(c *gin.Context) {
	var req ChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	chapter, err := h.catalogService.UpdateChapter(middleware.GetUintParam(c, "chapterID"), req.Name, req.Description)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, chapter)
}

// DeleteChapter удаляет главу
func (h *CatalogHandler) DeleteChapter(c *gin.Context) {
	if err := h.catalogService.DeleteChapter(middleware.GetUintParam(c, "chapterID")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chapter deleted"})
}
