package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/middleware"
	"github.com/yourusername/quizmaster-api/internal/service"
)

// ExportHandler обрабатывает запросы экспорта попыток
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler создает новый обработчик экспорта
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Download строит выгрузку синхронно и отдает файл
// GET /api/admin/export?format=csv|xlsx
func (h *ExportHandler) Download(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatCSV)

	data, filename, err := h.exportService.Build(format)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == service.ExportFormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// DownloadMine отдает CSV с завершенными попытками текущего пользователя
// GET /api/attempts/export
func (h *ExportHandler) DownloadMine(c *gin.Context) {
	data, filename, err := h.exportService.BuildUserCSV(middleware.CurrentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// EnqueueRequest представляет запрос на асинхронный экспорт
type EnqueueRequest struct {
	Format string `json:"format" binding:"required,oneof=csv xlsx"`
	// Email для уведомления о готовности (опционально)
	Email string `json:"email" binding:"omitempty,email"`
}

// Enqueue ставит задачу экспорта в очередь
// POST /api/admin/export/jobs
func (h *ExportHandler) Enqueue(c *gin.Context) {
	var req EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	taskID, err := h.exportService.Enqueue(middleware.CurrentUserID(c), req.Email, req.Format)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID, "status": service.ExportStatusQueued})
}

// TaskStatus возвращает статус задачи экспорта
// GET /api/admin/export/jobs/:taskID
func (h *ExportHandler) TaskStatus(c *gin.Context) {
	task, err := h.exportService.GetTask(c.Param("taskID"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
