package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	"github.com/yourusername/quizmaster-api/internal/service"
	"github.com/yourusername/quizmaster-api/internal/ws"
)

// popTimeout — таймаут блокирующего чтения очереди.
// Держится коротким, чтобы воркер быстро реагировал на отмену контекста.
const popTimeout = 5 * time.Second

// ExportWorker обрабатывает очередь асинхронных задач экспорта
type ExportWorker struct {
	exportService *service.ExportService
	emailService  service.EmailService
	cacheRepo     repository.CacheRepository
	hub           *ws.Hub
	exportDir     string
	baseURL       string
}

// NewExportWorker создает новый воркер экспорта
func NewExportWorker(
	exportService *service.ExportService,
	emailService service.EmailService,
	cacheRepo repository.CacheRepository,
	hub *ws.Hub,
	exportDir string,
	baseURL string,
) *ExportWorker {
	return &ExportWorker{
		exportService: exportService,
		emailService:  emailService,
		cacheRepo:     cacheRepo,
		hub:           hub,
		exportDir:     exportDir,
		baseURL:       baseURL,
	}
}

// Run забирает задачи из очереди до отмены контекста
func (w *ExportWorker) Run(ctx context.Context) {
	if err := os.MkdirAll(w.exportDir, 0o755); err != nil {
		log.Printf("[ExportWorker] Не удалось создать каталог экспорта %s: %v", w.exportDir, err)
		return
	}
	log.Printf("[ExportWorker] Запущен, каталог экспорта: %s", w.exportDir)

	for {
		select {
		case <-ctx.Done():
			log.Println("[ExportWorker] Остановлен")
			return
		default:
		}

		payload, err := w.cacheRepo.PopJob(service.ExportQueue, popTimeout)
		if err != nil {
			log.Printf("[ExportWorker] Ошибка чтения очереди: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if payload == "" {
			continue
		}

		job, err := service.DecodeJob(payload)
		if err != nil {
			log.Printf("[ExportWorker] Некорректная задача отброшена: %v", err)
			continue
		}
		w.process(ctx, job)
	}
}

// process выполняет одну задачу экспорта
func (w *ExportWorker) process(ctx context.Context, job *service.ExportJob) {
	task, err := w.exportService.GetTask(job.TaskID)
	if err != nil {
		log.Printf("[ExportWorker] Статус задачи %s не найден: %v", job.TaskID, err)
		task = &service.ExportTask{TaskID: job.TaskID, Format: job.Format, CreatedAt: time.Now().UTC()}
	}

	task.Status = service.ExportStatusProcessing
	if err := w.exportService.UpdateTask(task); err != nil {
		log.Printf("[ExportWorker] Не удалось обновить статус задачи %s: %v", job.TaskID, err)
	}

	data, filename, err := w.exportService.Build(job.Format)
	if err != nil {
		w.fail(task, fmt.Errorf("build failed: %w", err))
		return
	}

	path := filepath.Join(w.exportDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		w.fail(task, fmt.Errorf("write failed: %w", err))
		return
	}

	task.Status = service.ExportStatusCompleted
	task.Filename = filename
	if err := w.exportService.UpdateTask(task); err != nil {
		log.Printf("[ExportWorker] Не удалось обновить статус задачи %s: %v", job.TaskID, err)
	}

	downloadURL := w.baseURL + "/exports/" + filename
	if job.Email != "" {
		if err := w.emailService.SendExportReady(ctx, job.Email, filename, downloadURL); err != nil {
			log.Printf("[ExportWorker] Не удалось отправить письмо для задачи %s: %v", job.TaskID, err)
		}
	}

	w.hub.Broadcast(ws.EventExportCompleted, map[string]interface{}{
		"task_id":  task.TaskID,
		"filename": filename,
	})
	log.Printf("[ExportWorker] Задача %s завершена: %s", task.TaskID, filename)
}

func (w *ExportWorker) fail(task *service.ExportTask, err error) {
	log.Printf("[ExportWorker] Задача %s провалена: %v", task.TaskID, err)
	task.Status = service.ExportStatusFailed
	task.Error = err.Error()
	if updateErr := w.exportService.UpdateTask(task); updateErr != nil {
		log.Printf("[ExportWorker] Не удалось сохранить ошибку задачи %s: %v", task.TaskID, updateErr)
	}
}
