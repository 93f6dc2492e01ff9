package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/pkg/clock"
)

// Форматы экспорта
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

// Статусы задачи экспорта
const (
	ExportStatusQueued     = "queued"
	ExportStatusProcessing = "processing"
	ExportStatusCompleted  = "completed"
	ExportStatusFailed     = "failed"
)

// ExportQueue — имя Redis-очереди задач экспорта
const ExportQueue = "export:jobs"

// exportTaskTTL — сколько живет статус задачи после постановки
const exportTaskTTL = 24 * time.Hour

// ExportJob — задача экспорта в очереди
type ExportJob struct {
	TaskID      string `json:"task_id"`
	Format      string `json:"format"`
	RequestedBy uint   `json:"requested_by"`
	Email       string `json:"email,omitempty"`
}

// ExportTask — статус задачи экспорта
type ExportTask struct {
	TaskID    string    `json:"task_id"`
	Status    string    `json:"status"`
	Format    string    `json:"format"`
	Filename  string    `json:"filename,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// exportRow — одна строка выгрузки попыток
type exportRow struct {
	AttemptID   uint
	Username    string
	Email       string
	QuizTitle   string
	Score       int
	Total       int
	Percentage  float64
	TimeTaken   int
	CompletedAt time.Time
}

// ExportService строит выгрузки завершенных попыток в CSV и XLSX
// и управляет очередью асинхронных задач экспорта.
type ExportService struct {
	attemptRepo repository.AttemptRepository
	userRepo    repository.UserRepository
	quizRepo    repository.QuizRepository
	cacheRepo   repository.CacheRepository
	clk         clock.Clock
}

// NewExportService создает новый сервис экспорта
func NewExportService(
	attemptRepo repository.AttemptRepository,
	userRepo repository.UserRepository,
	quizRepo repository.QuizRepository,
	cacheRepo repository.CacheRepository,
	clk clock.Clock,
) *ExportService {
	return &ExportService{
		attemptRepo: attemptRepo,
		userRepo:    userRepo,
		quizRepo:    quizRepo,
		cacheRepo:   cacheRepo,
		clk:         clk,
	}
}

var exportHeader = []string{
	"attempt_id", "username", "email", "quiz_title",
	"score", "total_questions", "percentage", "time_taken_sec", "completed_at",
}

// collectRows собирает строки выгрузки по завершенным попыткам.
// Незавершенные попытки пропускаются, пользователи и викторины
// подгружаются с мемоизацией по ID.
func (s *ExportService) collectRows(attempts []entity.QuizAttempt) ([]exportRow, error) {
	var err error
	users := make(map[uint]*entity.User)
	quizzes := make(map[uint]*entity.Quiz)

	rows := make([]exportRow, 0, len(attempts))
	for i := range attempts {
		a := &attempts[i]
		if !a.IsCompleted() {
			continue
		}

		user, ok := users[a.UserID]
		if !ok {
			user, err = s.userRepo.GetByID(a.UserID)
			if err != nil {
				log.Printf("[ExportService] Пользователь %d не найден, попытка %d пропущена", a.UserID, a.ID)
				continue
			}
			users[a.UserID] = user
		}

		quiz, ok := quizzes[a.QuizID]
		if !ok {
			quiz, err = s.quizRepo.GetByID(a.QuizID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					// Викторина мягко удалена, попытка остается в истории
					quiz = &entity.Quiz{Title: "(deleted quiz)"}
				} else {
					return nil, err
				}
			}
			quizzes[a.QuizID] = quiz
		}

		rows = append(rows, exportRow{
			AttemptID:   a.ID,
			Username:    user.Username,
			Email:       user.Email,
			QuizTitle:   quiz.Title,
			Score:       a.Score,
			Total:       a.TotalQuestions,
			Percentage:  a.Percentage(),
			TimeTaken:   a.TimeTaken,
			CompletedAt: *a.CompletedAt,
		})
	}
	return rows, nil
}

// BuildCSV строит CSV-выгрузку всех завершенных попыток
func (s *ExportService) BuildCSV() ([]byte, error) {
	attempts, err := s.attemptRepo.ListCompleted()
	if err != nil {
		return nil, err
	}
	rows, err := s.collectRows(attempts)
	if err != nil {
		return nil, err
	}
	return writeCSV(rows)
}

// BuildUserCSV строит CSV-выгрузку завершенных попыток одного пользователя
func (s *ExportService) BuildUserCSV(userID uint) ([]byte, string, error) {
	attempts, err := s.attemptRepo.ListByUser(userID)
	if err != nil {
		return nil, "", err
	}
	rows, err := s.collectRows(attempts)
	if err != nil {
		return nil, "", err
	}
	data, err := writeCSV(rows)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("my_attempts_%s.csv", s.clk.Now().Format("20060102_150405"))
	return data, filename, nil
}

func writeCSV(rows []exportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.AttemptID), 10),
			r.Username,
			r.Email,
			r.QuizTitle,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.Total),
			strconv.FormatFloat(r.Percentage, 'f', 2, 64),
			strconv.Itoa(r.TimeTaken),
			r.CompletedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildXLSX строит XLSX-выгрузку через StreamWriter,
// чтобы не держать большой файл в памяти построчно.
func (s *ExportService) BuildXLSX() ([]byte, error) {
	attempts, err := s.attemptRepo.ListCompleted()
	if err != nil {
		return nil, err
	}
	rows, err := s.collectRows(attempts)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Attempts"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		err := sw.SetRow(cell, []interface{}{
			r.AttemptID, r.Username, r.Email, r.QuizTitle,
			r.Score, r.Total, r.Percentage, r.TimeTaken,
			r.CompletedAt.Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Build строит выгрузку в запрошенном формате
func (s *ExportService) Build(format string) ([]byte, string, error) {
	filename := fmt.Sprintf("attempts_%s.%s", s.clk.Now().Format("20060102_150405"), format)
	switch format {
	case ExportFormatCSV:
		data, err := s.BuildCSV()
		return data, filename, err
	case ExportFormatXLSX:
		data, err := s.BuildXLSX()
		return data, filename, err
	default:
		return nil, "", fmt.Errorf("%w: unsupported export format %q", apperrors.ErrValidation, format)
	}
}

// Enqueue ставит задачу экспорта в очередь и возвращает ее ID
func (s *ExportService) Enqueue(requestedBy uint, email, format string) (string, error) {
	if format != ExportFormatCSV && format != ExportFormatXLSX {
		return "", fmt.Errorf("%w: unsupported export format %q", apperrors.ErrValidation, format)
	}

	taskID := uuid.New().String()
	now := s.clk.Now()
	task := &ExportTask{
		TaskID:    taskID,
		Status:    ExportStatusQueued,
		Format:    format,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cacheRepo.SetJSON(taskKey(taskID), task, exportTaskTTL); err != nil {
		return "", fmt.Errorf("failed to store export task: %w", err)
	}

	job := ExportJob{TaskID: taskID, Format: format, RequestedBy: requestedBy, Email: email}
	if err := s.cacheRepo.PushJob(ExportQueue, job); err != nil {
		return "", fmt.Errorf("failed to enqueue export job: %w", err)
	}

	log.Printf("[ExportService] Задача экспорта %s поставлена в очередь (format=%s)", taskID, format)
	return taskID, nil
}

// GetTask возвращает статус задачи экспорта
func (s *ExportService) GetTask(taskID string) (*ExportTask, error) {
	var task ExportTask
	if err := s.cacheRepo.GetJSON(taskKey(taskID), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask сохраняет новый статус задачи
func (s *ExportService) UpdateTask(task *ExportTask) error {
	task.UpdatedAt = s.clk.Now()
	return s.cacheRepo.SetJSON(taskKey(task.TaskID), task, exportTaskTTL)
}

// DecodeJob разбирает задачу из очереди
func DecodeJob(payload string) (*ExportJob, error) {
	var job ExportJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return nil, fmt.Errorf("failed to decode export job: %w", err)
	}
	return &job, nil
}

func taskKey(taskID string) string {
	return "export:task:" + taskID
}
