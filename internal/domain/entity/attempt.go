package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"time"
)

// AnswerMap хранит ответы попытки: ID вопроса -> выбранная буква.
// Сериализуется в JSONB-колонку.
type AnswerMap map[uint]string

// Scan реализует интерфейс sql.Scanner
func (m *AnswerMap) Scan(value interface{}) error {
	if value == nil {
		*m = AnswerMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan AnswerMap: unsupported type")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, m)
}

// Value реализует интерфейс driver.Valuer
func (m AnswerMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// QuizAttempt представляет попытку прохождения викторины.
// Попытка "в процессе", пока CompletedAt == nil; уникальный частичный индекс
// в БД гарантирует не более одной незавершенной попытки на пару (user, quiz).
type QuizAttempt struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	QuizID         uint       `gorm:"not null;index" json:"quiz_id"`
	Score          int        `gorm:"not null;default:0" json:"score"`
	TotalQuestions int        `gorm:"not null;default:0" json:"total_questions"`
	TimeTaken      int        `gorm:"not null;default:0" json:"time_taken"` // Секунды
	Answers        AnswerMap  `gorm:"type:jsonb" json:"answers,omitempty"`
	StartedAt      time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// IsCompleted проверяет, завершена ли попытка
func (a *QuizAttempt) IsCompleted() bool {
	return a.CompletedAt != nil
}

// Percentage возвращает результат попытки в процентах,
// округленный до двух знаков. Для пустой викторины — 0.
func (a *QuizAttempt) Percentage() float64 {
	if a.TotalQuestions == 0 {
		return 0
	}
	return math.Round(float64(a.Score)/float64(a.TotalQuestions)*100*100) / 100
}
