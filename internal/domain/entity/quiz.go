package entity

import (
	"time"

	"gorm.io/gorm"
)

// Статусы викторины, вычисляемые из расписания
const (
	// QuizStatusInactive — викторина выключена администратором
	QuizStatusInactive = "inactive"
	// QuizStatusActive — викторина доступна для прохождения прямо сейчас
	QuizStatusActive = "active"
	// QuizStatusUpcoming — старт запланирован на будущее
	QuizStatusUpcoming = "upcoming"
	// QuizStatusExpired — окно прохождения закрылось
	QuizStatusExpired = "expired"
)

// DefaultDurationMinutes — длительность по умолчанию, если администратор не указал иную
const DefaultDurationMinutes = 30

// Quiz представляет викторину с расписанием доступности.
// Окно доступности — [StartTime, StartTime+Duration], обе границы включительно.
// Если StartTime не задан, активная викторина доступна без ограничений по времени.
type Quiz struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:200;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	ChapterID       uint           `gorm:"not null;index" json:"chapter_id"`
	DurationMinutes int            `gorm:"not null;default:30" json:"duration_minutes"`
	StartTime       *time.Time     `gorm:"index" json:"start_time,omitempty"`
	IsActive        bool           `gorm:"not null;default:true" json:"is_active"`
	Questions       []Question     `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// EndTime возвращает момент закрытия окна прохождения.
// Второе значение — false, если старт не запланирован.
func (q *Quiz) EndTime() (time.Time, bool) {
	if q.StartTime == nil {
		return time.Time{}, false
	}
	return q.StartTime.Add(time.Duration(q.DurationMinutes) * time.Minute), true
}

// StatusAt вычисляет статус викторины на момент now.
// Проверка IsActive имеет приоритет над расписанием.
func (q *Quiz) StatusAt(now time.Time) string {
	if !q.IsActive {
		return QuizStatusInactive
	}
	if q.StartTime == nil {
		return QuizStatusActive
	}
	if now.Before(*q.StartTime) {
		return QuizStatusUpcoming
	}
	end, _ := q.EndTime()
	if now.After(end) {
		return QuizStatusExpired
	}
	return QuizStatusActive
}

// IsAttemptableAt проверяет, можно ли начать попытку в момент now
func (q *Quiz) IsAttemptableAt(now time.Time) bool {
	return q.StatusAt(now) == QuizStatusActive
}

// RemainingSeconds возвращает число секунд до закрытия окна на момент now.
// Возвращает nil, если старт не запланирован (окно не ограничено).
// Значение не бывает отрицательным.
func (q *Quiz) RemainingSeconds(now time.Time) *int {
	end, ok := q.EndTime()
	if !ok {
		return nil
	}
	remaining := int(end.Sub(now).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}
