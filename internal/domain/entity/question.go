package entity

import (
	"time"
)

// Question представляет вопрос викторины с четырьмя вариантами ответа.
// Правильный вариант хранится как буква ("A".."D") и никогда не сериализуется
// в ответах API.
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	QuizID        uint      `gorm:"not null;index" json:"quiz_id"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	OptionA       string    `gorm:"size:255;not null" json:"option_a"`
	OptionB       string    `gorm:"size:255;not null" json:"option_b"`
	OptionC       string    `gorm:"size:255;not null" json:"option_c"`
	OptionD       string    `gorm:"size:255;not null" json:"option_d"`
	CorrectOption string    `gorm:"size:1;not null" json:"-"` // Скрыто от клиента
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет выбранный вариант. Сравнение строгое,
// с учетом регистра: "a" не засчитывается за "A".
func (q *Question) IsCorrect(selected string) bool {
	return selected == q.CorrectOption
}
