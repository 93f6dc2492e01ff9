package service

import (
	"errors"
	"fmt"
	"time"
)

// Ошибки жизненного цикла попытки.
// Порядок проверок при старте фиксирован: inactive -> not yet open -> expired ->
// no questions -> attempt in progress.
var (
	// ErrQuizInactive — викторина выключена администратором.
	ErrQuizInactive = errors.New("quiz is not active")
	// ErrQuizNotYetOpen — старт викторины еще не наступил.
	ErrQuizNotYetOpen = errors.New("quiz has not started yet")
	// ErrQuizExpired — окно прохождения викторины закрылось.
	ErrQuizExpired = errors.New("quiz has expired")
	// ErrNoQuestions — у викторины нет ни одного вопроса.
	ErrNoQuestions = errors.New("quiz has no questions")
)

// QuizNotOpenError дополняет ErrQuizNotYetOpen временем старта,
// чтобы клиент мог показать обратный отсчет.
type QuizNotOpenError struct {
	StartTime time.Time
}

func (e *QuizNotOpenError) Error() string {
	return fmt.Sprintf("quiz has not started yet, opens at %s", e.StartTime.Format(time.RFC3339))
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrQuizNotYetOpen)
func (e *QuizNotOpenError) Unwrap() error {
	return ErrQuizNotYetOpen
}
