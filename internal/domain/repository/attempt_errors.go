package repository

import "errors"

var (
	// ErrAttemptInProgress означает, что у пользователя уже есть незавершенная попытка этой викторины.
	ErrAttemptInProgress = errors.New("attempt already in progress for this quiz")
	// ErrAttemptAlreadyCompleted означает, что попытка уже была завершена ранее.
	ErrAttemptAlreadyCompleted = errors.New("attempt already completed")
)
