package repository

import (
	"time"
)

// CacheRepository определяет методы для работы с кешем и очередью задач
type CacheRepository interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string) (string, error)
	Delete(key string) error
	DeleteByPattern(pattern string) error
	Increment(key string) (int64, error)
	SetJSON(key string, value interface{}, expiration time.Duration) error
	GetJSON(key string, dest interface{}) error
	Exists(key string) (bool, error)
	Expire(key string, expiration time.Duration) error

	// PushJob кладет задачу в очередь (левый конец списка)
	PushJob(queue string, payload interface{}) error
	// PopJob блокирующе забирает задачу из очереди; пустая строка по таймауту
	PopJob(queue string, timeout time.Duration) (string, error)
	// Publish отправляет событие в pub/sub канал
	Publish(channel string, payload interface{}) error
}
