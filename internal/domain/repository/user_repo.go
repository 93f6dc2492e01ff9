package repository

import (
	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error
	List(limit, offset int) ([]entity.User, error)
	Count() (int64, error)
	// Search ищет пользователей по подстроке в username или email
	Search(query string, limit int) ([]entity.User, error)
}
