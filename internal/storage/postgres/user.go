package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jinzhu/gorm"

	"github.com/VitaminP8/discuss/internal/model"
	"github.com/VitaminP8/discuss/models"
)

// UserPostgresStorage реализует user.RoleStorage
type UserPostgresStorage struct{}

func NewUserPostgresStorage() *UserPostgresStorage {
	return &UserPostgresStorage{}
}

// CreateUser заводит профиль автора и возвращает его ID
func (s *UserPostgresStorage) CreateUser(ctx context.Context, username, name, role string) (string, error) {
	var existingUser models.User
	err := DB.Where("username = ?", username).First(&existingUser).Error
	if err == nil {
		return "", model.Validationf("user %s already exists", username)
	}
	if !gorm.IsRecordNotFoundError(err) {
		return "", fmt.Errorf("could not check user: %w", err)
	}

	user := &models.User{
		Username: username,
		Name:     name,
		Role:     role,
	}
	if err = DB.Create(user).Error; err != nil {
		return "", fmt.Errorf("could not create user: %w", err)
	}
	return fmt.Sprint(user.ID), nil
}

// GetRole: нет записи - обычный участник; ошибка базы - роль не определена
func (s *UserPostgresStorage) GetRole(ctx context.Context, userID string) (model.Role, error) {
	id, err := strconv.ParseUint(userID, 10, 64)
	if err != nil || id == 0 {
		return model.RoleNotAdmin, nil
	}

	var user models.User
	err = DB.Select("id, role").First(&user, uint(id)).Error
	if gorm.IsRecordNotFoundError(err) {
		return model.RoleNotAdmin, nil
	}
	if err != nil {
		return model.RoleUnknown, fmt.Errorf("could not get role of user %s: %w", userID, err)
	}
	return model.ParseRole(user.Role), nil
}
