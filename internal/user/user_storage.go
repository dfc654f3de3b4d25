package user

import (
	"context"

	"github.com/VitaminP8/discuss/internal/model"
)

// RoleStorage отдаёт роль пользователя.
// Отсутствующий пользователь - model.RoleNotAdmin, ошибка чтения - model.RoleUnknown вместе с ошибкой.
type RoleStorage interface {
	GetRole(ctx context.Context, userID string) (model.Role, error)
}
