package memory

import (
	"context"
	"sync"

	"github.com/VitaminP8/discuss/internal/model"
)

// UserRecord - профиль автора, как его видит движок обсуждений
type UserRecord struct {
	ID        string
	Name      string
	AvatarURL string
	Role      model.Role
}

// UserMemoryStorage - справочник пользователей и их ролей (реализует user.RoleStorage)
type UserMemoryStorage struct {
	mu    sync.RWMutex
	users map[string]UserRecord
}

func NewUserMemoryStorage() *UserMemoryStorage {
	return &UserMemoryStorage{
		users: make(map[string]UserRecord),
	}
}

// PutUser добавляет или обновляет пользователя
func (s *UserMemoryStorage) PutUser(u UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Role == model.RoleUnknown {
		u.Role = model.RoleNotAdmin
	}
	s.users[u.ID] = u
}

// GetRole: пользователя без записи считаем обычным участником
func (s *UserMemoryStorage) GetRole(ctx context.Context, userID string) (model.Role, error) {
	if err := ctx.Err(); err != nil {
		return model.RoleUnknown, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return model.RoleNotAdmin, nil
	}
	return u.Role, nil
}

// lookup безопасен для nil-хранилища
func (s *UserMemoryStorage) lookup(userID string) (UserRecord, bool) {
	if s == nil {
		return UserRecord{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	return u, ok
}
