package mocks

import (
	"context"
	"sync"

	"github.com/VitaminP8/discuss/internal/model"
)

// MockRoleStorage реализует user.RoleStorage для тестирования
type MockRoleStorage struct {
	mu    sync.Mutex
	roles map[string]model.Role // userID -> роль
	Err   error                 // если задана, возвращается на каждый вызов
	Calls int
}

func NewMockRoleStorage() *MockRoleStorage {
	return &MockRoleStorage{roles: make(map[string]model.Role)}
}

func (m *MockRoleStorage) SetRole(userID string, role model.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = role
}

// GetRole: пользователь без записи - обычный участник
func (m *MockRoleStorage) GetRole(ctx context.Context, userID string) (model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return model.RoleUnknown, m.Err
	}
	role, ok := m.roles[userID]
	if !ok {
		return model.RoleNotAdmin, nil
	}
	return role, nil
}

// MockIdentity всегда возвращает заданного пользователя
type MockIdentity struct {
	mu    sync.Mutex
	actor model.Actor
}

func NewMockIdentity(id, name string) *MockIdentity {
	return &MockIdentity{actor: model.Actor{ID: id, Name: name, Authenticated: id != ""}}
}

func (m *MockIdentity) Set(actor model.Actor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actor = actor
}

func (m *MockIdentity) CurrentActor(ctx context.Context) model.Actor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.actor
}
