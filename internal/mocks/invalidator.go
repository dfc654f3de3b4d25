package mocks

import "sync"

// MockInvalidator запоминает инвалидации для проверки в тестах
type MockInvalidator struct {
	mu    sync.Mutex
	posts []string
}

func NewMockInvalidator() *MockInvalidator {
	return &MockInvalidator{}
}

func (m *MockInvalidator) Invalidate(postID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, postID)
}

// GetInvalidations возвращает все инвалидации в порядке поступления
func (m *MockInvalidator) GetInvalidations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.posts...)
}
