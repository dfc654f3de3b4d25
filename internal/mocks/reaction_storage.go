package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/VitaminP8/discuss/internal/model"
)

// MockReactionStorage хранит реакции в памяти; запись на (target, user) одна
type MockReactionStorage struct {
	mu    sync.Mutex
	items map[model.TargetRef][]model.Reaction

	Calls map[string]int
	Err   map[string]error
	// Block задерживает SetReaction/RemoveReaction до сигнала
	Block chan struct{}
}

func NewMockReactionStorage() *MockReactionStorage {
	return &MockReactionStorage{
		items: make(map[model.TargetRef][]model.Reaction),
		Calls: make(map[string]int),
		Err:   make(map[string]error),
	}
}

func (m *MockReactionStorage) enter(ctx context.Context, method string, wait bool) error {
	m.mu.Lock()
	m.Calls[method]++
	err := m.Err[method]
	delete(m.Err, method)
	block := m.Block
	m.mu.Unlock()

	if wait && block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *MockReactionStorage) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

func (m *MockReactionStorage) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err[method] = err
}

// Seed задаёт реакции объекта напрямую
func (m *MockReactionStorage) Seed(target model.TargetRef, items ...model.Reaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[target] = append([]model.Reaction(nil), items...)
}

func (m *MockReactionStorage) SetReaction(ctx context.Context, target model.TargetRef, userID, userName string, t model.ReactionType) (*model.Reaction, error) {
	if err := m.enter(ctx, "SetReaction", true); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.items[target]
	for i := range list {
		if list[i].UserID == userID {
			list[i].Type = t
			r := list[i]
			return &r, nil
		}
	}
	r := model.Reaction{ID: uuid.NewString(), Type: t, UserID: userID, UserName: userName}
	m.items[target] = append(list, r)
	return &r, nil
}

func (m *MockReactionStorage) RemoveReaction(ctx context.Context, target model.TargetRef, userID string) error {
	if err := m.enter(ctx, "RemoveReaction", true); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.items[target]
	for i := range list {
		if list[i].UserID == userID {
			m.items[target] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("reaction of %s on %s: %w", userID, target, model.ErrNotFound)
}

func (m *MockReactionStorage) ListReactions(ctx context.Context, target model.TargetRef) ([]model.Reaction, error) {
	if err := m.enter(ctx, "ListReactions", false); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Reaction(nil), m.items[target]...), nil
}
