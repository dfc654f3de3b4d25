package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/VitaminP8/discuss/internal/model"
)

type ReactionMemoryStorage struct {
	mu    sync.Mutex
	items map[model.TargetRef][]model.Reaction
}

func NewReactionMemoryStorage() *ReactionMemoryStorage {
	return &ReactionMemoryStorage{
		items: make(map[model.TargetRef][]model.Reaction),
	}
}

// SetReaction ставит или заменяет реакцию пользователя на объект
func (s *ReactionMemoryStorage) SetReaction(ctx context.Context, target model.TargetRef, userID, userName string, t model.ReactionType) (*model.Reaction, error) {
	if !t.Valid() {
		return nil, model.Validationf("unknown reaction type %q", t)
	}
	if userID == "" {
		return nil, fmt.Errorf("reaction without user: %w", model.ErrUnauthorized)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.items[target]
	for i := range list {
		if list[i].UserID == userID {
			list[i].Type = t
			r := list[i]
			return &r, nil
		}
	}

	r := model.Reaction{
		ID:       uuid.NewString(),
		Type:     t,
		UserID:   userID,
		UserName: userName,
	}
	s.items[target] = append(list, r)
	return &r, nil
}

func (s *ReactionMemoryStorage) RemoveReaction(ctx context.Context, target model.TargetRef, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.items[target]
	for i := range list {
		if list[i].UserID == userID {
			s.items[target] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("reaction of user %s on %s: %w", userID, target, model.ErrNotFound)
}

func (s *ReactionMemoryStorage) ListReactions(ctx context.Context, target model.TargetRef) ([]model.Reaction, error) {
	return s.list(target), nil
}

func (s *ReactionMemoryStorage) list(target model.TargetRef) []model.Reaction {
	if s == nil {
		return []model.Reaction{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Reaction{}, s.items[target]...)
}

// dropTarget удаляет реакции удалённого объекта
func (s *ReactionMemoryStorage) dropTarget(target model.TargetRef) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, target)
}
