package reaction

import (
	"context"

	"github.com/VitaminP8/discuss/internal/model"
)

// ReactionStorage хранит не более одной реакции на пару (target, user)
type ReactionStorage interface {
	// SetReaction создаёт реакцию или заменяет тип существующей
	SetReaction(ctx context.Context, target model.TargetRef, userID, userName string, t model.ReactionType) (*model.Reaction, error)
	RemoveReaction(ctx context.Context, target model.TargetRef, userID string) error
	ListReactions(ctx context.Context, target model.TargetRef) ([]model.Reaction, error)
}
