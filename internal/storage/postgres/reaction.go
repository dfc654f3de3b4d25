package postgres

import (
	"context"
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/VitaminP8/discuss/internal/model"
	"github.com/VitaminP8/discuss/models"
)

type ReactionPostgresStorage struct{}

func NewReactionPostgresStorage() *ReactionPostgresStorage {
	return &ReactionPostgresStorage{}
}

// SetReaction ставит или заменяет реакцию пользователя в одной транзакции
func (s *ReactionPostgresStorage) SetReaction(ctx context.Context, target model.TargetRef, userID, userName string, t model.ReactionType) (*model.Reaction, error) {
	if !t.Valid() {
		return nil, model.Validationf("unknown reaction type %q", t)
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	targetID, err := parseID(string(target.Kind), target.ID)
	if err != nil {
		return nil, err
	}

	if err = targetExists(target.Kind, targetID); err != nil {
		return nil, err
	}

	tx := DB.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", tx.Error)
	}

	var row models.Reaction
	err = tx.Where("target_type = ? AND target_id = ? AND user_id = ?", string(target.Kind), targetID, uid).First(&row).Error
	switch {
	case gorm.IsRecordNotFoundError(err):
		row = models.Reaction{TargetType: string(target.Kind), TargetID: targetID, UserID: uid, Type: string(t)}
		err = tx.Create(&row).Error
	case err == nil:
		err = tx.Model(&row).Update("type", string(t)).Error
	}
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("could not set reaction: %w", err)
	}

	if err = tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("could not commit reaction: %w", err)
	}

	return &model.Reaction{
		ID:       fmt.Sprint(row.ID),
		Type:     t,
		UserID:   userID,
		UserName: userName,
	}, nil
}

func (s *ReactionPostgresStorage) RemoveReaction(ctx context.Context, target model.TargetRef, userID string) error {
	uid, err := parseUserID(userID)
	if err != nil {
		return err
	}
	targetID, err := parseID(string(target.Kind), target.ID)
	if err != nil {
		return err
	}

	res := DB.Unscoped().
		Where("target_type = ? AND target_id = ? AND user_id = ?", string(target.Kind), targetID, uid).
		Delete(&models.Reaction{})
	if res.Error != nil {
		return fmt.Errorf("could not remove reaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reaction of user %s on %s: %w", userID, target, model.ErrNotFound)
	}
	return nil
}

func (s *ReactionPostgresStorage) ListReactions(ctx context.Context, target model.TargetRef) ([]model.Reaction, error) {
	targetID, err := parseID(string(target.Kind), target.ID)
	if err != nil {
		return nil, err
	}
	byTarget, err := loadReactions(DB, target.Kind, []uint{targetID})
	if err != nil {
		return nil, err
	}
	if byTarget[targetID] == nil {
		return []model.Reaction{}, nil
	}
	return byTarget[targetID], nil
}

// targetExists: реакцию можно поставить только на существующий пост или комментарий
func targetExists(kind model.TargetKind, id uint) error {
	var q *gorm.DB
	switch kind {
	case model.TargetPost:
		q = DB.Model(&models.Post{})
	case model.TargetComment:
		q = DB.Model(&models.Comment{})
	default:
		return model.Validationf("unknown reaction target %q", kind)
	}

	var count int
	if err := q.Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("could not check %s %d: %w", kind, id, err)
	}
	if count == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, model.ErrNotFound)
	}
	return nil
}
