package postgres

import (
	"fmt"
	"strconv"

	"github.com/jinzhu/gorm"

	"github.com/VitaminP8/discuss/internal/model"
	"github.com/VitaminP8/discuss/models"
)

// parseID: ID, который не может существовать в базе, - это "не найдено"
func parseID(kind, id string) (uint, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%s %q: %w", kind, id, model.ErrNotFound)
	}
	return uint(n), nil
}

func parseUserID(id string) (uint, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, model.Validationf("invalid user id %q", id)
	}
	return uint(n), nil
}

// notFound переводит ошибку gorm в model.ErrNotFound, остальные ошибки оборачивает
func notFound(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if gorm.IsRecordNotFoundError(err) {
		return fmt.Errorf("%s: %w", msg, model.ErrNotFound)
	}
	return fmt.Errorf("could not get %s: %w", msg, err)
}

func displayName(u models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

func toComment(row models.Comment, reactions []model.Reaction) *model.Comment {
	c := &model.Comment{
		ID:           fmt.Sprint(row.ID),
		PostID:       fmt.Sprint(row.PostID),
		Content:      row.Content,
		AuthorID:     fmt.Sprint(row.UserID),
		AuthorName:   displayName(row.User),
		AuthorAvatar: row.User.AvatarURL,
		CreatedAt:    row.CreatedAt,
		Reactions:    reactions,
	}
	if row.ParentID != nil {
		pid := fmt.Sprint(*row.ParentID)
		c.ParentID = &pid
	}
	if c.Reactions == nil {
		c.Reactions = []model.Reaction{}
	}
	return c
}

func toPost(row models.Post, reactions []model.Reaction, commentCount int) *model.Post {
	p := &model.Post{
		ID:           fmt.Sprint(row.ID),
		Title:        row.Title,
		Content:      row.Content,
		AuthorID:     fmt.Sprint(row.UserID),
		AuthorName:   displayName(row.User),
		AuthorRole:   model.ParseRole(row.User.Role),
		CreatedAt:    row.CreatedAt,
		Pinned:       row.Pinned,
		Reactions:    reactions,
		CommentCount: commentCount,
	}
	if p.Reactions == nil {
		p.Reactions = []model.Reaction{}
	}
	return p
}

// loadReactions читает реакции набора объектов одного типа одним запросом
func loadReactions(db *gorm.DB, kind model.TargetKind, ids []uint) (map[uint][]model.Reaction, error) {
	out := make(map[uint][]model.Reaction, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.Reaction
	err := db.Preload("User").
		Where("target_type = ? AND target_id IN (?)", string(kind), ids).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not get reactions: %w", err)
	}

	for _, r := range rows {
		out[r.TargetID] = append(out[r.TargetID], model.Reaction{
			ID:       fmt.Sprint(r.ID),
			Type:     model.ReactionType(r.Type),
			UserID:   fmt.Sprint(r.UserID),
			UserName: displayName(r.User),
		})
	}
	return out, nil
}
