package postgres

import (
	"context"
	"fmt"

	"github.com/VitaminP8/discuss/internal/model"
	"github.com/VitaminP8/discuss/models"
)

type CommentPostgresStorage struct{}

func NewCommentPostgresStorage() *CommentPostgresStorage {
	return &CommentPostgresStorage{}
}

// FetchComments - все комментарии поста плоским списком (дерево строит вызывающий код)
func (s *CommentPostgresStorage) FetchComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	postIDUint, err := parseID("post", postID)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err = DB.Select("id").First(&post, postIDUint).Error; err != nil {
		return nil, notFound(err, "post %s", postID)
	}

	var rows []models.Comment
	err = DB.Preload("User").
		Where("post_id = ?", postIDUint).
		Order("created_at asc").
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not get comments: %w", err)
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	reactions, err := loadReactions(DB, model.TargetComment, ids)
	if err != nil {
		return nil, err
	}

	results := make([]*model.Comment, 0, len(rows))
	for _, row := range rows {
		results = append(results, toComment(row, reactions[row.ID]))
	}
	return results, nil
}

func (s *CommentPostgresStorage) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	row, err := s.load(id)
	if err != nil {
		return nil, err
	}
	reactions, err := loadReactions(DB, model.TargetComment, []uint{row.ID})
	if err != nil {
		return nil, err
	}
	return toComment(row, reactions[row.ID]), nil
}

func (s *CommentPostgresStorage) load(id string) (models.Comment, error) {
	var row models.Comment
	idUint, err := parseID("comment", id)
	if err != nil {
		return row, err
	}
	if err = DB.Preload("User").First(&row, idUint).Error; err != nil {
		return row, notFound(err, "comment %s", id)
	}
	return row, nil
}

func (s *CommentPostgresStorage) CreateComment(ctx context.Context, in model.CreateCommentInput) (*model.Comment, error) {
	userID, err := parseUserID(in.AuthorID)
	if err != nil {
		return nil, err
	}
	postIDUint, err := parseID("post", in.PostID)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err = DB.Select("id").First(&post, postIDUint).Error; err != nil {
		return nil, notFound(err, "post %s", in.PostID)
	}

	comment := &models.Comment{
		PostID:  postIDUint,
		UserID:  userID,
		Content: in.Content,
	}

	if in.ParentID != nil {
		// проверяем что родительский комментарий существует и принадлежит тому же посту
		parent, err := s.load(*in.ParentID)
		if err != nil {
			return nil, model.Validationf("parent comment %s: %v", *in.ParentID, err)
		}
		if parent.PostID != postIDUint {
			return nil, model.Validationf("parent comment belongs to a different post")
		}
		comment.ParentID = &parent.ID
	}

	if err = DB.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("could not create comment: %w", err)
	}

	row, err := s.load(fmt.Sprint(comment.ID))
	if err != nil {
		return nil, err
	}
	return toComment(row, nil), nil
}

func (s *CommentPostgresStorage) UpdateComment(ctx context.Context, in model.UpdateCommentInput) (*model.Comment, error) {
	row, err := s.load(in.ID)
	if err != nil {
		return nil, err
	}

	if err = DB.Model(&row).Update("content", in.Content).Error; err != nil {
		return nil, fmt.Errorf("could not update comment: %w", err)
	}

	reactions, err := loadReactions(DB, model.TargetComment, []uint{row.ID})
	if err != nil {
		return nil, err
	}
	return toComment(row, reactions[row.ID]), nil
}

// DeleteComment не трогает ответы; повторное удаление возвращает model.ErrNotFound
func (s *CommentPostgresStorage) DeleteComment(ctx context.Context, id string) error {
	idUint, err := parseID("comment", id)
	if err != nil {
		return err
	}

	res := DB.Where("id = ?", idUint).Delete(&models.Comment{})
	if res.Error != nil {
		return fmt.Errorf("could not delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %s: %w", id, model.ErrNotFound)
	}

	err = DB.Unscoped().
		Where("target_type = ? AND target_id = ?", string(model.TargetComment), idUint).
		Delete(&models.Reaction{}).Error
	if err != nil {
		return fmt.Errorf("could not delete comment reactions: %w", err)
	}
	return nil
}
