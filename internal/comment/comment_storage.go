package comment

import (
	"context"

	"github.com/VitaminP8/discuss/internal/model"
)

// CommentStorage - хранилище комментариев. Реализации возвращают ошибки,
// обёрнутые в model.ErrNotFound / model.ErrValidation, чтобы их можно было классифицировать.
type CommentStorage interface {
	// FetchComments возвращает плоский список комментариев поста: сначала старые, при равенстве - по ID
	FetchComments(ctx context.Context, postID string) ([]*model.Comment, error)
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	CreateComment(ctx context.Context, input model.CreateCommentInput) (*model.Comment, error)
	UpdateComment(ctx context.Context, input model.UpdateCommentInput) (*model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}
