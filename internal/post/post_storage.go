package post

import (
	"context"

	"github.com/VitaminP8/discuss/internal/model"
)

type PostStorage interface {
	CreatePost(ctx context.Context, input model.CreatePostInput) (*model.Post, error)
	GetPost(ctx context.Context, id string) (*model.Post, error)
	// ListPosts возвращает посты с заполненными CommentCount и Reactions (порядок не гарантируется)
	ListPosts(ctx context.Context) ([]*model.Post, error)
	SetPinned(ctx context.Context, id string, pinned bool) error
	DeletePost(ctx context.Context, id string) error
}
