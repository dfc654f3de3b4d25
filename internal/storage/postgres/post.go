package postgres

import (
	"context"
	"fmt"

	"github.com/VitaminP8/discuss/internal/model"
	"github.com/VitaminP8/discuss/models"
)

type PostPostgresStorage struct{}

func NewPostPostgresStorage() *PostPostgresStorage {
	return &PostPostgresStorage{}
}

func (s *PostPostgresStorage) CreatePost(ctx context.Context, in model.CreatePostInput) (*model.Post, error) {
	userID, err := parseUserID(in.AuthorID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:   in.Title,
		Content: in.Content,
		UserID:  userID,
	}

	if err = DB.Create(post).Error; err != nil {
		return nil, fmt.Errorf("could not create post: %w", err)
	}

	return s.GetPost(ctx, fmt.Sprint(post.ID))
}

func (s *PostPostgresStorage) GetPost(ctx context.Context, id string) (*model.Post, error) {
	idUint, err := parseID("post", id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err = DB.Preload("User").First(&post, idUint).Error; err != nil {
		return nil, notFound(err, "post %s", id)
	}

	var count int
	if err = DB.Model(&models.Comment{}).Where("post_id = ?", idUint).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("could not count comments: %w", err)
	}

	reactions, err := loadReactions(DB, model.TargetPost, []uint{post.ID})
	if err != nil {
		return nil, err
	}
	return toPost(post, reactions[post.ID], count), nil
}

type commentCount struct {
	PostID uint
	N      int
}

func (s *PostPostgresStorage) ListPosts(ctx context.Context) ([]*model.Post, error) {
	var posts []models.Post
	if err := DB.Preload("User").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("could not get posts: %w", err)
	}

	var counts []commentCount
	err := DB.Model(&models.Comment{}).
		Select("post_id, count(*) as n").
		Group("post_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("could not count comments: %w", err)
	}
	byPost := make(map[uint]int, len(counts))
	for _, c := range counts {
		byPost[c.PostID] = c.N
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	reactions, err := loadReactions(DB, model.TargetPost, ids)
	if err != nil {
		return nil, err
	}

	results := make([]*model.Post, 0, len(posts))
	for _, p := range posts {
		results = append(results, toPost(p, reactions[p.ID], byPost[p.ID]))
	}
	return results, nil
}

func (s *PostPostgresStorage) SetPinned(ctx context.Context, id string, pinned bool) error {
	idUint, err := parseID("post", id)
	if err != nil {
		return err
	}

	var post models.Post
	if err = DB.First(&post, idUint).Error; err != nil {
		return notFound(err, "post %s", id)
	}

	if err = DB.Model(&post).Update("pinned", pinned).Error; err != nil {
		return fmt.Errorf("could not pin post: %w", err)
	}
	return nil
}

func (s *PostPostgresStorage) DeletePost(ctx context.Context, id string) error {
	idUint, err := parseID("post", id)
	if err != nil {
		return err
	}

	res := DB.Where("id = ?", idUint).Delete(&models.Post{})
	if res.Error != nil {
		return fmt.Errorf("could not delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post %s: %w", id, model.ErrNotFound)
	}

	err = DB.Unscoped().
		Where("target_type = ? AND target_id = ?", string(model.TargetPost), idUint).
		Delete(&models.Reaction{}).Error
	if err != nil {
		return fmt.Errorf("could not delete post reactions: %w", err)
	}
	return nil
}
