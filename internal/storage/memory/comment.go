package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/VitaminP8/discuss/internal/model"
)

type CommentMemoryStorage struct {
	mu       sync.Mutex
	comments map[string]*model.Comment
	order    []string // ID в порядке создания
	nextID   int

	postStorage *PostMemoryStorage // Хранилище постов (внедрение зависимости (DI))
	users       *UserMemoryStorage
	reactions   *ReactionMemoryStorage
}

func NewCommentMemoryStorage(postStore *PostMemoryStorage, users *UserMemoryStorage, reactions *ReactionMemoryStorage) *CommentMemoryStorage {
	return &CommentMemoryStorage{
		comments:    make(map[string]*model.Comment),
		nextID:      1,
		postStorage: postStore,
		users:       users,
		reactions:   reactions,
	}
}

func (s *CommentMemoryStorage) view(c *model.Comment) *model.Comment {
	out := *c
	if c.ParentID != nil {
		pid := *c.ParentID
		out.ParentID = &pid
	}
	if u, ok := s.users.lookup(c.AuthorID); ok {
		out.AuthorName = u.Name
		out.AuthorAvatar = u.AvatarURL
	}
	out.Reactions = s.reactions.list(model.TargetRef{Kind: model.TargetComment, ID: c.ID})
	out.Replies = nil
	return &out
}

// FetchComments - все комментарии поста плоским списком в порядке создания
func (s *CommentMemoryStorage) FetchComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	if s.postStorage != nil && !s.postStorage.exists(postID) {
		return nil, fmt.Errorf("post %s: %w", postID, model.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Comment, 0)
	for _, id := range s.order {
		c, ok := s.comments[id]
		if !ok || c.PostID != postID {
			continue
		}
		out = append(out, s.view(c))
	}
	return out, nil
}

func (s *CommentMemoryStorage) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id, model.ErrNotFound)
	}
	return s.view(c), nil
}

func (s *CommentMemoryStorage) CreateComment(ctx context.Context, in model.CreateCommentInput) (*model.Comment, error) {
	if in.AuthorID == "" {
		return nil, fmt.Errorf("comment without author: %w", model.ErrUnauthorized)
	}
	if s.postStorage != nil && !s.postStorage.exists(in.PostID) {
		return nil, fmt.Errorf("post %s: %w", in.PostID, model.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var parentPtr *string
	if in.ParentID != nil {
		// проверяем что родительский комментарий существует и принадлежит тому же посту
		parent, ok := s.comments[*in.ParentID]
		if !ok {
			return nil, model.Validationf("parent comment with ID %s not found", *in.ParentID)
		}
		if parent.PostID != in.PostID {
			return nil, model.Validationf("parent comment belongs to a different post")
		}
		pid := *in.ParentID
		parentPtr = &pid
	}

	id := strconv.Itoa(s.nextID)
	s.nextID++

	comment := &model.Comment{
		ID:        id,
		PostID:    in.PostID,
		ParentID:  parentPtr,
		Content:   in.Content,
		AuthorID:  in.AuthorID,
		CreatedAt: time.Now(),
	}
	s.comments[id] = comment
	s.order = append(s.order, id)

	if s.postStorage != nil {
		s.postStorage.adjustComments(in.PostID, 1)
	}
	return s.view(comment), nil
}

func (s *CommentMemoryStorage) UpdateComment(ctx context.Context, in model.UpdateCommentInput) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[in.ID]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", in.ID, model.ErrNotFound)
	}
	c.Content = in.Content
	return s.view(c), nil
}

// DeleteComment удаляет только сам комментарий: ответы остаются и при чтении поднимаются в корень
func (s *CommentMemoryStorage) DeleteComment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return fmt.Errorf("comment %s: %w", id, model.ErrNotFound)
	}
	delete(s.comments, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.reactions.dropTarget(model.TargetRef{Kind: model.TargetComment, ID: id})
	if s.postStorage != nil {
		s.postStorage.adjustComments(c.PostID, -1)
	}
	return nil
}
