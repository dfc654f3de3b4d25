package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/VitaminP8/discuss/internal/model"
)

type PostMemoryStorage struct {
	mu       sync.Mutex
	posts    map[string]*model.Post
	comments map[string]int // postID -> количество комментариев
	nextId   int

	users     *UserMemoryStorage
	reactions *ReactionMemoryStorage
}

// NewPostMemoryStorage: users и reactions могут быть nil
func NewPostMemoryStorage(users *UserMemoryStorage, reactions *ReactionMemoryStorage) *PostMemoryStorage {
	return &PostMemoryStorage{
		posts:     make(map[string]*model.Post),
		comments:  make(map[string]int),
		nextId:    1,
		users:     users,
		reactions: reactions,
	}
}

func (s *PostMemoryStorage) CreatePost(ctx context.Context, in model.CreatePostInput) (*model.Post, error) {
	if in.AuthorID == "" {
		return nil, fmt.Errorf("post without author: %w", model.ErrUnauthorized)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.Itoa(s.nextId)
	s.nextId++

	post := &model.Post{
		ID:        id,
		Title:     in.Title,
		Content:   in.Content,
		AuthorID:  in.AuthorID,
		CreatedAt: time.Now(),
	}

	s.posts[id] = post
	return s.view(post), nil
}

// view - копия поста с автором, реакциями и счётчиком комментариев
func (s *PostMemoryStorage) view(p *model.Post) *model.Post {
	out := *p
	if u, ok := s.users.lookup(p.AuthorID); ok {
		out.AuthorName = u.Name
		out.AuthorRole = u.Role
	} else {
		out.AuthorRole = model.RoleNotAdmin
	}
	out.Reactions = s.reactions.list(model.TargetRef{Kind: model.TargetPost, ID: p.ID})
	out.CommentCount = s.comments[p.ID]
	return &out
}

func (s *PostMemoryStorage) GetPost(ctx context.Context, id string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, fmt.Errorf("post %s: %w", id, model.ErrNotFound)
	}
	return s.view(post), nil
}

func (s *PostMemoryStorage) ListPosts(ctx context.Context) ([]*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]*model.Post, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, s.view(post))
	}
	return posts, nil
}

func (s *PostMemoryStorage) SetPinned(ctx context.Context, id string, pinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[id]
	if !exists {
		return fmt.Errorf("post %s: %w", id, model.ErrNotFound)
	}
	post.Pinned = pinned
	return nil
}

func (s *PostMemoryStorage) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[id]; !exists {
		return fmt.Errorf("post %s: %w", id, model.ErrNotFound)
	}
	delete(s.posts, id)
	delete(s.comments, id)
	s.reactions.dropTarget(model.TargetRef{Kind: model.TargetPost, ID: id})
	return nil
}

func (s *PostMemoryStorage) exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.posts[id]
	return ok
}

func (s *PostMemoryStorage) adjustComments(postID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; ok {
		s.comments[postID] += delta
	}
}
