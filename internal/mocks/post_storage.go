package mocks

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/VitaminP8/discuss/internal/model"
)

type MockPostStorage struct {
	posts map[string]*model.Post
	mu    sync.Mutex

	Err map[string]error
}

func NewMockPostStorage(posts ...*model.Post) *MockPostStorage {
	m := &MockPostStorage{
		posts: make(map[string]*model.Post),
		Err:   make(map[string]error),
	}
	for _, p := range posts {
		cp := *p
		m.posts[p.ID] = &cp
	}
	return m
}

func (m *MockPostStorage) takeErr(method string) error {
	err := m.Err[method]
	delete(m.Err, method)
	return err
}

func (m *MockPostStorage) CreatePost(ctx context.Context, in model.CreatePostInput) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeErr("CreatePost"); err != nil {
		return nil, err
	}

	id := strconv.Itoa(len(m.posts) + 1)
	post := &model.Post{
		ID:        id,
		Title:     in.Title,
		Content:   in.Content,
		AuthorID:  in.AuthorID,
		CreatedAt: time.Now(),
	}
	m.posts[id] = post
	cp := *post
	return &cp, nil
}

func (m *MockPostStorage) GetPost(ctx context.Context, id string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeErr("GetPost"); err != nil {
		return nil, err
	}

	post, ok := m.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id, model.ErrNotFound)
	}
	cp := *post
	return &cp, nil
}

func (m *MockPostStorage) ListPosts(ctx context.Context) ([]*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeErr("ListPosts"); err != nil {
		return nil, err
	}

	posts := make([]*model.Post, 0, len(m.posts))
	for _, post := range m.posts {
		cp := *post
		posts = append(posts, &cp)
	}
	return posts, nil
}

func (m *MockPostStorage) SetPinned(ctx context.Context, id string, pinned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeErr("SetPinned"); err != nil {
		return err
	}

	post, ok := m.posts[id]
	if !ok {
		return fmt.Errorf("post %s: %w", id, model.ErrNotFound)
	}
	post.Pinned = pinned
	return nil
}

func (m *MockPostStorage) DeletePost(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeErr("DeletePost"); err != nil {
		return err
	}

	if _, ok := m.posts[id]; !ok {
		return fmt.Errorf("post %s: %w", id, model.ErrNotFound)
	}
	delete(m.posts, id)
	return nil
}
