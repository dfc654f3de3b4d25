package mocks

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/VitaminP8/discuss/internal/model"
)

// MockCommentStorage реализует comment.CommentStorage для тестов ядра.
// Считает вызовы, умеет возвращать заданные ошибки и задерживать операции.
type MockCommentStorage struct {
	mu       sync.Mutex
	comments map[string]*model.Comment
	order    []string // порядок создания
	nextID   int

	Calls map[string]int // имя метода -> количество вызовов

	// Err - ошибка, которую вернёт следующий вызов метода (и будет сброшена)
	Err map[string]error

	// Block - если задан для метода, вызов ждёт сигнала (или закрытия канала)
	Block map[string]chan struct{}
	// Entered получает имя метода, когда вызов начался (если канал задан)
	Entered chan string
}

func NewMockCommentStorage(records ...*model.Comment) *MockCommentStorage {
	m := &MockCommentStorage{
		comments: make(map[string]*model.Comment),
		nextID:   1,
		Calls:    make(map[string]int),
		Err:      make(map[string]error),
		Block:    make(map[string]chan struct{}),
	}
	for _, c := range records {
		cp := *c
		m.comments[c.ID] = &cp
		m.order = append(m.order, c.ID)
		m.nextID++
	}
	return m
}

// enter отмечает вызов и возвращает подготовленную ошибку
func (m *MockCommentStorage) enter(ctx context.Context, method string) error {
	m.mu.Lock()
	m.Calls[method]++
	err := m.Err[method]
	delete(m.Err, method)
	block := m.Block[method]
	entered := m.Entered
	m.mu.Unlock()

	if entered != nil {
		entered <- method
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// CallCount - потокобезопасное чтение счётчика
func (m *MockCommentStorage) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

func (m *MockCommentStorage) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err[method] = err
}

func (m *MockCommentStorage) SetBlock(method string, ch chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Block[method] = ch
}

func (m *MockCommentStorage) FetchComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	if err := m.enter(ctx, "FetchComments"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Comment, 0)
	for _, id := range m.order {
		c, ok := m.comments[id]
		if !ok || c.PostID != postID {
			continue
		}
		cp := *c
		cp.Reactions = append([]model.Reaction(nil), c.Reactions...)
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockCommentStorage) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	if err := m.enter(ctx, "GetComment"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id, model.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *MockCommentStorage) CreateComment(ctx context.Context, in model.CreateCommentInput) (*model.Comment, error) {
	if err := m.enter(ctx, "CreateComment"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if in.ParentID != nil {
		if _, ok := m.comments[*in.ParentID]; !ok {
			return nil, model.Validationf("parent comment %s not found", *in.ParentID)
		}
	}

	id := strconv.Itoa(m.nextID)
	m.nextID++
	c := &model.Comment{
		ID:        id,
		PostID:    in.PostID,
		ParentID:  in.ParentID,
		Content:   in.Content,
		AuthorID:  in.AuthorID,
		CreatedAt: time.Now(),
	}
	m.comments[id] = c
	m.order = append(m.order, id)
	cp := *c
	return &cp, nil
}

func (m *MockCommentStorage) UpdateComment(ctx context.Context, in model.UpdateCommentInput) (*model.Comment, error) {
	if err := m.enter(ctx, "UpdateComment"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.comments[in.ID]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", in.ID, model.ErrNotFound)
	}
	c.Content = in.Content
	cp := *c
	return &cp, nil
}

func (m *MockCommentStorage) DeleteComment(ctx context.Context, id string) error {
	if err := m.enter(ctx, "DeleteComment"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[id]; !ok {
		return fmt.Errorf("comment %s: %w", id, model.ErrNotFound)
	}
	delete(m.comments, id)
	return nil
}

// Put кладёт запись напрямую, минуя проверки (например, сироту или цикл)
func (m *MockCommentStorage) Put(c *model.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	if _, exists := m.comments[c.ID]; !exists {
		m.order = append(m.order, c.ID)
	}
	m.comments[c.ID] = &cp
}
