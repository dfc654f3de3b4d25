package discussion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/VitaminP8/discuss/internal/model"
)

var errRoleUndetermined = errors.New("role is not determined yet")

// Coordinator выполняет создание, редактирование и удаление комментариев.
// Пока для ID идёт редактирование или удаление, второй запрос по тому же ID отклоняется.
// После успеха коллекция поста инвалидируется, локальное дерево не правится:
// источник истины - повторная загрузка.
type Coordinator struct {
	deps     Deps
	settings settings

	mu      sync.Mutex
	pending map[string]string // commentID -> op

	// недавно удалённые ID
	tombstones *lru.Cache[string, struct{}]
}

func NewCoordinator(deps Deps, opts ...Option) *Coordinator {
	s := newSettings(opts)
	size := s.tombstoneSize
	if size <= 0 {
		size = 1
	}
	tombstones, err := lru.New[string, struct{}](size)
	if err != nil {
		// lru.New ошибается только при size <= 0
		panic(fmt.Sprintf("tombstone cache: %v", err))
	}
	return &Coordinator{
		deps:       deps,
		settings:   s,
		pending:    make(map[string]string),
		tombstones: tombstones,
	}
}

// Pending сообщает, идёт ли сейчас изменение комментария с этим ID
func (c *Coordinator) Pending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}

func (c *Coordinator) acquire(id, op string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.pending[id]; busy {
		return false
	}
	c.pending[id] = op
	return true
}

func (c *Coordinator) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

// normalizeContent обрезает пробелы и проверяет длину. Ошибка - ValidationError.
func (c *Coordinator) normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", model.Validationf("content is empty")
	}
	if c.settings.maxContent > 0 && utf8.RuneCountInString(content) > c.settings.maxContent {
		return "", model.Validationf("content is longer than %d characters", c.settings.maxContent)
	}
	return content, nil
}

func (c *Coordinator) authorize(ctx context.Context, action model.Action, target Target) (model.Actor, error) {
	actor := model.Anonymous
	if c.deps.Identity != nil {
		actor = c.deps.Identity.CurrentActor(ctx)
	}
	role := resolveRole(ctx, c.deps.Roles, actor, c.settings.logger)
	if role == model.RoleUnknown {
		return actor, fmt.Errorf("%s: %w", action, errRoleUndetermined)
	}
	if !c.settings.evaluator.Evaluate(actor, role, action, target) {
		return actor, fmt.Errorf("%s is not allowed for user %q: %w", action, actor.ID, model.ErrUnauthorized)
	}
	return actor, nil
}

// SubmitComment создаёт комментарий или ответ (parentID != nil)
func (c *Coordinator) SubmitComment(ctx context.Context, postID, content string, parentID *string) (created *model.Comment, err error) {
	const op = "submit"
	defer func() { c.finish(op, postID, "", err) }()

	content, err = c.normalizeContent(content)
	if err != nil {
		return nil, model.Classify(op, err)
	}
	if parentID != nil && *parentID == "" {
		parentID = nil
	}

	actor, err := c.authorize(ctx, model.ActionCreate, nil)
	if err != nil {
		return nil, model.Classify(op, err)
	}

	created, err = c.deps.Comments.CreateComment(ctx, model.CreateCommentInput{
		PostID:   postID,
		ParentID: parentID,
		Content:  content,
		AuthorID: actor.ID,
	})
	if err != nil {
		return nil, model.Classify(op, err)
	}

	c.settings.invalidate(postID)
	return created, nil
}

// EditComment заменяет текст. При ошибке ничего не меняется: правка видна только после подтверждения.
func (c *Coordinator) EditComment(ctx context.Context, id, content string) (updated *model.Comment, err error) {
	const op = "edit"
	postID := ""
	defer func() { c.finish(op, postID, id, err) }()

	content, err = c.normalizeContent(content)
	if err != nil {
		return nil, model.Classify(op, err)
	}

	if !c.acquire(id, op) {
		return nil, model.Classify(op, fmt.Errorf("comment %s: %w", id, model.ErrInFlight))
	}
	defer c.release(id)

	if c.tombstones.Contains(id) {
		return nil, model.Classify(op, fmt.Errorf("comment %s: %w", id, model.ErrAlreadyDeleted))
	}

	target, err := c.deps.Comments.GetComment(ctx, id)
	if err != nil {
		return nil, model.Classify(op, err)
	}
	postID = target.PostID

	if _, err = c.authorize(ctx, model.ActionUpdate, target); err != nil {
		return nil, model.Classify(op, err)
	}

	updated, err = c.deps.Comments.UpdateComment(ctx, model.UpdateCommentInput{ID: id, Content: content})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.settings.invalidate(postID)
		}
		return nil, model.Classify(op, err)
	}

	c.settings.invalidate(postID)
	return updated, nil
}

// DeleteComment удаляет комментарий. Повторное удаление возвращает ErrAlreadyDeleted
// (errors.Is(err, model.ErrNotFound)), а не успех.
func (c *Coordinator) DeleteComment(ctx context.Context, id string) (err error) {
	const op = "delete"
	postID := ""
	defer func() { c.finish(op, postID, id, err) }()

	if !c.acquire(id, op) {
		return model.Classify(op, fmt.Errorf("comment %s: %w", id, model.ErrInFlight))
	}
	defer c.release(id)

	if c.tombstones.Contains(id) {
		return model.Classify(op, fmt.Errorf("comment %s: %w", id, model.ErrAlreadyDeleted))
	}

	target, err := c.deps.Comments.GetComment(ctx, id)
	if err != nil {
		return model.Classify(op, alreadyGone(id, err))
	}
	postID = target.PostID

	if _, err = c.authorize(ctx, model.ActionDelete, target); err != nil {
		return model.Classify(op, err)
	}

	err = c.deps.Comments.DeleteComment(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.tombstones.Add(id, struct{}{})
			c.settings.invalidate(postID)
		}
		return model.Classify(op, alreadyGone(id, err))
	}

	c.tombstones.Add(id, struct{}{})
	c.settings.invalidate(postID)
	return nil
}

func alreadyGone(id string, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("comment %s: %w (%v)", id, model.ErrAlreadyDeleted, err)
	}
	return err
}

func (c *Coordinator) finish(op, postID, commentID string, err error) {
	mutationsTotal.WithLabelValues(op, outcome(err)).Inc()
	if err == nil {
		c.settings.logger.Debug("comment mutation applied", "op", op, "post_id", postID, "comment_id", commentID)
		return
	}
	c.settings.logger.Warn("comment mutation failed",
		"op", op,
		"post_id", postID,
		"comment_id", commentID,
		"kind", model.KindOf(err).String(),
		"error", err,
	)
}
