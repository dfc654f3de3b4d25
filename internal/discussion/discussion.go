// Package discussion - движок обсуждений: дерево комментариев, реакции,
// права доступа и координация изменений поверх интерфейсов хранилища.
package discussion

import (
	"context"
	"log/slog"

	"github.com/VitaminP8/discuss/internal/comment"
	"github.com/VitaminP8/discuss/internal/model"
	"github.com/VitaminP8/discuss/internal/post"
	"github.com/VitaminP8/discuss/internal/reaction"
	"github.com/VitaminP8/discuss/internal/user"
)

// DefaultMaxContentLength - максимальная длина текста в рунах
const DefaultMaxContentLength = 2000

// Identity отдаёт текущего пользователя
type Identity interface {
	CurrentActor(ctx context.Context) model.Actor
}

// Invalidator сбрасывает закешированную коллекцию комментариев поста
type Invalidator interface {
	Invalidate(postID string)
}

// Subscriber - шина инвалидаций, на которую подписывается Thread
type Subscriber interface {
	Subscribe(postID string) (<-chan model.Invalidation, func())
}

// Deps - внешние зависимости ядра. Posts, Reactions и Events могут быть nil.
type Deps struct {
	Comments  comment.CommentStorage
	Reactions reaction.ReactionStorage
	Posts     post.PostStorage
	Roles     user.RoleStorage
	Identity  Identity
	Events    Subscriber
}

type settings struct {
	evaluator     *Evaluator
	invalidators  []Invalidator
	logger        *slog.Logger
	maxContent    int
	maxDepth      int
	tombstoneSize int
}

type Option func(*settings)

func WithEvaluator(e *Evaluator) Option {
	return func(s *settings) { s.evaluator = e }
}

// WithInvalidator добавляет получателя сигнала об устаревшей коллекции
func WithInvalidator(inv ...Invalidator) Option {
	return func(s *settings) { s.invalidators = append(s.invalidators, inv...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func WithMaxContentLength(n int) Option {
	return func(s *settings) { s.maxContent = n }
}

func WithMaxDepth(n int) Option {
	return func(s *settings) { s.maxDepth = n }
}

// WithTombstones задаёт, сколько удалённых ID помнит координатор
func WithTombstones(n int) Option {
	return func(s *settings) { s.tombstoneSize = n }
}

func newSettings(opts []Option) settings {
	s := settings{
		evaluator:     defaultEvaluator,
		maxContent:    DefaultMaxContentLength,
		maxDepth:      DefaultMaxDepth,
		tombstoneSize: 1024,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.evaluator == nil {
		s.evaluator = defaultEvaluator
	}
	return s
}

func (s settings) invalidate(postID string) {
	for _, inv := range s.invalidators {
		inv.Invalidate(postID)
	}
}

// resolveRole: ошибка чтения роли - это "не определено", а не отказ
func resolveRole(ctx context.Context, roles user.RoleStorage, actor model.Actor, logger *slog.Logger) model.Role {
	if !actor.Authenticated || actor.ID == "" {
		return model.RoleNotAdmin
	}
	if roles == nil {
		return model.RoleUnknown
	}
	role, err := roles.GetRole(ctx, actor.ID)
	if err != nil {
		logger.Warn("role lookup failed", "user_id", actor.ID, "error", err)
		return model.RoleUnknown
	}
	return role
}
