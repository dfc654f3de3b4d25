// Package api - тонкий HTTP JSON слой поверх движка обсуждений
package api

import (
	"log/slog"

	"github.com/VitaminP8/discuss/internal/discussion"
)

// Resolver служит корневой точкой для всех обработчиков.
// Здесь внедряются зависимости ядра; своей логики у слоя нет.
type Resolver struct {
	Deps        discussion.Deps
	Coordinator *discussion.Coordinator
	Posts       *discussion.PostActions
	// Options передаются каждому Thread, который открывает обработчик
	Options []discussion.Option
	Logger  *slog.Logger
}

// NewResolver собирает Coordinator и PostActions из одних и тех же зависимостей
func NewResolver(deps discussion.Deps, logger *slog.Logger, opts ...discussion.Option) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]discussion.Option{discussion.WithLogger(logger)}, opts...)
	return &Resolver{
		Deps:        deps,
		Coordinator: discussion.NewCoordinator(deps, opts...),
		Posts:       discussion.NewPostActions(deps, opts...),
		Options:     opts,
		Logger:      logger,
	}
}

func (r *Resolver) openThread(postID string) *discussion.Thread {
	return discussion.OpenThread(postID, r.Deps, r.Coordinator, r.Options...)
}
