package discussion

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/VitaminP8/discuss/internal/model"
)

// SortFeed: сначала закреплённые, затем от новых к старым. Исходный срез не меняется.
func SortFeed(posts []*model.Post) []*model.Post {
	out := append([]*model.Post(nil), posts...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// PostActions - операции над постами с той же проверкой прав, что и для комментариев
type PostActions struct {
	deps     Deps
	settings settings
}

func NewPostActions(deps Deps, opts ...Option) *PostActions {
	return &PostActions{deps: deps, settings: newSettings(opts)}
}

func (a *PostActions) actorAndRole(ctx context.Context) (model.Actor, model.Role) {
	actor := model.Anonymous
	if a.deps.Identity != nil {
		actor = a.deps.Identity.CurrentActor(ctx)
	}
	return actor, resolveRole(ctx, a.deps.Roles, actor, a.settings.logger)
}

func (a *PostActions) check(ctx context.Context, action model.Action, target Target) (model.Actor, error) {
	actor, role := a.actorAndRole(ctx)
	if role == model.RoleUnknown {
		return actor, fmt.Errorf("%s: %w", action, errRoleUndetermined)
	}
	if !a.settings.evaluator.Evaluate(actor, role, action, target) {
		return actor, fmt.Errorf("%s is not allowed for user %q: %w", action, actor.ID, model.ErrUnauthorized)
	}
	return actor, nil
}

// Feed - лента постов в порядке отображения
func (a *PostActions) Feed(ctx context.Context) ([]*model.Post, error) {
	posts, err := a.deps.Posts.ListPosts(ctx)
	if err != nil {
		return nil, model.Classify("feed", err)
	}
	return SortFeed(posts), nil
}

// CanCreate - показывать ли форму нового поста. Второе значение false, пока роль не определена.
func (a *PostActions) CanCreate(ctx context.Context) (allowed bool, known bool) {
	actor, role := a.actorAndRole(ctx)
	if role == model.RoleUnknown {
		return false, false
	}
	return a.settings.evaluator.Evaluate(actor, role, model.ActionCreate, nil), true
}

func (a *PostActions) CreatePost(ctx context.Context, title, content string) (*model.Post, error) {
	const op = "create_post"
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, model.Classify(op, model.Validationf("title and content are required"))
	}

	actor, err := a.check(ctx, model.ActionCreate, nil)
	if err != nil {
		return nil, model.Classify(op, err)
	}

	p, err := a.deps.Posts.CreatePost(ctx, model.CreatePostInput{Title: title, Content: content, AuthorID: actor.ID})
	if err != nil {
		return nil, model.Classify(op, err)
	}
	return p, nil
}

// SetPinned закрепляет или открепляет пост (только модерация)
func (a *PostActions) SetPinned(ctx context.Context, postID string, pinned bool) error {
	const op = "pin_post"
	p, err := a.deps.Posts.GetPost(ctx, postID)
	if err != nil {
		return model.Classify(op, err)
	}
	if _, err = a.check(ctx, model.ActionModerate, p); err != nil {
		return model.Classify(op, err)
	}
	return model.Classify(op, a.deps.Posts.SetPinned(ctx, postID, pinned))
}

func (a *PostActions) DeletePost(ctx context.Context, postID string) error {
	const op = "delete_post"
	p, err := a.deps.Posts.GetPost(ctx, postID)
	if err != nil {
		return model.Classify(op, err)
	}
	if _, err = a.check(ctx, model.ActionDelete, p); err != nil {
		return model.Classify(op, err)
	}
	if err = a.deps.Posts.DeletePost(ctx, postID); err != nil {
		return model.Classify(op, err)
	}
	a.settings.invalidate(postID)
	return nil
}

// ToggleReaction на пост из ленты, без оптимистичного слоя: состояние читается с сервера
func (a *PostActions) ToggleReaction(ctx context.Context, postID string, rt model.ReactionType) (ReactionSummary, error) {
	const op = "react"
	if a.deps.Posts != nil {
		if _, err := a.deps.Posts.GetPost(ctx, postID); err != nil {
			return ReactionSummary{}, model.Classify(op, err)
		}
	}
	actor, _ := a.actorAndRole(ctx)
	target := model.TargetRef{Kind: model.TargetPost, ID: postID}

	current, err := a.deps.Reactions.ListReactions(ctx, target)
	if err != nil {
		return ReactionSummary{}, model.Classify(op, err)
	}
	set := NewReactionSet(current, actor.ID, actor.Name)
	res, err := set.Toggle(rt)
	if err != nil {
		return ReactionSummary{}, model.Classify(op, err)
	}
	err = persistToggle(ctx, a.deps.Reactions, target, actor, res)
	reactionTogglesTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return ReactionSummary{}, model.Classify(op, err)
	}
	return set.Summary(), nil
}
