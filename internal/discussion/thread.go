package discussion

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/VitaminP8/discuss/internal/model"
	"github.com/VitaminP8/discuss/internal/reaction"
)

var ErrThreadClosed = errors.New("thread is closed")

// Node - комментарий вместе со всем, что нужно для его отрисовки
type Node struct {
	Comment     *model.Comment
	Depth       int
	Reactions   ReactionSummary
	Permissions Permissions
	CanReply    bool
	Replies     []*Node
}

// overlay - ожидаемое состояние реакции пользователя поверх данных сервера.
// settledGen - номер загрузки, во время которой сохранение завершилось (0 - ещё идёт).
type overlay struct {
	want       model.ReactionType
	seq        uint64
	settledGen uint64
}

// Thread принадлежит одному контексту (экрану, запросу) и владеет деревом одного поста.
// После Close результаты незавершённых загрузок и реакций отбрасываются без ошибок.
type Thread struct {
	postID   string
	deps     Deps
	coord    *Coordinator
	settings settings

	mu       sync.Mutex
	closed   bool
	gen      uint64
	seq      uint64
	loaded   bool
	// marks - сколько сигналов об изменении пришло с шины, freshAt - сколько их было
	// к началу последней успешной загрузки
	marks    uint64
	freshAt  uint64
	roots    []*model.Comment
	post     *model.Post
	server   map[model.TargetRef][]model.Reaction
	overlays map[model.TargetRef]overlay
	actor    model.Actor
	role     model.Role

	events      <-chan model.Invalidation
	unsubscribe func()
}

// OpenThread создаёт представление поста. coord может быть общим для нескольких Thread.
func OpenThread(postID string, deps Deps, coord *Coordinator, opts ...Option) *Thread {
	t := &Thread{
		postID:   postID,
		deps:     deps,
		coord:    coord,
		settings: newSettings(opts),
		server:   make(map[model.TargetRef][]model.Reaction),
		overlays: make(map[model.TargetRef]overlay),
	}
	if deps.Events != nil {
		t.events, t.unsubscribe = deps.Events.Subscribe(postID)
	}
	return t
}

func (t *Thread) PostID() string { return t.postID }

// Close отписывает Thread от шины; поздние результаты будут отброшены
func (t *Thread) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	if t.unsubscribe != nil {
		t.unsubscribe()
	}
}

// discarded - владелец уже ушёл или запрос отменён
func (t *Thread) discarded(ctx context.Context) bool {
	return t.closed || ctx.Err() != nil
}

// Refresh загружает комментарии и перестраивает дерево целиком.
// Дерево меняется только после полной загрузки.
func (t *Thread) Refresh(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.gen++
	gen := t.gen
	// сигналы, пришедшие до снимка, этой загрузкой покрыты; пришедшие во время - нет
	t.pollEvents()
	mark := t.marks
	t.mu.Unlock()

	actor := model.Anonymous
	if t.deps.Identity != nil {
		actor = t.deps.Identity.CurrentActor(ctx)
	}
	role := resolveRole(ctx, t.deps.Roles, actor, t.settings.logger)

	records, err := t.deps.Comments.FetchComments(ctx, t.postID)
	var p *model.Post
	if err == nil && t.deps.Posts != nil {
		p, err = t.deps.Posts.GetPost(ctx, t.postID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.discarded(ctx) || gen != t.gen {
		staleResultsTotal.WithLabelValues("fetch").Inc()
		return nil
	}
	if err != nil {
		return model.Classify("fetch", err)
	}

	roots, stats := buildTree(records)
	if stats.Orphans > 0 || stats.Cycles > 0 {
		treePromotionsTotal.WithLabelValues("orphan").Add(float64(stats.Orphans))
		treePromotionsTotal.WithLabelValues("cycle").Add(float64(stats.Cycles))
		t.settings.logger.Debug("comments promoted to root",
			"post_id", t.postID, "orphans", stats.Orphans, "cycles", stats.Cycles)
	}

	server := make(map[model.TargetRef][]model.Reaction, len(records)+1)
	Walk(roots, func(c *model.Comment, _ int) bool {
		server[model.TargetRef{Kind: model.TargetComment, ID: c.ID}] = c.Reactions
		return true
	})
	if p != nil {
		server[model.TargetRef{Kind: model.TargetPost, ID: p.ID}] = p.Reactions
	}

	// источник истины - сервер: оверлей живёт, только пока сохранение не завершилось
	// до начала этой загрузки и сервер ещё не показывает нужную реакцию
	for ref, o := range t.overlays {
		settledBefore := o.settledGen != 0 && o.settledGen < gen
		if settledBefore || reactionOf(server[ref], actor.ID) == o.want {
			delete(t.overlays, ref)
		}
	}

	t.roots = roots
	t.post = p
	t.server = server
	t.actor = actor
	t.role = role
	t.loaded = true
	t.freshAt = mark
	return nil
}

// pollEvents забирает накопившиеся сигналы шины. Вызывается под t.mu.
func (t *Thread) pollEvents() {
	for t.events != nil {
		select {
		case _, ok := <-t.events:
			if !ok {
				t.events = nil
				return
			}
			t.marks++
		default:
			return
		}
	}
}

// Stale - после последней загрузки пост кто-то изменил; нужен Refresh
func (t *Thread) Stale() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return true
	}
	t.pollEvents()
	return t.marks != t.freshAt
}

// Role - роль, с которой считались права при последней загрузке
func (t *Thread) Role() model.Role {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.role
}

// Post - пост (если подключено хранилище постов) с учётом оптимистичных реакций
func (t *Thread) Post() *model.Post {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.post == nil {
		return nil
	}
	p := *t.post
	p.Reactions = t.effective(model.TargetRef{Kind: model.TargetPost, ID: p.ID})
	return &p
}

// PostReactions - сводка реакций на пост
func (t *Thread) PostReactions() ReactionSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return NewReactionSet(t.effective(model.TargetRef{Kind: model.TargetPost, ID: t.postID}), t.actor.ID, t.actor.Name).Summary()
}

func (t *Thread) effective(ref model.TargetRef) []model.Reaction {
	server := t.server[ref]
	o, ok := t.overlays[ref]
	if !ok {
		return server
	}
	return applyOverlay(server, t.actor.ID, t.actor.Name, o.want)
}

// Nodes - лес с реакциями, правами и глубиной для каждого узла
func (t *Thread) Nodes() []*Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	type frame struct {
		c    *model.Comment
		into *[]*Node
	}
	out := make([]*Node, 0, len(t.roots))
	stack := make([]frame, 0, len(t.roots))
	for i := len(t.roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{t.roots[i], &out})
	}
	canCreate := t.settings.evaluator.Evaluate(t.actor, t.role, model.ActionCreate, nil)
	depths := make(map[*model.Comment]int)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		depth := depths[f.c]

		reactions := t.effective(model.TargetRef{Kind: model.TargetComment, ID: f.c.ID})
		n := &Node{
			Comment:     f.c,
			Depth:       depth,
			Reactions:   NewReactionSet(reactions, t.actor.ID, t.actor.Name).Summary(),
			Permissions: t.settings.evaluator.For(t.actor, t.role, f.c),
			CanReply:    canCreate && CanReply(depth, t.settings.maxDepth),
			Replies:     make([]*Node, 0, len(f.c.Replies)),
		}
		*f.into = append(*f.into, n)
		for i := len(f.c.Replies) - 1; i >= 0; i-- {
			child := f.c.Replies[i]
			depths[child] = depth + 1
			stack = append(stack, frame{child, &n.Replies})
		}
	}
	return out
}

// ToggleReaction сразу меняет локальное состояние и затем сохраняет реакцию.
// При ошибке сохранения оптимистичное изменение откатывается.
func (t *Thread) ToggleReaction(ctx context.Context, target model.TargetRef, rt model.ReactionType) error {
	if t.deps.Reactions == nil {
		return fmt.Errorf("reaction storage is not configured")
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrThreadClosed
	}
	if !t.loaded {
		t.mu.Unlock()
		return model.Classify("react", model.Validationf("thread %s is not loaded", t.postID))
	}
	if _, known := t.server[target]; !known && target.Kind == model.TargetComment {
		t.mu.Unlock()
		return model.Classify("react", fmt.Errorf("%s: %w", target, model.ErrNotFound))
	}
	set := NewReactionSet(t.effective(target), t.actor.ID, t.actor.Name)
	res, err := set.Toggle(rt)
	if err != nil {
		t.mu.Unlock()
		reactionTogglesTotal.WithLabelValues(outcome(err)).Inc()
		return model.Classify("react", err)
	}
	t.seq++
	seq := t.seq
	t.overlays[target] = overlay{want: res.After, seq: seq}
	actor := t.actor
	t.mu.Unlock()

	err = persistToggle(ctx, t.deps.Reactions, target, actor, res)

	t.mu.Lock()
	defer t.mu.Unlock()
	o, current := t.overlays[target]
	current = current && o.seq == seq
	if t.discarded(ctx) {
		// результат неизвестен - показываем то, что знает сервер
		if current {
			delete(t.overlays, target)
		}
		staleResultsTotal.WithLabelValues("reaction").Inc()
		return nil
	}
	reactionTogglesTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		if current {
			delete(t.overlays, target)
		}
		return model.Classify("react", err)
	}
	if current {
		o.settledGen = t.gen
		t.overlays[target] = o
	}
	t.settings.invalidate(t.postID)
	return nil
}

func persistToggle(ctx context.Context, store reaction.ReactionStorage, target model.TargetRef, actor model.Actor, res ToggleResult) error {
	if res.After == "" {
		err := store.RemoveReaction(ctx, target, actor.ID)
		if errors.Is(err, model.ErrNotFound) {
			// на сервере реакции уже нет - желаемое состояние достигнуто
			return nil
		}
		return err
	}
	_, err := store.SetReaction(ctx, target, actor.ID, actor.Name, res.After)
	return err
}

// SubmitComment - ответ в этом посте (parentID == nil - комментарий верхнего уровня)
func (t *Thread) SubmitComment(ctx context.Context, content string, parentID *string) (*model.Comment, error) {
	return t.coord.SubmitComment(ctx, t.postID, content, parentID)
}

func (t *Thread) EditComment(ctx context.Context, id, content string) (*model.Comment, error) {
	return t.coord.EditComment(ctx, id, content)
}

func (t *Thread) DeleteComment(ctx context.Context, id string) error {
	return t.coord.DeleteComment(ctx, id)
}

// Pending - идёт ли изменение комментария
func (t *Thread) Pending(id string) bool {
	return t.coord.Pending(id)
}
