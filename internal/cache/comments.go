// Package cache - кеш коллекций комментариев поверх comment.CommentStorage
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/VitaminP8/discuss/internal/comment"
	"github.com/VitaminP8/discuss/internal/model"
)

const (
	DefaultSize = 500
	DefaultTTL  = 30 * time.Second
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "discuss",
	Subsystem: "cache",
	Name:      "requests_total",
	Help:      "Comment collection cache lookups by result",
}, []string{"result"})

// item - коллекция поста и время, до которого она считается свежей
type item struct {
	records   []*model.Comment
	expiresAt time.Time
}

// CommentCache реализует comment.CommentStorage и discussion.Invalidator.
// Одновременные промахи по одному посту сводятся к одному запросу в хранилище.
type CommentCache struct {
	inner comment.CommentStorage
	ttl   time.Duration
	now   func() time.Time

	entries *lru.Cache[string, item]
	group   singleflight.Group

	mu  sync.Mutex
	gen map[string]uint64 // postID -> номер инвалидации
}

var _ comment.CommentStorage = (*CommentCache)(nil)

func NewCommentCache(inner comment.CommentStorage, size int, ttl time.Duration) (*CommentCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	entries, err := lru.New[string, item](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &CommentCache{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: entries,
		gen:     make(map[string]uint64),
	}, nil
}

func (c *CommentCache) generation(postID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[postID]
}

// Invalidate выбрасывает коллекцию поста. Загрузка, начатая до вызова, в кеш уже не попадёт.
func (c *CommentCache) Invalidate(postID string) {
	c.mu.Lock()
	c.gen[postID]++
	c.mu.Unlock()
	c.entries.Remove(postID)
}

func (c *CommentCache) lookup(postID string) ([]*model.Comment, bool) {
	val, ok := c.entries.Get(postID)
	if !ok {
		return nil, false
	}
	if c.now().After(val.expiresAt) {
		c.entries.Remove(postID)
		return nil, false
	}
	return val.records, true
}

func (c *CommentCache) FetchComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	if records, ok := c.lookup(postID); ok {
		requestsTotal.WithLabelValues("hit").Inc()
		return clone(records), nil
	}
	requestsTotal.WithLabelValues("miss").Inc()

	// общая загрузка не зависит от отмены контекста того, кто её начал
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(postID, func() (any, error) {
		if records, ok := c.lookup(postID); ok {
			return records, nil
		}
		gen := c.generation(postID)
		records, err := c.inner.FetchComments(shared, postID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen[postID] == gen {
			c.entries.Add(postID, item{records: records, expiresAt: c.now().Add(c.ttl)})
		}
		c.mu.Unlock()
		return records, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	records, ok := res.Val.([]*model.Comment)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight: got %T", res.Val)
	}
	return clone(records), nil
}

func (c *CommentCache) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	return c.inner.GetComment(ctx, id)
}

func (c *CommentCache) CreateComment(ctx context.Context, in model.CreateCommentInput) (*model.Comment, error) {
	created, err := c.inner.CreateComment(ctx, in)
	if err != nil {
		return nil, err
	}
	c.Invalidate(in.PostID)
	return created, nil
}

func (c *CommentCache) UpdateComment(ctx context.Context, in model.UpdateCommentInput) (*model.Comment, error) {
	updated, err := c.inner.UpdateComment(ctx, in)
	if err != nil {
		return nil, err
	}
	c.Invalidate(updated.PostID)
	return updated, nil
}

func (c *CommentCache) DeleteComment(ctx context.Context, id string) error {
	err := c.inner.DeleteComment(ctx, id)
	// пост удалённого комментария ищем среди закешированных коллекций
	for _, postID := range c.entries.Keys() {
		val, ok := c.entries.Peek(postID)
		if !ok {
			continue
		}
		for _, rec := range val.records {
			if rec.ID == id {
				c.Invalidate(postID)
				break
			}
		}
	}
	return err
}

// clone - копия коллекции, чтобы вызывающий код не мог испортить кеш
func clone(records []*model.Comment) []*model.Comment {
	out := make([]*model.Comment, len(records))
	for i, rec := range records {
		cp := *rec
		cp.Reactions = append([]model.Reaction(nil), rec.Reactions...)
		cp.Replies = nil
		out[i] = &cp
	}
	return out
}
