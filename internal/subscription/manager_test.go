package subscription

import (
	"sync"
	"testing"
	"time"

	"github.com/VitaminP8/discuss/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionManager_Subscribe(t *testing.T) {
	t.Run("Should create a subscription channel", func(t *testing.T) {
		manager := NewSubscriptionManager()
		postID := "123"

		ch, cancel := manager.Subscribe(postID)
		assert.NotNil(t, ch)
		assert.NotNil(t, cancel)
		assert.Equal(t, 1, manager.Subscribers(postID))

		cancel()

		manager.mu.Lock()
		_, exists := manager.subs[postID]
		manager.mu.Unlock()
		assert.False(t, exists, "Empty post entry should be removed")
	})

	t.Run("Multiple subscriptions to the same post", func(t *testing.T) {
		manager := NewSubscriptionManager()
		postID := "123"

		_, cancel1 := manager.Subscribe(postID)
		_, cancel2 := manager.Subscribe(postID)
		_, cancel3 := manager.Subscribe(postID)
		assert.Equal(t, 3, manager.Subscribers(postID))

		// Отменяем вторую подписку
		cancel2()
		assert.Equal(t, 2, manager.Subscribers(postID))

		cancel1()
		cancel3()
		assert.Equal(t, 0, manager.Subscribers(postID))
	})

	t.Run("Cancel is idempotent", func(t *testing.T) {
		manager := NewSubscriptionManager()

		_, cancel := manager.Subscribe("post1")
		assert.NotPanics(t, func() {
			cancel()
			cancel()
		})
	})
}

func TestSubscriptionManager_Publish(t *testing.T) {
	t.Run("Should send invalidation to subscribers", func(t *testing.T) {
		manager := NewSubscriptionManager()
		postID := "123"

		ch, cancel := manager.Subscribe(postID)
		defer cancel()

		manager.Invalidate(postID)

		select {
		case ev := <-ch:
			assert.Equal(t, model.Invalidation{PostID: postID}, ev)
		case <-time.After(time.Second):
			t.Fatal("Timed out waiting for invalidation")
		}
	})

	t.Run("Should only send to subscribers of the specific post", func(t *testing.T) {
		manager := NewSubscriptionManager()

		ch1, cancel1 := manager.Subscribe("post1")
		ch2, cancel2 := manager.Subscribe("post2")
		defer cancel1()
		defer cancel2()

		manager.Invalidate("post1")

		select {
		case ev := <-ch1:
			assert.Equal(t, "post1", ev.PostID)
		case <-time.After(time.Second):
			t.Fatal("Subscriber of post1 timed out")
		}

		select {
		case <-ch2:
			t.Fatal("Subscriber of post2 should not receive the invalidation")
		default:
		}
	})

	t.Run("Publish does not block on a slow subscriber", func(t *testing.T) {
		manager := NewSubscriptionManager()

		ch, cancel := manager.Subscribe("post1")
		defer cancel()

		done := make(chan struct{})
		go func() {
			for i := 0; i < 10; i++ {
				manager.Invalidate("post1")
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Publish blocked")
		}

		// сигналы слились в один
		<-ch
		select {
		case <-ch:
			t.Fatal("Expected coalesced signal")
		default:
		}
	})

	t.Run("Publishing to a post with no subscribers should not panic", func(t *testing.T) {
		manager := NewSubscriptionManager()
		assert.NotPanics(t, func() {
			manager.Invalidate("post1")
		})
	})
}

func TestSubscriptionManager_Concurrent(t *testing.T) {
	t.Run("Concurrent subscribes and unsubscribes", func(t *testing.T) {
		manager := NewSubscriptionManager()
		postID := "123"

		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ch, cancel := manager.Subscribe(postID)
				manager.Invalidate(postID)
				cancel()

				// после отмены канал закрыт; возможный непрочитанный сигнал вычитываем
				for range ch {
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 0, manager.Subscribers(postID))
	})
}
