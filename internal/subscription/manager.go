package subscription

import (
	"sync"

	"github.com/VitaminP8/discuss/internal/model"
)

// SubscriptionManager рассылает сигналы "коллекция поста устарела".
// Подписчик сам решает, когда перечитать данные: сигнал ничего не доставляет, кроме факта изменения.
type SubscriptionManager struct {
	mu   sync.Mutex
	subs map[string][]chan model.Invalidation // postID -> список каналов подписчиков
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		subs: make(map[string][]chan model.Invalidation),
	}
}

func (m *SubscriptionManager) Subscribe(postID string) (<-chan model.Invalidation, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan model.Invalidation, 1) // одного непрочитанного сигнала достаточно

	m.subs[postID] = append(m.subs[postID], ch)

	// функция для отписки
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			subscribers := m.subs[postID]
			for i, sub := range subscribers {
				if sub == ch {
					m.subs[postID] = append(subscribers[:i], subscribers[i+1:]...)
					close(ch)
					break
				}
			}
			if len(m.subs[postID]) == 0 {
				delete(m.subs, postID)
			}
		})
	}

	return ch, cancel
}

// Publish не блокируется: если у подписчика уже лежит непрочитанный сигнал, новый с ним сливается
func (m *SubscriptionManager) Publish(postID string, ev model.Invalidation) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs[postID] {
		select {
		case sub <- ev:
		default:
		}
	}
}

// Invalidate - реализация discussion.Invalidator
func (m *SubscriptionManager) Invalidate(postID string) {
	m.Publish(postID, model.Invalidation{PostID: postID})
}

// Subscribers - количество подписчиков поста
func (m *SubscriptionManager) Subscribers(postID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[postID])
}
