package discussion

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/VitaminP8/discuss/internal/model"
)

// ReactionSummary - то, что нужно для отрисовки кнопок реакций
type ReactionSummary struct {
	Counts map[model.ReactionType]int `json:"counts"`
	// Mine - реакция текущего пользователя, "" если её нет
	Mine model.ReactionType `json:"mine,omitempty"`
}

// ToggleResult описывает переход реакции пользователя. "" - реакции нет.
type ToggleResult struct {
	Before model.ReactionType
	After  model.ReactionType
}

// ReactionSet - список реакций одного объекта глазами одного пользователя.
// Для пользователя в списке хранится не более одной записи.
type ReactionSet struct {
	userID   string
	userName string
	items    []model.Reaction
	onChange func([]model.Reaction)
}

func NewReactionSet(items []model.Reaction, userID, userName string) *ReactionSet {
	return &ReactionSet{
		userID:   userID,
		userName: userName,
		items:    append([]model.Reaction(nil), items...),
	}
}

// OnChange регистрирует обработчик, который вызывается только когда
// мультимножество пар (userId, type) действительно изменилось.
func (s *ReactionSet) OnChange(fn func([]model.Reaction)) {
	s.onChange = fn
}

func (s *ReactionSet) Items() []model.Reaction {
	return append([]model.Reaction(nil), s.items...)
}

func (s *ReactionSet) Counts() map[model.ReactionType]int {
	counts := make(map[model.ReactionType]int, len(model.ReactionTypes))
	for _, t := range model.ReactionTypes {
		counts[t] = 0
	}
	for _, r := range s.items {
		counts[r.Type]++
	}
	return counts
}

func (s *ReactionSet) Current() (model.ReactionType, bool) {
	if s.userID == "" {
		return "", false
	}
	for _, r := range s.items {
		if r.UserID == s.userID {
			return r.Type, true
		}
	}
	return "", false
}

func (s *ReactionSet) Summary() ReactionSummary {
	mine, _ := s.Current()
	return ReactionSummary{Counts: s.Counts(), Mine: mine}
}

// Toggle: тот же тип - снять реакцию, другой тип - заменить на месте, реакции нет - добавить.
func (s *ReactionSet) Toggle(t model.ReactionType) (ToggleResult, error) {
	if !t.Valid() {
		return ToggleResult{}, model.Validationf("unknown reaction type %q", t)
	}
	if s.userID == "" {
		return ToggleResult{}, fmt.Errorf("reaction requires an authenticated user: %w", model.ErrUnauthorized)
	}

	before := s.items
	next := make([]model.Reaction, 0, len(s.items)+1)
	res := ToggleResult{}
	found := false
	for _, r := range s.items {
		if r.UserID != s.userID {
			next = append(next, r)
			continue
		}
		if found {
			// лишняя запись того же пользователя - выбрасываем
			continue
		}
		found = true
		res.Before = r.Type
		if r.Type == t {
			continue
		}
		r.Type = t
		res.After = t
		next = append(next, r)
	}
	if !found {
		res.After = t
		next = append(next, model.Reaction{
			ID:       uuid.NewString(),
			Type:     t,
			UserID:   s.userID,
			UserName: s.userName,
		})
	}

	s.items = next
	s.notify(before)
	return res, nil
}

// Replace подменяет список (например, после повторной загрузки с сервера)
func (s *ReactionSet) Replace(items []model.Reaction) {
	before := s.items
	s.items = append([]model.Reaction(nil), items...)
	s.notify(before)
}

func (s *ReactionSet) notify(before []model.Reaction) {
	if s.onChange == nil || SameReactions(before, s.items) {
		return
	}
	s.onChange(s.Items())
}

type reactionKey struct {
	userID string
	t      model.ReactionType
}

// SameReactions сравнивает списки как мультимножества пар (userId, type), порядок не важен.
func SameReactions(a, b []model.Reaction) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[reactionKey]int, len(a))
	for _, r := range a {
		seen[reactionKey{r.UserID, r.Type}]++
	}
	for _, r := range b {
		k := reactionKey{r.UserID, r.Type}
		if seen[k] == 0 {
			return false
		}
		seen[k]--
	}
	return true
}

// applyOverlay возвращает серверный список с желаемой реакцией пользователя вместо фактической
func applyOverlay(server []model.Reaction, userID, userName string, want model.ReactionType) []model.Reaction {
	out := make([]model.Reaction, 0, len(server)+1)
	placed := false
	for _, r := range server {
		if r.UserID != userID {
			out = append(out, r)
			continue
		}
		if placed || want == "" {
			continue
		}
		r.Type = want
		out = append(out, r)
		placed = true
	}
	if !placed && want != "" {
		out = append(out, model.Reaction{ID: uuid.NewString(), Type: want, UserID: userID, UserName: userName})
	}
	return out
}

func reactionOf(items []model.Reaction, userID string) model.ReactionType {
	for _, r := range items {
		if r.UserID == userID {
			return r.Type
		}
	}
	return ""
}
