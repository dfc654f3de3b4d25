package discussion

import (
	"github.com/VitaminP8/discuss/internal/model"
)

// DefaultMaxDepth - глубина, начиная с которой форма ответа не показывается
const DefaultMaxDepth = 10

// CanReply - ответ разрешён при depth < maxDepth. Это ограничение интерфейса,
// более глубокие комментарии в данных допустимы.
func CanReply(depth, maxDepth int) bool {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return depth < maxDepth
}

// TreeStats - сколько записей было поднято в корень и почему
type TreeStats struct {
	Orphans int // parentID указывает на отсутствующий комментарий
	Cycles  int // цепочка родителей замыкается
}

const (
	unvisited = iota
	onPath
	resolved
)

// BuildTree собирает лес ответов из плоского списка комментариев одного поста.
// Порядок входа сохраняется внутри каждой группы соседей. Вход не изменяется:
// в результате лежат копии записей с заполненным Replies.
func BuildTree(records []*model.Comment) []*model.Comment {
	roots, _ := buildTree(records)
	return roots
}

func buildTree(records []*model.Comment) ([]*model.Comment, TreeStats) {
	var stats TreeStats
	if len(records) == 0 {
		return []*model.Comment{}, stats
	}

	nodes := make([]*model.Comment, 0, len(records))
	byID := make(map[string]*model.Comment, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		n := *rec
		n.Replies = nil
		nodes = append(nodes, &n)
		// при повторяющихся ID родителем считается первая запись
		if _, exists := byID[n.ID]; !exists {
			byID[n.ID] = &n
		}
	}

	promoted := make(map[*model.Comment]bool)
	parentOf := func(n *model.Comment) *model.Comment {
		if n.ParentID == nil || promoted[n] {
			return nil
		}
		return byID[*n.ParentID]
	}

	// Проход по цепочкам родителей с множеством посещённых узлов вместо рекурсии.
	// Узел, на котором цепочка замкнулась, становится корнем.
	state := make(map[*model.Comment]int, len(nodes))
	for _, start := range nodes {
		if state[start] == resolved {
			continue
		}
		var path []*model.Comment
		for cur := start; cur != nil; {
			if state[cur] == resolved {
				break
			}
			if state[cur] == onPath {
				promoted[cur] = true
				stats.Cycles++
				break
			}
			state[cur] = onPath
			path = append(path, cur)
			cur = parentOf(cur)
		}
		for _, n := range path {
			state[n] = resolved
		}
	}

	roots := make([]*model.Comment, 0)
	for _, n := range nodes {
		parent := parentOf(n)
		if parent == nil {
			if n.ParentID != nil && !promoted[n] {
				stats.Orphans++
			}
			roots = append(roots, n)
			continue
		}
		parent.Replies = append(parent.Replies, n)
	}

	return roots, stats
}

// Walk обходит лес в глубину (в порядке отображения) без рекурсии.
// Если fn возвращает false, ответы узла не посещаются.
func Walk(roots []*model.Comment, fn func(c *model.Comment, depth int) bool) {
	type frame struct {
		c     *model.Comment
		depth int
	}
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.c, f.depth) {
			continue
		}
		for i := len(f.c.Replies) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.c.Replies[i], f.depth + 1})
		}
	}
}
