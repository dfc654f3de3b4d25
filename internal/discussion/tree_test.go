package discussion

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/discuss/internal/model"
)

func ptr(s string) *string { return &s }

func rec(id string, parent *string) *model.Comment {
	return &model.Comment{ID: id, PostID: "p1", ParentID: parent, Content: "c" + id}
}

func ids(cs []*model.Comment) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

// collect - все ID леса в порядке обхода
func collect(roots []*model.Comment) []string {
	var out []string
	Walk(roots, func(c *model.Comment, _ int) bool {
		out = append(out, c.ID)
		return true
	})
	return out
}

func TestBuildTree(t *testing.T) {
	t.Run("Empty input gives empty forest", func(t *testing.T) {
		roots := BuildTree(nil)
		require.NotNil(t, roots)
		assert.Empty(t, roots)
	})

	t.Run("Replies are attached to their parents in input order", func(t *testing.T) {
		roots := BuildTree([]*model.Comment{
			rec("1", nil),
			rec("2", ptr("1")),
			rec("3", nil),
			rec("4", ptr("1")),
			rec("5", ptr("2")),
		})

		require.Equal(t, []string{"1", "3"}, ids(roots))
		assert.Equal(t, []string{"2", "4"}, ids(roots[0].Replies))
		assert.Equal(t, []string{"5"}, ids(roots[0].Replies[0].Replies))
		assert.Empty(t, roots[1].Replies)
	})

	t.Run("Reply may come before its parent", func(t *testing.T) {
		roots := BuildTree([]*model.Comment{
			rec("2", ptr("1")),
			rec("1", nil),
		})
		require.Equal(t, []string{"1"}, ids(roots))
		assert.Equal(t, []string{"2"}, ids(roots[0].Replies))
	})

	t.Run("Orphan is promoted to root", func(t *testing.T) {
		roots, stats := buildTree([]*model.Comment{
			rec("1", nil),
			rec("2", ptr("1")),
			rec("3", ptr("99")),
		})

		assert.Equal(t, []string{"1", "3"}, ids(roots))
		assert.Equal(t, []string{"2"}, ids(roots[0].Replies))
		assert.Equal(t, 1, stats.Orphans)
		assert.Equal(t, 0, stats.Cycles)
	})

	t.Run("Cycle is broken and every record appears once", func(t *testing.T) {
		roots, stats := buildTree([]*model.Comment{
			rec("a", ptr("c")),
			rec("b", ptr("a")),
			rec("c", ptr("b")),
		})

		require.Len(t, roots, 1)
		assert.Equal(t, 1, stats.Cycles)
		assert.ElementsMatch(t, []string{"a", "b", "c"}, collect(roots))
	})

	t.Run("Self parent is promoted", func(t *testing.T) {
		roots, stats := buildTree([]*model.Comment{rec("x", ptr("x"))})
		assert.Equal(t, []string{"x"}, ids(roots))
		assert.Equal(t, 1, stats.Cycles)
	})

	t.Run("Tail hanging off a cycle stays attached", func(t *testing.T) {
		roots := BuildTree([]*model.Comment{
			rec("t", ptr("a")),
			rec("a", ptr("b")),
			rec("b", ptr("a")),
		})

		all := collect(roots)
		assert.Len(t, all, 3)
		assert.ElementsMatch(t, []string{"t", "a", "b"}, all)
	})

	t.Run("Every record appears exactly once", func(t *testing.T) {
		records := []*model.Comment{
			rec("1", nil),
			rec("2", ptr("1")),
			rec("3", ptr("2")),
			rec("4", ptr("missing")),
			rec("5", ptr("6")),
			rec("6", ptr("5")),
			rec("7", ptr("4")),
		}
		all := collect(BuildTree(records))
		assert.ElementsMatch(t, []string{"1", "2", "3", "4", "5", "6", "7"}, all)
	})

	t.Run("Input is not modified", func(t *testing.T) {
		parent := rec("1", nil)
		child := rec("2", ptr("1"))
		_ = BuildTree([]*model.Comment{parent, child})

		assert.Nil(t, parent.Replies)
		assert.Nil(t, child.Replies)
	})

	t.Run("Deep chain does not overflow", func(t *testing.T) {
		const n = 100000
		records := make([]*model.Comment, n)
		records[0] = rec("0", nil)
		for i := 1; i < n; i++ {
			records[i] = rec(strconv.Itoa(i), ptr(strconv.Itoa(i-1)))
		}

		roots := BuildTree(records)
		require.Len(t, roots, 1)
		maxDepth := 0
		Walk(roots, func(_ *model.Comment, depth int) bool {
			if depth > maxDepth {
				maxDepth = depth
			}
			return true
		})
		assert.Equal(t, n-1, maxDepth)
	})
}

func TestWalk(t *testing.T) {
	roots := BuildTree([]*model.Comment{
		rec("1", nil),
		rec("2", ptr("1")),
		rec("3", ptr("2")),
		rec("4", nil),
	})

	t.Run("Visits in display order with depth", func(t *testing.T) {
		var got []string
		var depths []int
		Walk(roots, func(c *model.Comment, depth int) bool {
			got = append(got, c.ID)
			depths = append(depths, depth)
			return true
		})
		assert.Equal(t, []string{"1", "2", "3", "4"}, got)
		assert.Equal(t, []int{0, 1, 2, 0}, depths)
	})

	t.Run("Returning false skips replies", func(t *testing.T) {
		var got []string
		Walk(roots, func(c *model.Comment, _ int) bool {
			got = append(got, c.ID)
			return c.ID != "1"
		})
		assert.Equal(t, []string{"1", "4"}, got)
	})
}

func TestCanReply(t *testing.T) {
	assert.True(t, CanReply(0, 10))
	assert.True(t, CanReply(9, 10))
	assert.False(t, CanReply(10, 10))
	assert.False(t, CanReply(11, 10))
	assert.True(t, CanReply(2, 3))
	assert.False(t, CanReply(3, 3))

	// некорректный предел заменяется значением по умолчанию
	assert.True(t, CanReply(DefaultMaxDepth-1, 0))
	assert.False(t, CanReply(DefaultMaxDepth, -1))
}
