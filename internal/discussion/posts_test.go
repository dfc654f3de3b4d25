package discussion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/discuss/internal/mocks"
	"github.com/VitaminP8/discuss/internal/model"
)

func TestSortFeed(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := []*model.Post{
		{ID: "old", CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "pinned-old", CreatedAt: now.Add(-72 * time.Hour), Pinned: true},
		{ID: "new", CreatedAt: now},
		{ID: "pinned-new", CreatedAt: now.Add(-time.Hour), Pinned: true},
		{ID: "same-a", CreatedAt: now.Add(-24 * time.Hour)},
		{ID: "same-b", CreatedAt: now.Add(-24 * time.Hour)},
	}

	sorted := SortFeed(posts)

	var got []string
	for _, p := range sorted {
		got = append(got, p.ID)
	}
	assert.Equal(t, []string{"pinned-new", "pinned-old", "new", "same-b", "same-a", "old"}, got)
	assert.Equal(t, "old", posts[0].ID, "input must not be reordered")
}

func TestPostActions(t *testing.T) {
	ctx := context.Background()

	newActions := func(f *fixture) *PostActions {
		return NewPostActions(f.deps(), WithInvalidator(f.inv))
	}

	t.Run("Create requires title and content", func(t *testing.T) {
		f := newFixture()
		a := newActions(f)

		_, err := a.CreatePost(ctx, "  ", "body")
		require.Error(t, err)
		assert.Equal(t, model.KindValidation, model.KindOf(err))

		p, err := a.CreatePost(ctx, " Title ", " Body ")
		require.NoError(t, err)
		assert.Equal(t, "Title", p.Title)
		assert.Equal(t, "Body", p.Content)
		assert.Equal(t, "u1", p.AuthorID)
	})

	t.Run("CanCreate reports unknown role", func(t *testing.T) {
		f := newFixture()
		a := newActions(f)

		allowed, known := a.CanCreate(ctx)
		assert.True(t, allowed)
		assert.True(t, known)

		f.roles.Err = errors.New("down")
		allowed, known = a.CanCreate(ctx)
		assert.False(t, allowed)
		assert.False(t, known)
	})

	t.Run("Only admin pins", func(t *testing.T) {
		f := newFixture()
		a := newActions(f)

		err := a.SetPinned(ctx, "p1", true)
		require.Error(t, err)
		assert.Equal(t, model.KindAuthorization, model.KindOf(err))

		f.roles.SetRole("u1", model.RoleAdmin)
		require.NoError(t, a.SetPinned(ctx, "p1", true))

		feed, err := a.Feed(ctx)
		require.NoError(t, err)
		require.Len(t, feed, 1)
		assert.True(t, feed[0].Pinned)
	})

	t.Run("Moderator deletes foreign post", func(t *testing.T) {
		f := newFixture()
		f.identity.Set(model.Actor{ID: "mod", Name: "Mod", Authenticated: true})
		f.roles.SetRole("mod", model.RoleModerator)
		a := newActions(f)

		require.NoError(t, a.DeletePost(ctx, "p1"))
		assert.Equal(t, []string{"p1"}, f.inv.GetInvalidations())

		err := a.DeletePost(ctx, "p1")
		assert.Equal(t, model.KindNotFound, model.KindOf(err))
	})

	t.Run("Feed reaction toggle round trip", func(t *testing.T) {
		f := newFixture()
		a := newActions(f)

		s, err := a.ToggleReaction(ctx, "p1", model.ReactionLike)
		require.NoError(t, err)
		assert.Equal(t, model.ReactionLike, s.Mine)
		assert.Equal(t, 1, s.Counts[model.ReactionLike])

		s, err = a.ToggleReaction(ctx, "p1", model.ReactionLike)
		require.NoError(t, err)
		assert.Empty(t, s.Mine)
		assert.Equal(t, 0, s.Counts[model.ReactionLike])
	})

	t.Run("Reaction on missing post is not stored", func(t *testing.T) {
		f := newFixture()
		a := newActions(f)

		_, err := a.ToggleReaction(ctx, "missing", model.ReactionLike)
		require.Error(t, err)
		assert.Equal(t, model.KindNotFound, model.KindOf(err))
		assert.Equal(t, 0, f.reactions.CallCount("ListReactions"))
		assert.Equal(t, 0, f.reactions.CallCount("SetReaction"))
	})

	t.Run("Feed failure is classified", func(t *testing.T) {
		f := newFixture()
		f.posts = mocks.NewMockPostStorage()
		f.posts.Err["ListPosts"] = errors.New("db down")
		a := newActions(f)

		_, err := a.Feed(ctx)
		require.Error(t, err)
		assert.Equal(t, model.KindTransient, model.KindOf(err))
	})
}
