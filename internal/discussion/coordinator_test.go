package discussion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/discuss/internal/mocks"
	"github.com/VitaminP8/discuss/internal/model"
)

type fixture struct {
	comments  *mocks.MockCommentStorage
	reactions *mocks.MockReactionStorage
	posts     *mocks.MockPostStorage
	roles     *mocks.MockRoleStorage
	identity  *mocks.MockIdentity
	inv       *mocks.MockInvalidator
}

func newFixture(records ...*model.Comment) *fixture {
	return &fixture{
		comments:  mocks.NewMockCommentStorage(records...),
		reactions: mocks.NewMockReactionStorage(),
		posts:     mocks.NewMockPostStorage(&model.Post{ID: "p1", Title: "Post", Content: "Body", AuthorID: "u1"}),
		roles:     mocks.NewMockRoleStorage(),
		identity:  mocks.NewMockIdentity("u1", "Alice"),
		inv:       mocks.NewMockInvalidator(),
	}
}

func (f *fixture) deps() Deps {
	return Deps{
		Comments:  f.comments,
		Reactions: f.reactions,
		Posts:     f.posts,
		Roles:     f.roles,
		Identity:  f.identity,
	}
}

func (f *fixture) coordinator(opts ...Option) *Coordinator {
	return NewCoordinator(f.deps(), append([]Option{WithInvalidator(f.inv)}, opts...)...)
}

func authored(id, authorID string) *model.Comment {
	return &model.Comment{ID: id, PostID: "p1", Content: "text " + id, AuthorID: authorID}
}

func TestCoordinator_SubmitComment(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty content never reaches storage", func(t *testing.T) {
		f := newFixture()
		c := f.coordinator()

		for _, content := range []string{"", "   ", "\n\t"} {
			_, err := c.SubmitComment(ctx, "p1", content, nil)
			require.Error(t, err)
			assert.Equal(t, model.KindValidation, model.KindOf(err))
		}
		assert.Equal(t, 0, f.comments.CallCount("CreateComment"))
		assert.Empty(t, f.inv.GetInvalidations())
	})

	t.Run("Content is trimmed and collection invalidated", func(t *testing.T) {
		f := newFixture()
		c := f.coordinator()

		created, err := c.SubmitComment(ctx, "p1", "  hello  ", nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", created.Content)
		assert.Equal(t, "u1", created.AuthorID)
		assert.Nil(t, created.ParentID)
		assert.Equal(t, []string{"p1"}, f.inv.GetInvalidations())
	})

	t.Run("Reply keeps its parent", func(t *testing.T) {
		f := newFixture(authored("1", "u2"))
		c := f.coordinator()

		created, err := c.SubmitComment(ctx, "p1", "reply", ptr("1"))
		require.NoError(t, err)
		require.NotNil(t, created.ParentID)
		assert.Equal(t, "1", *created.ParentID)
	})

	t.Run("Empty parent ID means top level", func(t *testing.T) {
		f := newFixture()
		c := f.coordinator()

		created, err := c.SubmitComment(ctx, "p1", "top", ptr(""))
		require.NoError(t, err)
		assert.Nil(t, created.ParentID)
	})

	t.Run("Missing parent is a validation error", func(t *testing.T) {
		f := newFixture()
		c := f.coordinator()

		_, err := c.SubmitComment(ctx, "p1", "reply", ptr("404"))
		require.Error(t, err)
		assert.Equal(t, model.KindValidation, model.KindOf(err))
		assert.Empty(t, f.inv.GetInvalidations())
	})

	t.Run("Content over the limit is rejected", func(t *testing.T) {
		f := newFixture()
		c := f.coordinator(WithMaxContentLength(5))

		_, err := c.SubmitComment(ctx, "p1", "привет!", nil)
		require.Error(t, err)
		assert.Equal(t, model.KindValidation, model.KindOf(err))

		_, err = c.SubmitComment(ctx, "p1", "привет", nil)
		require.Error(t, err)

		_, err = c.SubmitComment(ctx, "p1", "hello", nil)
		require.NoError(t, err)
	})

	t.Run("Anonymous user is not authorized", func(t *testing.T) {
		f := newFixture()
		f.identity.Set(model.Anonymous)
		c := f.coordinator()

		_, err := c.SubmitComment(ctx, "p1", "hello", nil)
		require.Error(t, err)
		assert.Equal(t, model.KindAuthorization, model.KindOf(err))
		assert.Equal(t, 0, f.comments.CallCount("CreateComment"))
	})

	t.Run("Undetermined role is transient, not a denial", func(t *testing.T) {
		f := newFixture()
		f.roles.Err = errors.New("connection refused")
		c := f.coordinator()

		_, err := c.SubmitComment(ctx, "p1", "hello", nil)
		require.Error(t, err)
		assert.Equal(t, model.KindTransient, model.KindOf(err))
		assert.NotErrorIs(t, err, model.ErrUnauthorized)
		assert.Equal(t, 0, f.comments.CallCount("CreateComment"))
	})

	t.Run("Storage failure keeps the message", func(t *testing.T) {
		f := newFixture()
		f.comments.SetError("CreateComment", errors.New("pq: connection reset"))
		c := f.coordinator()

		_, err := c.SubmitComment(ctx, "p1", "hello", nil)
		require.Error(t, err)
		assert.Equal(t, model.KindTransient, model.KindOf(err))
		assert.Contains(t, err.Error(), "pq: connection reset")

		var classified *model.Error
		require.True(t, errors.As(err, &classified))
		assert.Equal(t, "submit", classified.Op)
	})
}

func TestCoordinator_EditComment(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty content never reaches storage", func(t *testing.T) {
		f := newFixture(authored("1", "u1"))
		c := f.coordinator()

		_, err := c.EditComment(ctx, "1", "")
		require.Error(t, err)
		assert.Equal(t, model.KindValidation, model.KindOf(err))
		assert.Equal(t, 0, f.comments.CallCount("GetComment"))
		assert.Equal(t, 0, f.comments.CallCount("UpdateComment"))
	})

	t.Run("Author edits own comment", func(t *testing.T) {
		f := newFixture(authored("1", "u1"))
		c := f.coordinator()

		updated, err := c.EditComment(ctx, "1", "  new text ")
		require.NoError(t, err)
		assert.Equal(t, "new text", updated.Content)
		assert.Equal(t, []string{"p1"}, f.inv.GetInvalidations())
		assert.False(t, c.Pending("1"))
	})

	t.Run("Admin cannot edit foreign comment", func(t *testing.T) {
		f := newFixture(authored("1", "u2"))
		f.roles.SetRole("u1", model.RoleAdmin)
		c := f.coordinator()

		_, err := c.EditComment(ctx, "1", "new")
		require.Error(t, err)
		assert.Equal(t, model.KindAuthorization, model.KindOf(err))
		assert.Equal(t, 0, f.comments.CallCount("UpdateComment"))
	})

	t.Run("Missing comment is not found", func(t *testing.T) {
		f := newFixture()
		c := f.coordinator()

		_, err := c.EditComment(ctx, "404", "new")
		require.Error(t, err)
		assert.Equal(t, model.KindNotFound, model.KindOf(err))
	})

	t.Run("Concurrent edit of the same comment is rejected", func(t *testing.T) {
		f := newFixture(authored("1", "u1"))
		release := make(chan struct{})
		f.comments.SetBlock("UpdateComment", release)
		f.comments.Entered = make(chan string, 10)
		c := f.coordinator()

		done := make(chan error, 1)
		go func() {
			_, err := c.EditComment(ctx, "1", "first")
			done <- err
		}()
		waitFor(t, f.comments.Entered, "UpdateComment")
		assert.True(t, c.Pending("1"))

		_, err := c.EditComment(ctx, "1", "second")
		require.Error(t, err)
		assert.Equal(t, model.KindInFlight, model.KindOf(err))

		err = c.DeleteComment(ctx, "1")
		require.Error(t, err)
		assert.Equal(t, model.KindInFlight, model.KindOf(err))

		close(release)
		require.NoError(t, <-done)
		assert.False(t, c.Pending("1"))
		assert.Equal(t, 1, f.comments.CallCount("UpdateComment"))
	})

	t.Run("Edit after delete is not found", func(t *testing.T) {
		f := newFixture(authored("1", "u1"))
		c := f.coordinator()

		require.NoError(t, c.DeleteComment(ctx, "1"))
		_, err := c.EditComment(ctx, "1", "new")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrAlreadyDeleted)
		assert.Equal(t, model.KindNotFound, model.KindOf(err))
	})
}

func TestCoordinator_DeleteComment(t *testing.T) {
	ctx := context.Background()

	t.Run("Author deletes own comment", func(t *testing.T) {
		f := newFixture(authored("1", "u1"))
		c := f.coordinator()

		require.NoError(t, c.DeleteComment(ctx, "1"))
		assert.Equal(t, []string{"p1"}, f.inv.GetInvalidations())
	})

	t.Run("Second delete is not found, not success", func(t *testing.T) {
		f := newFixture(authored("1", "u1"))
		c := f.coordinator()

		require.NoError(t, c.DeleteComment(ctx, "1"))
		err := c.DeleteComment(ctx, "1")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.ErrorIs(t, err, model.ErrAlreadyDeleted)
		assert.Equal(t, 1, f.comments.CallCount("DeleteComment"))
	})

	t.Run("Comment deleted elsewhere is not found", func(t *testing.T) {
		f := newFixture()
		c := f.coordinator()

		err := c.DeleteComment(ctx, "1")
		require.Error(t, err)
		assert.Equal(t, model.KindNotFound, model.KindOf(err))
	})

	t.Run("Admin and moderator delete foreign comments", func(t *testing.T) {
		for _, role := range []model.Role{model.RoleAdmin, model.RoleModerator} {
			f := newFixture(authored("1", "u2"))
			f.roles.SetRole("u1", role)
			c := f.coordinator()
			assert.NoError(t, c.DeleteComment(ctx, "1"), role.String())
		}
	})

	t.Run("Member cannot delete foreign comment", func(t *testing.T) {
		f := newFixture(authored("1", "u2"))
		c := f.coordinator()

		err := c.DeleteComment(ctx, "1")
		require.Error(t, err)
		assert.Equal(t, model.KindAuthorization, model.KindOf(err))
		assert.Equal(t, 0, f.comments.CallCount("DeleteComment"))
	})

	t.Run("Failed delete can be retried", func(t *testing.T) {
		f := newFixture(authored("1", "u1"))
		f.comments.SetError("DeleteComment", errors.New("timeout"))
		c := f.coordinator()

		err := c.DeleteComment(ctx, "1")
		require.Error(t, err)
		assert.Equal(t, model.KindTransient, model.KindOf(err))
		assert.Empty(t, f.inv.GetInvalidations())

		require.NoError(t, c.DeleteComment(ctx, "1"))
	})

	t.Run("Delete does not cascade to replies", func(t *testing.T) {
		child := authored("2", "u2")
		child.ParentID = ptr("1")
		f := newFixture(authored("1", "u1"), child)
		c := f.coordinator()

		require.NoError(t, c.DeleteComment(ctx, "1"))
		rest, err := f.comments.FetchComments(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, rest, 1)

		roots := BuildTree(rest)
		assert.Equal(t, []string{"2"}, ids(roots))
	})
}

func waitFor(t *testing.T, ch <-chan string, method string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == method {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", method)
		}
	}
}

func TestNormalizeContent(t *testing.T) {
	c := NewCoordinator(Deps{})

	got, err := c.normalizeContent("\t ok \n")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	_, err = c.normalizeContent(strings.Repeat("я", DefaultMaxContentLength+1))
	assert.Error(t, err)

	got, err = c.normalizeContent(strings.Repeat("я", DefaultMaxContentLength))
	require.NoError(t, err)
	assert.Len(t, []rune(got), DefaultMaxContentLength)
}
