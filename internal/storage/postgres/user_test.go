package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/discuss/internal/model"
	"github.com/VitaminP8/discuss/models"
)

func TestUserPostgresStorage_GetRole(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	ctx := context.Background()
	storage := NewUserPostgresStorage()
	admin := createTestUser(t, "admin", "admin")
	moderator := createTestUser(t, "mod", "moderator")
	student := createTestUser(t, "student", "student")

	tests := []struct {
		name   string
		userID string
		want   model.Role
	}{
		{"Admin", admin, model.RoleAdmin},
		{"Moderator", moderator, model.RoleModerator},
		{"Student is a plain member", student, model.RoleNotAdmin},
		{"Missing user is a plain member", "999", model.RoleNotAdmin},
		{"Malformed ID is a plain member", "abc", model.RoleNotAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := storage.GetRole(ctx, tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}

	t.Run("Database failure gives unknown role", func(t *testing.T) {
		require.NoError(t, DB.Close())
		role, err := storage.GetRole(ctx, admin)
		assert.Error(t, err)
		assert.Equal(t, model.RoleUnknown, role)
	})
}

func TestUserPostgresStorage_CreateUser(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	ctx := context.Background()
	storage := NewUserPostgresStorage()

	id, err := storage.CreateUser(ctx, "alice", "Alice", "moderator")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	role, err := storage.GetRole(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, role)

	_, err = storage.CreateUser(ctx, "alice", "Alice again", "")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestReactionPostgresStorage(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	ctx := context.Background()
	storage := NewReactionPostgresStorage()
	userID := createTestUser(t, "alice", "")
	postID := createTestPost(t, userID, "Post")
	target := model.TargetRef{Kind: model.TargetPost, ID: postID}

	t.Run("Set twice keeps one record", func(t *testing.T) {
		_, err := storage.SetReaction(ctx, target, userID, "Alice", model.ReactionLike)
		require.NoError(t, err)
		_, err = storage.SetReaction(ctx, target, userID, "Alice", model.ReactionLaugh)
		require.NoError(t, err)

		items, err := storage.ListReactions(ctx, target)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, model.ReactionLaugh, items[0].Type)
		assert.Equal(t, "Name of alice", items[0].UserName)
	})

	t.Run("Remove, remove again and set again", func(t *testing.T) {
		require.NoError(t, storage.RemoveReaction(ctx, target, userID))
		assert.ErrorIs(t, storage.RemoveReaction(ctx, target, userID), model.ErrNotFound)

		items, err := storage.ListReactions(ctx, target)
		require.NoError(t, err)
		assert.Empty(t, items)

		// физическое удаление не мешает уникальному индексу
		_, err = storage.SetReaction(ctx, target, userID, "Alice", model.ReactionLove)
		require.NoError(t, err)
	})

	t.Run("Missing target is not found", func(t *testing.T) {
		_, err := storage.SetReaction(ctx, model.TargetRef{Kind: model.TargetPost, ID: "999"}, userID, "Alice", model.ReactionLike)
		assert.ErrorIs(t, err, model.ErrNotFound)

		_, err = storage.SetReaction(ctx, model.TargetRef{Kind: model.TargetComment, ID: "999"}, userID, "Alice", model.ReactionLike)
		assert.ErrorIs(t, err, model.ErrNotFound)

		require.NoError(t, DB.Where("id = ?", postID).Delete(&models.Post{}).Error)
		_, err = storage.SetReaction(ctx, target, userID, "Alice", model.ReactionLike)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("Invalid type", func(t *testing.T) {
		_, err := storage.SetReaction(ctx, target, userID, "Alice", "angry")
		assert.ErrorIs(t, err, model.ErrValidation)
	})
}
