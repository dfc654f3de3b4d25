package postgres

import (
	"fmt"
	"testing"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite" // Импортируем драйвер SQLite
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/discuss/models"
)

// setupTestDB создает тестовую БД в памяти и выполняет миграции
func setupTestDB(t *testing.T) *gorm.DB {
	// Сохраняем оригинальное соединение (если оно есть)
	oldDB := GetDB()

	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err, "Failed to connect to in-memory SQLite")

	db.LogMode(false)
	// у каждого соединения с :memory: своя база
	db.DB().SetMaxOpenConns(1)
	InitDBWithConnection(db)
	require.NoError(t, Migrate(), "Failed to migrate database schema")

	return oldDB
}

// teardownTestDB закрывает тестовую БД и восстанавливает оригинальную
func teardownTestDB(db *gorm.DB) {
	if DB != nil {
		DB.Close()
	}
	InitDBWithConnection(db)
}

// createTestUser создает тестового пользователя и возвращает его ID
func createTestUser(t *testing.T, username, role string) string {
	user := &models.User{
		Username: username,
		Name:     "Name of " + username,
		Role:     role,
	}
	require.NoError(t, DB.Create(user).Error, "Failed to create test user")
	return fmt.Sprint(user.ID)
}

// createTestPost создает тестовый пост и возвращает его ID
func createTestPost(t *testing.T, userID, title string) string {
	var uid uint
	_, err := fmt.Sscan(userID, &uid)
	require.NoError(t, err)

	post := &models.Post{Title: title, Content: "Content of " + title, UserID: uid}
	require.NoError(t, DB.Create(post).Error, "Failed to create test post")
	return fmt.Sprint(post.ID)
}
