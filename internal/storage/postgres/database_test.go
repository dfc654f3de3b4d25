package postgres

import (
	"testing"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDB(t *testing.T) {
	// Сохраняем текущее значение DB
	originalDB := DB

	testDB, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer testDB.Close()

	DB = testDB
	assert.Equal(t, DB, GetDB())

	// Восстанавливаем исходное значение
	DB = originalDB
}

func TestInitDBWithConnection(t *testing.T) {
	originalDB := DB

	testDB, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer testDB.Close()

	InitDBWithConnection(testDB)
	assert.Equal(t, testDB, DB)

	DB = originalDB
}

func TestMigrate(t *testing.T) {
	originalDB := DB
	defer func() { DB = originalDB }()

	DB = nil
	assert.Error(t, Migrate())

	testDB, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer testDB.Close()
	InitDBWithConnection(testDB)

	require.NoError(t, Migrate())
	assert.True(t, DB.HasTable("reactions"))
	assert.True(t, DB.HasTable("comments"))
}

// Тест для проверки поведения CloseDB с NULL-базой данных
func TestCloseDBWithNilDB(t *testing.T) {
	originalDB := DB
	DB = nil

	err := CloseDB()
	assert.NoError(t, err)

	DB = originalDB
}

// Примечание: InitDB с реальным подключением не тестируется, так как требует настоящую PostgreSQL базу данных.
