package actions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the global db.DB at a fresh in-memory sqlite database
// with the full schema applied.
func setupTestDB(t *testing.T) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	// A pooled connection would get its own empty :memory: database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Notification{},
	))

	prev := db.DB
	db.DB = gdb

	t.Cleanup(func() {
		db.DB = prev
		sqlDB.Close()
	})
}

func createTestUser(t *testing.T, name, email string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Name: name, Email: email, PasswordHash: string(hash)}
	require.NoError(t, db.DB.Create(&user).Error)

	return user
}

func createTestProject(t *testing.T, ownerID uint, name string) models.Project {
	t.Helper()

	project := models.Project{Name: name, Status: "active", OwnerID: ownerID}
	require.NoError(t, db.DB.Create(&project).Error)

	return project
}

func createTestTask(t *testing.T, projectID uint, title string) models.Task {
	t.Helper()

	task := models.Task{ProjectID: projectID, Title: title, Status: "todo", Priority: "medium"}
	require.NoError(t, db.DB.Create(&task).Error)

	return task
}

// touchUpdatedAt forces a row's updated_at so ordering tests do not depend
// on timestamp resolution.
func touchUpdatedAt(t *testing.T, model interface{}, id uint, at time.Time) {
	t.Helper()

	require.NoError(t, db.DB.Model(model).
		Where("id = ?", id).
		UpdateColumn("updated_at", at).Error)
}
