package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/actions"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
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

func seedTask(t *testing.T, title string, status string, due *time.Time) (models.User, models.Task) {
	t.Helper()

	user := models.User{Name: "Alice", Email: title + "@example.com", PasswordHash: "h"}
	require.NoError(t, db.DB.Create(&user).Error)

	project := models.Project{Name: "P", Status: "active", OwnerID: user.ID}
	require.NoError(t, db.DB.Create(&project).Error)

	task := models.Task{
		ProjectID:  project.ID,
		Title:      title,
		Status:     status,
		Priority:   types.TaskPriorityMedium,
		DueDate:    due,
		AssigneeID: &user.ID,
	}
	require.NoError(t, db.DB.Create(&task).Error)

	return user, task
}

func unreadReminders(t *testing.T, userID uint) int {
	t.Helper()

	var count int64
	require.NoError(t, db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND is_read = ?", userID, types.NotificationTaskDue, false).
		Count(&count).Error)

	return int(count)
}

func TestScanRemindsDueSoonTasks(t *testing.T) {
	setupTestDB(t)

	dueSoon := time.Now().Add(3 * time.Hour)
	dueFar := time.Now().Add(72 * time.Hour)
	overdue := time.Now().Add(-time.Hour)

	soonUser, _ := seedTask(t, "soon", types.TaskStatusTodo, &dueSoon)
	farUser, _ := seedTask(t, "far", types.TaskStatusTodo, &dueFar)
	overdueUser, _ := seedTask(t, "overdue", types.TaskStatusTodo, &overdue)
	doneUser, _ := seedTask(t, "done", types.TaskStatusCompleted, &dueSoon)

	NewReminder(time.Hour).Scan()

	assert.Equal(t, 1, unreadReminders(t, soonUser.ID))
	assert.Zero(t, unreadReminders(t, farUser.ID))
	assert.Zero(t, unreadReminders(t, overdueUser.ID))
	assert.Zero(t, unreadReminders(t, doneUser.ID))
}

func TestScanDoesNotDuplicatePendingReminders(t *testing.T) {
	setupTestDB(t)

	dueSoon := time.Now().Add(3 * time.Hour)
	user, _ := seedTask(t, "soon", types.TaskStatusInProgress, &dueSoon)

	reminder := NewReminder(time.Hour)

	reminder.Scan()
	reminder.Scan()
	reminder.Scan()

	assert.Equal(t, 1, unreadReminders(t, user.ID))
}

func TestScanRemindsAgainAfterRead(t *testing.T) {
	setupTestDB(t)

	dueSoon := time.Now().Add(3 * time.Hour)
	user, _ := seedTask(t, "soon", types.TaskStatusTodo, &dueSoon)

	reminder := NewReminder(time.Hour)
	reminder.Scan()

	require.True(t, actions.MarkAllNotificationsRead(user.ID).Success)

	reminder.Scan()

	assert.Equal(t, 1, unreadReminders(t, user.ID))
}

func TestStartStop(t *testing.T) {
	setupTestDB(t)

	dueSoon := time.Now().Add(3 * time.Hour)
	user, _ := seedTask(t, "soon", types.TaskStatusTodo, &dueSoon)

	reminder := NewReminder(time.Hour)
	reminder.Start()
	reminder.Stop()

	// The immediate scan ran before Stop returned.
	assert.Equal(t, 1, unreadReminders(t, user.ID))
}
