package actions

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/forms"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/revalidate"
	"github.com/taskflow-dev/taskflow/internal/types"
	"gorm.io/datatypes"
)

// NotificationCreated, when set, is invoked after a notification is
// persisted. The websocket layer hooks in here to push live updates;
// failures or absence of a hook never affect the triggering mutation.
var NotificationCreated func(notification models.Notification)

type NotificationInput struct {
	UserID      uint
	Title       string
	Message     string
	Type        string
	RelatedID   *uint
	RelatedType string
	Metadata    map[string]interface{}
}

// GetNotifications lists the caller's notifications, newest first. Unread
// only by default.
func GetNotifications(userID uint, limit int, includeRead bool) []models.Notification {
	if userID == 0 {
		return []models.Notification{}
	}

	if limit <= 0 {
		limit = 10
	}

	query := db.DB.Where("user_id = ?", userID)

	if !includeRead {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification

	if err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		log.Printf("Get notifications error: %v", err)
		return []models.Notification{}
	}

	return notifications
}

// MarkNotificationRead flips the read flag on one of the caller's own
// notifications. The user_id predicate in the write keeps one recipient
// from touching another's notifications.
func MarkNotificationRead(userID, notificationID uint) forms.Result {
	if userID == 0 {
		return forms.FormError("You must be logged in to update notifications")
	}

	result := db.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)

	if result.Error != nil {
		log.Printf("Mark notification as read error: %v", result.Error)
		return forms.FormError("Failed to update notification. Please try again.")
	}

	if result.RowsAffected == 0 {
		return forms.FormError("Notification not found")
	}

	revalidate.Path("/dashboard")
	return forms.OK()
}

func MarkAllNotificationsRead(userID uint) forms.Result {
	if userID == 0 {
		return forms.FormError("You must be logged in to update notifications")
	}

	if err := db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		log.Printf("Mark all notifications as read error: %v", err)
		return forms.FormError("Failed to update notifications. Please try again.")
	}

	revalidate.Path("/dashboard")
	return forms.OK()
}

// CreateNotification persists a notification for a recipient. Callers in
// mutation paths treat a failure here as best-effort: it is logged and
// never propagated.
func CreateNotification(input NotificationInput) error {
	notification := models.Notification{
		UserID:      input.UserID,
		Title:       input.Title,
		Message:     input.Message,
		Type:        input.Type,
		RelatedID:   input.RelatedID,
		RelatedType: input.RelatedType,
	}

	if len(input.Metadata) > 0 {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return fmt.Errorf("encoding notification metadata: %w", err)
		}
		notification.Metadata = datatypes.JSON(raw)
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		return err
	}

	if NotificationCreated != nil {
		NotificationCreated(notification)
	}

	return nil
}

// NotifyTaskDue reminds the assignee about a task whose due date is within
// the next 24 hours. Tasks without an assignee or a due date are skipped.
func NotifyTaskDue(taskID uint) {
	task, err := loadTaskWithOwner(taskID)

	if err != nil {
		if !isNotFound(err) {
			log.Printf("Create task due notification error: %v", err)
		}
		return
	}

	if task.AssigneeID == nil || task.DueDate == nil {
		return
	}

	hoursLeft := time.Until(*task.DueDate).Hours()

	if hoursLeft <= 0 || hoursLeft > 24 {
		return
	}

	err = CreateNotification(NotificationInput{
		UserID: *task.AssigneeID,
		Title:  "Task Due Soon",
		Message: fmt.Sprintf("Task %q in project %q is due in %d hours.",
			task.Title, task.Project.Name, int(math.Ceil(hoursLeft))),
		Type:        types.NotificationTaskDue,
		RelatedID:   &task.ID,
		RelatedType: types.RelatedTypeTask,
		Metadata: map[string]interface{}{
			"project_id": task.ProjectID,
			"due_date":   task.DueDate.Format(time.RFC3339),
		},
	})

	if err != nil {
		log.Printf("Create task due notification error: %v", err)
	}
}

// NotifyTaskAssigned tells the assignee about a task someone else assigned
// to them. Self-assignment is suppressed.
func NotifyTaskAssigned(taskID, assignerID uint) {
	task, err := loadTaskWithOwner(taskID)

	if err != nil {
		if !isNotFound(err) {
			log.Printf("Create task assigned notification error: %v", err)
		}
		return
	}

	if task.AssigneeID == nil || *task.AssigneeID == assignerID {
		return
	}

	err = CreateNotification(NotificationInput{
		UserID: *task.AssigneeID,
		Title:  "Task Assigned",
		Message: fmt.Sprintf("You have been assigned to task %q in project %q.",
			task.Title, task.Project.Name),
		Type:        types.NotificationTaskAssigned,
		RelatedID:   &task.ID,
		RelatedType: types.RelatedTypeTask,
		Metadata: map[string]interface{}{
			"project_id": task.ProjectID,
			"assigner":   assignerID,
		},
	})

	if err != nil {
		log.Printf("Create task assigned notification error: %v", err)
	}
}

// NotifyProjectUpdate tells the project owner about a change to one of
// their projects.
func NotifyProjectUpdate(projectID uint, updateMessage string) {
	var project models.Project

	if err := db.DB.Where("id = ?", projectID).First(&project).Error; err != nil {
		if !isNotFound(err) {
			log.Printf("Create project update notification error: %v", err)
		}
		return
	}

	err := CreateNotification(NotificationInput{
		UserID:      project.OwnerID,
		Title:       "Project Update",
		Message:     fmt.Sprintf("Update for project %q: %s", project.Name, updateMessage),
		Type:        types.NotificationProjectUpdate,
		RelatedID:   &project.ID,
		RelatedType: types.RelatedTypeProject,
	})

	if err != nil {
		log.Printf("Create project update notification error: %v", err)
	}
}
