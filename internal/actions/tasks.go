package actions

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/forms"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/revalidate"
	"github.com/taskflow-dev/taskflow/internal/types"
	"gorm.io/gorm"
)

type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

// validateTask checks the field shapes, applies the status/priority
// defaults and parses the optional due date.
func validateTask(input TaskInput) (forms.Errors, TaskInput, *time.Time) {
	errs := forms.Errors{}

	input.Title = strings.TrimSpace(input.Title)

	if input.Title == "" {
		errs.Add("title", "Task title is required")
	}

	if input.Status == "" {
		input.Status = types.TaskStatusTodo
	} else if !types.ValidTaskStatus(input.Status) {
		errs.Add("status", "Invalid task status")
	}

	if input.Priority == "" {
		input.Priority = types.TaskPriorityMedium
	} else if !types.ValidTaskPriority(input.Priority) {
		errs.Add("priority", "Invalid task priority")
	}

	dueDate, err := parseDueDate(input.DueDate)

	if err != nil {
		errs.Add("due_date", "Invalid due date")
	}

	return errs, input, dueDate
}

func parseDueDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("unrecognized due date %q", value)
}

// CreateTask creates a task under a project the caller owns. The parent
// project resolves through the same owner-scoped lookup as GetProject, so
// a foreign project is indistinguishable from a missing one. The assignee
// defaults to the creator.
func CreateTask(ownerID, projectID uint, input TaskInput) (uint, forms.Result) {
	if ownerID == 0 {
		return 0, forms.FormError("You must be logged in to create a task")
	}

	errs, input, dueDate := validateTask(input)

	if !errs.Empty() {
		return 0, errs.Result()
	}

	if GetProject(ownerID, projectID) == nil {
		return 0, forms.FormError("Project not found or you do not have permission")
	}

	assigneeID := ownerID

	task := models.Task{
		ProjectID:   projectID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     dueDate,
		AssigneeID:  &assigneeID,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		log.Printf("Create task error: %v", err)
		return 0, forms.FormError("Failed to create task. Please try again.")
	}

	NotifyTaskAssigned(task.ID, ownerID)

	revalidate.Path(fmt.Sprintf("/dashboard/projects/%d", projectID))
	return task.ID, forms.OK()
}

// loadTaskWithOwner fetches the task together with its parent project so
// the caller can resolve permissions through the project's owner.
func loadTaskWithOwner(taskID uint) (*models.Task, error) {
	var task models.Task

	err := db.DB.Preload("Project").Where("id = ?", taskID).First(&task).Error

	if err != nil {
		return nil, err
	}

	return &task, nil
}

// ownedTasks scopes a task write to projects owned by ownerID, re-asserting
// the ownership chain inside the write itself rather than trusting the
// earlier read.
func ownedTasks(ownerID uint) *gorm.DB {
	return db.DB.Model(&models.Task{}).
		Where("project_id IN (SELECT id FROM projects WHERE owner_id = ?)", ownerID)
}

// UpdateTaskStatus moves a task to any of the three statuses; there is no
// transition graph, completed tasks can be reopened freely. The three
// failure cases stay textually distinct: not logged in, task missing, and
// task owned by someone else.
func UpdateTaskStatus(ownerID, taskID uint, status string) forms.Result {
	if ownerID == 0 {
		return forms.FormError("You must be logged in to update a task")
	}

	if !types.ValidTaskStatus(status) {
		return forms.FieldError("status", "Invalid task status")
	}

	task, err := loadTaskWithOwner(taskID)

	if err != nil {
		if isNotFound(err) {
			return forms.FormError("Task not found")
		}
		log.Printf("Update task status error: %v", err)
		return forms.FormError("Failed to update task status. Please try again.")
	}

	if task.Project.OwnerID != ownerID {
		return forms.FormError("You do not have permission to update this task")
	}

	result := ownedTasks(ownerID).Where("id = ?", taskID).Update("status", status)

	if result.Error != nil {
		log.Printf("Update task status error: %v", result.Error)
		return forms.FormError("Failed to update task status. Please try again.")
	}

	if result.RowsAffected == 0 {
		return forms.FormError("Task not found")
	}

	revalidate.Path(fmt.Sprintf("/dashboard/projects/%d", task.ProjectID))
	return forms.OK()
}

// UpdateTask re-validates every field and updates the task in place. A task
// cannot be moved between projects.
func UpdateTask(ownerID, taskID uint, input TaskInput) forms.Result {
	if ownerID == 0 {
		return forms.FormError("You must be logged in to update a task")
	}

	errs, input, dueDate := validateTask(input)

	if !errs.Empty() {
		return errs.Result()
	}

	task, err := loadTaskWithOwner(taskID)

	if err != nil {
		if isNotFound(err) {
			return forms.FormError("Task not found")
		}
		log.Printf("Update task error: %v", err)
		return forms.FormError("Failed to update task. Please try again.")
	}

	if task.Project.OwnerID != ownerID {
		return forms.FormError("You do not have permission to update this task")
	}

	result := ownedTasks(ownerID).Where("id = ?", taskID).Updates(map[string]interface{}{
		"title":       input.Title,
		"description": input.Description,
		"status":      input.Status,
		"priority":    input.Priority,
		"due_date":    dueDate,
	})

	if result.Error != nil {
		log.Printf("Update task error: %v", result.Error)
		return forms.FormError("Failed to update task. Please try again.")
	}

	if result.RowsAffected == 0 {
		return forms.FormError("Task not found")
	}

	NotifyTaskAssigned(taskID, ownerID)

	revalidate.Path(fmt.Sprintf("/dashboard/projects/%d", task.ProjectID))
	return forms.OK()
}

func DeleteTask(ownerID, taskID uint) forms.Result {
	if ownerID == 0 {
		return forms.FormError("You must be logged in to delete a task")
	}

	task, err := loadTaskWithOwner(taskID)

	if err != nil {
		if isNotFound(err) {
			return forms.FormError("Task not found")
		}
		log.Printf("Delete task error: %v", err)
		return forms.FormError("Failed to delete task. Please try again.")
	}

	if task.Project.OwnerID != ownerID {
		return forms.FormError("You do not have permission to delete this task")
	}

	result := db.DB.
		Where("id = ? AND project_id IN (SELECT id FROM projects WHERE owner_id = ?)", taskID, ownerID).
		Delete(&models.Task{})

	if result.Error != nil {
		log.Printf("Delete task error: %v", result.Error)
		return forms.FormError("Failed to delete task. Please try again.")
	}

	if result.RowsAffected == 0 {
		return forms.FormError("Task not found")
	}

	revalidate.Path(fmt.Sprintf("/dashboard/projects/%d", task.ProjectID))
	return forms.OK()
}

// GetTask returns nil when the task does not exist or when its parent
// project belongs to a different owner, the same tenant-isolation policy
// as GetProject.
func GetTask(ownerID, taskID uint) *models.Task {
	if ownerID == 0 {
		return nil
	}

	task, err := loadTaskWithOwner(taskID)

	if err != nil {
		if !isNotFound(err) {
			log.Printf("Get task error: %v", err)
		}
		return nil
	}

	if task.Project.OwnerID != ownerID {
		return nil
	}

	return task
}

// GetTasks lists the tasks of a project the caller owns, most recently
// updated first. An unowned or missing project degrades to an empty slice.
func GetTasks(ownerID, projectID uint) []models.Task {
	if ownerID == 0 {
		return []models.Task{}
	}

	if GetProject(ownerID, projectID) == nil {
		return []models.Task{}
	}

	var tasks []models.Task

	if err := db.DB.Where("project_id = ?", projectID).
		Order("updated_at DESC").
		Find(&tasks).Error; err != nil {
		log.Printf("Get tasks error: %v", err)
		return []models.Task{}
	}

	return tasks
}
