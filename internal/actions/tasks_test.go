package actions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow-dev/taskflow/internal/types"
)

func TestCreateTaskDefaults(t *testing.T) {
	setupTestDB(t)

	user := createTestUser(t, "Alice", "alice@example.com")
	project := createTestProject(t, user.ID, "P1")

	taskID, res := CreateTask(user.ID, project.ID, TaskInput{Title: "T1"})

	require.True(t, res.Success)
	require.NotZero(t, taskID)

	task := GetTask(user.ID, taskID)
	require.NotNil(t, task)
	assert.Equal(t, types.TaskStatusTodo, task.Status)
	assert.Equal(t, types.TaskPriorityMedium, task.Priority)
	assert.Nil(t, task.DueDate)
	require.NotNil(t, task.AssigneeID)
	assert.Equal(t, user.ID, *task.AssigneeID)
}

func TestCreateTaskValidation(t *testing.T) {
	setupTestDB(t)

	user := createTestUser(t, "Alice", "alice@example.com")
	project := createTestProject(t, user.ID, "P1")

	tests := []struct {
		name  string
		input TaskInput
		field string
		msg   string
	}{
		{
			name:  "empty title",
			input: TaskInput{Title: "  "},
			field: "title",
			msg:   "Task title is required",
		},
		{
			name:  "unknown status",
			input: TaskInput{Title: "T", Status: "archived"},
			field: "status",
			msg:   "Invalid task status",
		},
		{
			name:  "unknown priority",
			input: TaskInput{Title: "T", Priority: "urgent"},
			field: "priority",
			msg:   "Invalid task priority",
		},
		{
			name:  "garbage due date",
			input: TaskInput{Title: "T", DueDate: "next tuesday"},
			field: "due_date",
			msg:   "Invalid due date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res := CreateTask(user.ID, project.ID, tt.input)

			assert.False(t, res.Success)
			assert.Equal(t, []string{tt.msg}, res.Errors[tt.field])
		})
	}
}

func TestCreateTaskDueDateFormats(t *testing.T) {
	setupTestDB(t)

	user := createTestUser(t, "Alice", "alice@example.com")
	project := createTestProject(t, user.ID, "P1")

	taskID, res := CreateTask(user.ID, project.ID, TaskInput{Title: "date only", DueDate: "2026-09-15"})
	require.True(t, res.Success)

	task := GetTask(user.ID, taskID)
	require.NotNil(t, task)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, 2026, task.DueDate.Year())
	assert.Equal(t, time.September, task.DueDate.Month())

	_, res = CreateTask(user.ID, project.ID, TaskInput{Title: "rfc3339", DueDate: "2026-09-15T17:30:00Z"})
	assert.True(t, res.Success)
}

func TestCreateTaskForeignProject(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "Alice", "alice@example.com")
	bob := createTestUser(t, "Bob", "bob@example.com")
	project := createTestProject(t, alice.ID, "alice-project")

	taskID, res := CreateTask(bob.ID, project.ID, TaskInput{Title: "intruder"})

	assert.Zero(t, taskID)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"Project not found or you do not have permission"}, res.Errors["_form"])

	// The task was never created.
	assert.Empty(t, GetTasks(alice.ID, project.ID))
}

func TestUpdateTaskStatusErrorTaxonomy(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "Alice", "alice@example.com")
	bob := createTestUser(t, "Bob", "bob@example.com")
	project := createTestProject(t, alice.ID, "P1")
	task := createTestTask(t, project.ID, "T1")

	// No identity at all.
	res := UpdateTaskStatus(0, task.ID, types.TaskStatusCompleted)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"You must be logged in to update a task"}, res.Errors["_form"])

	// Task genuinely absent.
	res = UpdateTaskStatus(alice.ID, task.ID+100, types.TaskStatusCompleted)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"Task not found"}, res.Errors["_form"])

	// Task exists but the parent project belongs to someone else.
	res = UpdateTaskStatus(bob.ID, task.ID, types.TaskStatusCompleted)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"You do not have permission to update this task"}, res.Errors["_form"])

	// Rejected status value never reaches storage.
	res = UpdateTaskStatus(alice.ID, task.ID, "archived")
	assert.False(t, res.Success)
	assert.Equal(t, []string{"Invalid task status"}, res.Errors["status"])

	unchanged := GetTask(alice.ID, task.ID)
	require.NotNil(t, unchanged)
	assert.Equal(t, types.TaskStatusTodo, unchanged.Status)
}

func TestTaskStatusTransitionsUnrestricted(t *testing.T) {
	setupTestDB(t)

	user := createTestUser(t, "Alice", "alice@example.com")
	project := createTestProject(t, user.ID, "P1")
	task := createTestTask(t, project.ID, "T1")

	// Any status is reachable from any other, including reopening.
	for _, status := range []string{
		types.TaskStatusCompleted,
		types.TaskStatusTodo,
		types.TaskStatusInProgress,
		types.TaskStatusCompleted,
	} {
		res := UpdateTaskStatus(user.ID, task.ID, status)
		require.True(t, res.Success)

		got := GetTask(user.ID, task.ID)
		require.NotNil(t, got)
		assert.Equal(t, status, got.Status)
	}
}

func TestUpdateTask(t *testing.T) {
	setupTestDB(t)

	user := createTestUser(t, "Alice", "alice@example.com")
	project := createTestProject(t, user.ID, "P1")
	task := createTestTask(t, project.ID, "before")

	res := UpdateTask(user.ID, task.ID, TaskInput{
		Title:    "after",
		Status:   types.TaskStatusInProgress,
		Priority: types.TaskPriorityHigh,
		DueDate:  "2026-10-01",
	})
	require.True(t, res.Success)

	got := GetTask(user.ID, task.ID)
	require.NotNil(t, got)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, types.TaskStatusInProgress, got.Status)
	assert.Equal(t, types.TaskPriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)

	// A task stays in its project; updates cannot move it.
	assert.Equal(t, project.ID, got.ProjectID)

	res = UpdateTask(user.ID, task.ID, TaskInput{Title: ""})
	assert.False(t, res.Success)
	assert.Equal(t, []string{"Task title is required"}, res.Errors["title"])
}

func TestDeleteTaskErrorTaxonomy(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "Alice", "alice@example.com")
	bob := createTestUser(t, "Bob", "bob@example.com")
	project := createTestProject(t, alice.ID, "P1")
	task := createTestTask(t, project.ID, "T1")

	res := DeleteTask(0, task.ID)
	assert.Equal(t, []string{"You must be logged in to delete a task"}, res.Errors["_form"])

	res = DeleteTask(alice.ID, task.ID+100)
	assert.Equal(t, []string{"Task not found"}, res.Errors["_form"])

	res = DeleteTask(bob.ID, task.ID)
	assert.Equal(t, []string{"You do not have permission to delete this task"}, res.Errors["_form"])
	require.NotNil(t, GetTask(alice.ID, task.ID))

	res = DeleteTask(alice.ID, task.ID)
	require.True(t, res.Success)
	assert.Nil(t, GetTask(alice.ID, task.ID))
}

func TestTaskOwnershipChain(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "Alice", "alice@example.com")
	bob := createTestUser(t, "Bob", "bob@example.com")
	project := createTestProject(t, alice.ID, "P1")
	task := createTestTask(t, project.ID, "T1")

	// Accessibility is governed solely by the parent project's owner.
	assert.NotNil(t, GetTask(alice.ID, task.ID))
	assert.Nil(t, GetTask(bob.ID, task.ID))

	// Deleting the parent project removes the task for everyone.
	require.True(t, DeleteProject(alice.ID, project.ID).Success)
	assert.Nil(t, GetTask(alice.ID, task.ID))
}

func TestGetTasksScoping(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "Alice", "alice@example.com")
	bob := createTestUser(t, "Bob", "bob@example.com")
	project := createTestProject(t, alice.ID, "P1")
	createTestTask(t, project.ID, "T1")
	createTestTask(t, project.ID, "T2")

	assert.Len(t, GetTasks(alice.ID, project.ID), 2)
	assert.Empty(t, GetTasks(bob.ID, project.ID))
	assert.Empty(t, GetTasks(0, project.ID))
}

// The end-to-end scenario: owner drives a task to completed, a stranger's
// write bounces with the permission message and changes nothing.
func TestOwnershipScenario(t *testing.T) {
	setupTestDB(t)

	u1 := createTestUser(t, "U1", "u1@example.com")
	u2 := createTestUser(t, "U2", "u2@example.com")

	projectID, res := CreateProject(u1.ID, ProjectInput{Name: "P1"})
	require.True(t, res.Success)

	taskID, res := CreateTask(u1.ID, projectID, TaskInput{Title: "T1"})
	require.True(t, res.Success)

	res = UpdateTaskStatus(u1.ID, taskID, "completed")
	require.True(t, res.Success)

	task := GetTask(u1.ID, taskID)
	require.NotNil(t, task)
	assert.Equal(t, "completed", task.Status)

	res = UpdateTaskStatus(u2.ID, taskID, "todo")
	assert.False(t, res.Success)
	assert.Equal(t, map[string][]string{"_form": {"You do not have permission to update this task"}}, res.Errors)

	task = GetTask(u1.ID, taskID)
	require.NotNil(t, task)
	assert.Equal(t, "completed", task.Status)
}
