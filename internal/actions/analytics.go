package actions

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"gorm.io/gorm"
)

// ChartPoint is one labeled value in a distribution chart.
type ChartPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type WeeklyCompletion struct {
	Name  string `json:"name"`
	Tasks int    `json:"tasks"`
}

type ProductivitySummary struct {
	CompletedTasks        int     `json:"completed_tasks"`
	TotalTasks            int     `json:"total_tasks"`
	TasksThisWeek         int     `json:"tasks_this_week"`
	TasksLastWeek         int     `json:"tasks_last_week"`
	AverageCompletionTime float64 `json:"average_completion_time"`
}

type Activity struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	EntityName string    `json:"entity_name"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     uint      `json:"user_id"`
	UserName   string    `json:"user_name"`
}

var statusDisplayNames = map[string]string{
	types.TaskStatusTodo:       "To Do",
	types.TaskStatusInProgress: "In Progress",
	types.TaskStatusCompleted:  "Completed",
}

// userTasks scopes task reads to projects owned by userID.
func userTasks(userID uint) *gorm.DB {
	return db.DB.Model(&models.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.owner_id = ?", userID)
}

// TaskStatusDistribution counts the caller's tasks by status.
func TaskStatusDistribution(userID uint) []ChartPoint {
	return distribution(userID, "status", func(status string) string {
		if name, ok := statusDisplayNames[status]; ok {
			return name
		}
		return status
	})
}

// TaskPriorityDistribution counts the caller's tasks by priority.
func TaskPriorityDistribution(userID uint) []ChartPoint {
	return distribution(userID, "priority", capitalize)
}

func distribution(userID uint, column string, displayName func(string) string) []ChartPoint {
	if userID == 0 {
		return []ChartPoint{}
	}

	var rows []struct {
		Value string
		Count int
	}

	err := userTasks(userID).
		Select(fmt.Sprintf("tasks.%s AS value, COUNT(*) AS count", column)).
		Group(fmt.Sprintf("tasks.%s", column)).
		Scan(&rows).Error

	if err != nil {
		log.Printf("Get task %s distribution error: %v", column, err)
		return []ChartPoint{}
	}

	points := make([]ChartPoint, 0, len(rows))

	for _, row := range rows {
		points = append(points, ChartPoint{Name: displayName(row.Value), Value: row.Count})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Name < points[j].Name })
	return points
}

// WeeklyTaskCompletion reports tasks completed in each of the last `weeks`
// weeks, oldest first. The current week runs only up to now.
func WeeklyTaskCompletion(userID uint, weeks int) []WeeklyCompletion {
	if userID == 0 {
		return []WeeklyCompletion{}
	}

	if weeks <= 0 {
		weeks = 4
	}

	now := time.Now()
	result := make([]WeeklyCompletion, 0, weeks)

	for i := weeks - 1; i >= 0; i-- {
		end := now
		if i > 0 {
			end = endOfWeek(now.AddDate(0, 0, -7*i))
		}
		start := startOfWeek(end)

		var count int64

		err := userTasks(userID).
			Where("tasks.status = ?", types.TaskStatusCompleted).
			Where("tasks.updated_at BETWEEN ? AND ?", start, end).
			Count(&count).Error

		if err != nil {
			log.Printf("Get weekly task completion error: %v", err)
			return []WeeklyCompletion{}
		}

		result = append(result, WeeklyCompletion{
			Name:  fmt.Sprintf("Week %d", weeks-i),
			Tasks: int(count),
		})
	}

	return result
}

// GetProductivitySummary aggregates completion totals and the average
// hours between task creation and completion. Completion time is
// approximated from created/updated timestamps; the model does not track
// the exact moment a task entered the completed status.
func GetProductivitySummary(userID uint) ProductivitySummary {
	if userID == 0 {
		return ProductivitySummary{}
	}

	var summary ProductivitySummary
	now := time.Now()

	counts := []struct {
		dest  *int
		scope func(*gorm.DB) *gorm.DB
	}{
		{&summary.TotalTasks, func(q *gorm.DB) *gorm.DB {
			return q
		}},
		{&summary.CompletedTasks, func(q *gorm.DB) *gorm.DB {
			return q.Where("tasks.status = ?", types.TaskStatusCompleted)
		}},
		{&summary.TasksThisWeek, func(q *gorm.DB) *gorm.DB {
			return q.Where("tasks.status = ?", types.TaskStatusCompleted).
				Where("tasks.updated_at BETWEEN ? AND ?", startOfWeek(now), now)
		}},
		{&summary.TasksLastWeek, func(q *gorm.DB) *gorm.DB {
			lastWeek := now.AddDate(0, 0, -7)
			return q.Where("tasks.status = ?", types.TaskStatusCompleted).
				Where("tasks.updated_at BETWEEN ? AND ?", startOfWeek(lastWeek), endOfWeek(lastWeek))
		}},
	}

	for _, c := range counts {
		var n int64
		if err := c.scope(userTasks(userID)).Count(&n).Error; err != nil {
			log.Printf("Get productivity summary error: %v", err)
			return ProductivitySummary{}
		}
		*c.dest = int(n)
	}

	var completed []models.Task

	err := userTasks(userID).
		Where("tasks.status = ?", types.TaskStatusCompleted).
		Select("tasks.created_at, tasks.updated_at").
		Find(&completed).Error

	if err != nil {
		log.Printf("Get productivity summary error: %v", err)
		return ProductivitySummary{}
	}

	if len(completed) > 0 {
		var totalHours float64
		for _, task := range completed {
			totalHours += task.UpdatedAt.Sub(task.CreatedAt).Hours()
		}
		summary.AverageCompletionTime = totalHours / float64(len(completed))
	}

	return summary
}

// GetRecentActivities derives an activity feed from the most recently
// touched projects and tasks. There is no dedicated activity log; this is
// a view over existing timestamps.
func GetRecentActivities(userID uint, limit int) []Activity {
	if userID == 0 {
		return []Activity{}
	}

	if limit <= 0 {
		limit = 10
	}

	user := GetUser(userID)

	if user == nil {
		return []Activity{}
	}

	userName := user.Name
	if userName == "" {
		userName = user.Email
	}

	var projects []models.Project

	if err := db.DB.Where("owner_id = ?", userID).
		Order("updated_at DESC").
		Limit(5).
		Find(&projects).Error; err != nil {
		log.Printf("Get recent activities error: %v", err)
		return []Activity{}
	}

	var tasks []models.Task

	if err := db.DB.
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.owner_id = ?", userID).
		Order("tasks.updated_at DESC").
		Limit(5).
		Find(&tasks).Error; err != nil {
		log.Printf("Get recent activities error: %v", err)
		return []Activity{}
	}

	activities := make([]Activity, 0, len(projects)+len(tasks))

	for _, project := range projects {
		activities = append(activities, Activity{
			ID:         fmt.Sprintf("project-%d", project.ID),
			Type:       "update_project",
			EntityName: project.Name,
			Timestamp:  project.UpdatedAt,
			UserID:     userID,
			UserName:   userName,
		})
	}

	for _, task := range tasks {
		activityType := "update_task"
		if task.Status == types.TaskStatusCompleted {
			activityType = "complete_task"
		}
		activities = append(activities, Activity{
			ID:         fmt.Sprintf("task-%d", task.ID),
			Type:       activityType,
			EntityName: task.Title,
			Timestamp:  task.UpdatedAt,
			UserID:     userID,
			UserName:   userName,
		})
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})

	if len(activities) > limit {
		activities = activities[:limit]
	}

	return activities
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// startOfWeek returns midnight on the Sunday of t's week.
func startOfWeek(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return t.AddDate(0, 0, -int(t.Weekday()))
}

func endOfWeek(t time.Time) time.Time {
	return startOfWeek(t).AddDate(0, 0, 7).Add(-time.Nanosecond)
}
