package actions

import (
	"fmt"
	"log"
	"strings"

	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/forms"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/revalidate"
	"gorm.io/gorm"
)

type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func validateProject(input ProjectInput) forms.Errors {
	errs := forms.Errors{}

	if strings.TrimSpace(input.Name) == "" {
		errs.Add("name", "Project name is required")
	}

	return errs
}

func CreateProject(ownerID uint, input ProjectInput) (uint, forms.Result) {
	if ownerID == 0 {
		return 0, forms.FormError("You must be logged in to create a project")
	}

	if errs := validateProject(input); !errs.Empty() {
		return 0, errs.Result()
	}

	project := models.Project{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		OwnerID:     ownerID,
	}

	if err := db.DB.Create(&project).Error; err != nil {
		log.Printf("Create project error: %v", err)
		return 0, forms.FormError("Failed to create project. Please try again.")
	}

	revalidate.Path("/dashboard")
	return project.ID, forms.OK()
}

// GetProjects returns the caller's projects, most recently updated first.
// A missing identity or a storage error degrades to an empty slice rather
// than failing the read path.
func GetProjects(ownerID uint) []models.Project {
	if ownerID == 0 {
		return []models.Project{}
	}

	var projects []models.Project

	if err := db.DB.Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&projects).Error; err != nil {
		log.Printf("Get projects error: %v", err)
		return []models.Project{}
	}

	return projects
}

// GetProject returns nil both when the project does not exist and when it
// belongs to a different owner; the two cases are indistinguishable so one
// tenant cannot probe for another's project ids. Child tasks come along,
// most recently updated first.
func GetProject(ownerID, projectID uint) *models.Project {
	if ownerID == 0 {
		return nil
	}

	var project models.Project

	err := db.DB.Where("id = ? AND owner_id = ?", projectID, ownerID).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.updated_at DESC")
		}).
		First(&project).Error

	if err != nil {
		if !isNotFound(err) {
			log.Printf("Get project error: %v", err)
		}
		return nil
	}

	return &project
}

func UpdateProject(ownerID, projectID uint, input ProjectInput) forms.Result {
	if ownerID == 0 {
		return forms.FormError("You must be logged in to update a project")
	}

	if errs := validateProject(input); !errs.Empty() {
		return errs.Result()
	}

	if GetProject(ownerID, projectID) == nil {
		return forms.FormError("Project not found or you do not have permission")
	}

	// The write re-asserts ownership so a concurrent delete or owner change
	// between the check and the update cannot slip through.
	result := db.DB.Model(&models.Project{}).
		Where("id = ? AND owner_id = ?", projectID, ownerID).
		Updates(map[string]interface{}{
			"name":        strings.TrimSpace(input.Name),
			"description": input.Description,
		})

	if result.Error != nil {
		log.Printf("Update project error: %v", result.Error)
		return forms.FormError("Failed to update project. Please try again.")
	}

	if result.RowsAffected == 0 {
		return forms.FormError("Project not found or you do not have permission")
	}

	NotifyProjectUpdate(projectID, "Project details were updated")

	revalidate.Path(fmt.Sprintf("/dashboard/projects/%d", projectID))
	revalidate.Path("/dashboard")
	return forms.OK()
}

// DeleteProject removes the project and all of its tasks in one
// transaction, so an interruption cannot leave orphaned tasks behind.
func DeleteProject(ownerID, projectID uint) forms.Result {
	if ownerID == 0 {
		return forms.FormError("You must be logged in to delete a project")
	}

	if GetProject(ownerID, projectID) == nil {
		return forms.FormError("Project not found or you do not have permission")
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND owner_id = ?", projectID, ownerID).Delete(&models.Project{})
		if result.Error != nil {
			return result.Error
		}

		// A concurrent delete or owner change between the pre-check and this
		// write rolls the task deletes back with it.
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})

	if err != nil {
		if isNotFound(err) {
			return forms.FormError("Project not found or you do not have permission")
		}
		log.Printf("Delete project error: %v", err)
		return forms.FormError("Failed to delete project. Please try again.")
	}

	revalidate.Path("/dashboard")
	return forms.OK()
}
