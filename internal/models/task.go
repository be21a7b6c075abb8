package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	ProjectID   uint   `gorm:"not null;index"` // Foreign key to the Project
	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:'todo'"`   // "todo", "in-progress", "completed"
	Priority    string `gorm:"not null;default:'medium'"` // "low", "medium", "high"
	DueDate     *time.Time
	AssigneeID  *uint `gorm:"index"`

	// Relationships
	Project  Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignee *User   `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
