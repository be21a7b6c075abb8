package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Notification struct {
	gorm.Model

	UserID      uint   `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Message     string
	Type        string `gorm:"not null"` // "task_due", "task_assigned", "project_update"
	RelatedID   *uint
	RelatedType string
	IsRead      bool           `gorm:"not null;default:false;index"`
	Metadata    datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
