package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project is owned by the project-management surface; the scheduler reads it
// to resolve the owner as the recipient of schedule-based notifications.
type Project struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;"`
	Name    string    `gorm:"type:varchar(200);not null"`
	OwnerID uuid.UUID `gorm:"type:uuid;index;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
