package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course and Enrollment are owned by the course service. They are migrated
// here only so the chat partner directory can join against them.
type Course struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	InstructorID uuid.UUID `gorm:"type:uuid;index;not null" json:"instructor_id"`
	Instructor   User      `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Enrollment struct {
	CourseID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"course_id"`
	StudentID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}
