package class

import "time"

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelAll          Level = "all"
)

// Instructor is copied from the instructor's user record when the class is
// created and is not kept in sync afterwards.
type Instructor struct {
	ID             int    `db:"instructor_id" json:"id"`
	Name           string `db:"instructor_name" json:"name"`
	Avatar         string `db:"instructor_avatar" json:"avatar"`
	Specialization string `db:"instructor_specialization" json:"specialization"`
}

type Class struct {
	ID              int    `db:"id" json:"id"`
	GymID           int    `db:"gym_id" json:"gym_id"`
	Name            string `db:"name" json:"name"`
	Description     string `db:"description" json:"description"`
	Instructor      `json:"instructor"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	EndTime         time.Time `db:"end_time" json:"end_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Capacity        int       `db:"capacity" json:"capacity"`
	Enrolled        int       `db:"enrolled" json:"enrolled"`
	Level           Level     `db:"level" json:"level"`
	Type            string    `db:"type" json:"type"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Spots is the number of places left.
func (c *Class) Spots() int {
	if c.Enrolled >= c.Capacity {
		return 0
	}
	return c.Capacity - c.Enrolled
}

type CreateClassRequest struct {
	GymID        int       `json:"gymId" binding:"required,min=1"`
	Name         string    `json:"name" binding:"required,min=2,max=150"`
	Description  string    `json:"description" binding:"max=2000"`
	InstructorID int       `json:"instructorId" binding:"required,min=1"`
	StartTime    time.Time `json:"startTime" binding:"required"`
	EndTime      time.Time `json:"endTime" binding:"required"`
	Capacity     int       `json:"capacity" binding:"required,min=1,max=1000"`
	Level        Level     `json:"level" binding:"omitempty,oneof=beginner intermediate advanced all"`
	Type         string    `json:"type" binding:"max=50"`
}
