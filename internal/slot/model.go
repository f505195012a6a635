package slot

import "time"

type Status string

const (
	StatusAvailable Status = "available"
	StatusFull      Status = "full"
	StatusClosed    Status = "closed"
)

const dateLayout = "2006-01-02"

type Slot struct {
	ID        int       `db:"id" json:"id"`
	GymID     int       `db:"gym_id" json:"gym_id"`
	Date      time.Time `db:"date" json:"date"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Available int       `db:"available" json:"available"`
	Closed    bool      `db:"closed" json:"closed"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DeriveStatus is the only source of a slot's status. An explicit close wins
// over the remaining count.
func DeriveStatus(available int, closed bool) Status {
	switch {
	case closed:
		return StatusClosed
	case available <= 0:
		return StatusFull
	default:
		return StatusAvailable
	}
}

// AdjustCapacity keeps consumed spots consumed when capacity changes and
// clamps the result to [0, newCapacity].
func AdjustCapacity(oldCapacity, newCapacity, available int) int {
	next := available + (newCapacity - oldCapacity)
	if next < 0 {
		return 0
	}
	if next > newCapacity {
		return newCapacity
	}
	return next
}

type CreateSlotRequest struct {
	GymID     int    `json:"gymId" binding:"required,min=1"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" binding:"required,datetime=15:04"`
	EndTime   string `json:"endTime" binding:"required,datetime=15:04"`
	Capacity  int    `json:"capacity" binding:"required,min=1,max=10000"`
	Closed    bool   `json:"closed"`
}

// UpdateSlotRequest only touches fields that are present.
type UpdateSlotRequest struct {
	Date      *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	StartTime *string `json:"startTime" binding:"omitempty,datetime=15:04"`
	EndTime   *string `json:"endTime" binding:"omitempty,datetime=15:04"`
	Capacity  *int    `json:"capacity" binding:"omitempty,min=1,max=10000"`
	Closed    *bool   `json:"closed"`
}
