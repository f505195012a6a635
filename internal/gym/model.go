package gym

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

var ErrInvalidPlan = errors.New("invalid plan")

// Plan selects a billing period from a gym's pricing table.
type Plan string

const (
	PlanPerDay   Plan = "perDay"
	PlanPerWeek  Plan = "perWeek"
	PlanPerMonth Plan = "perMonth"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanPerDay, PlanPerWeek, PlanPerMonth:
		return true
	}
	return false
}

// Pricing holds one rate per plan in the gym currency's minor unit.
type Pricing struct {
	PerDay   int64 `db:"price_per_day" json:"perDay" binding:"min=0"`
	PerWeek  int64 `db:"price_per_week" json:"perWeek" binding:"min=0"`
	PerMonth int64 `db:"price_per_month" json:"perMonth" binding:"min=0"`
}

func (p Pricing) Price(plan Plan) (int64, error) {
	switch plan {
	case PlanPerDay:
		return p.PerDay, nil
	case PlanPerWeek:
		return p.PerWeek, nil
	case PlanPerMonth:
		return p.PerMonth, nil
	}
	return 0, ErrInvalidPlan
}

type Address struct {
	Street  string `db:"street" json:"street" binding:"max=200"`
	City    string `db:"city" json:"city" binding:"required,max=100"`
	State   string `db:"state" json:"state" binding:"max=100"`
	ZipCode string `db:"zip_code" json:"zip_code" binding:"max=20"`
	Country string `db:"country" json:"country" binding:"max=100"`
}

type Gym struct {
	ID          int    `db:"id" json:"id"`
	OwnerID     int    `db:"owner_id" json:"owner_id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Address     `json:"address"`
	Facilities  pq.StringArray `db:"facilities" json:"facilities"`
	OpeningTime string         `db:"opening_time" json:"opening_time"`
	ClosingTime string         `db:"closing_time" json:"closing_time"`
	Pricing     `json:"pricing"`
	Currency    string    `db:"currency" json:"currency"`
	Rating      float64   `db:"rating" json:"rating"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type CreateGymRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=150"`
	Description string   `json:"description" binding:"max=2000"`
	Address     Address  `json:"address" binding:"required"`
	Facilities  []string `json:"facilities" binding:"omitempty,dive,min=1,max=50"`
	OpeningTime string   `json:"openingTime" binding:"required,datetime=15:04"`
	ClosingTime string   `json:"closingTime" binding:"required,datetime=15:04"`
	Pricing     Pricing  `json:"pricing" binding:"required"`
	Currency    string   `json:"currency" binding:"omitempty,len=3"`
}

type PricingUpdate struct {
	PerDay   *int64 `json:"perDay" binding:"omitempty,min=0"`
	PerWeek  *int64 `json:"perWeek" binding:"omitempty,min=0"`
	PerMonth *int64 `json:"perMonth" binding:"omitempty,min=0"`
}

// UpdateGymRequest only touches fields that are present.
type UpdateGymRequest struct {
	Name        *string        `json:"name" binding:"omitempty,min=2,max=150"`
	Description *string        `json:"description" binding:"omitempty,max=2000"`
	Street      *string        `json:"street" binding:"omitempty,max=200"`
	City        *string        `json:"city" binding:"omitempty,min=1,max=100"`
	State       *string        `json:"state" binding:"omitempty,max=100"`
	ZipCode     *string        `json:"zipCode" binding:"omitempty,max=20"`
	Country     *string        `json:"country" binding:"omitempty,max=100"`
	Facilities  *[]string      `json:"facilities"`
	OpeningTime *string        `json:"openingTime" binding:"omitempty,datetime=15:04"`
	ClosingTime *string        `json:"closingTime" binding:"omitempty,datetime=15:04"`
	Pricing     *PricingUpdate `json:"pricing"`
}

type SearchFilter struct {
	Query    string
	City     string
	Facility string
	Limit    int
	Offset   int
}

type Page struct {
	Items []Gym `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int   `json:"total"`
}
