package booking

import (
	"time"

	"gymhub/internal/gym"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

const dateLayout = "2006-01-02"

// Payment path labels used in metrics.
const (
	pathDirect   = "direct"
	pathTwoPhase = "two_phase"
)

type Booking struct {
	ID              int        `db:"id" json:"id"`
	UserID          int        `db:"user_id" json:"user_id"`
	GymID           int        `db:"gym_id" json:"gym_id"`
	SlotID          int        `db:"slot_id" json:"slot_id"`
	Plan            gym.Plan   `db:"plan" json:"plan"`
	StartDate       time.Time  `db:"start_date" json:"start_date"`
	EndDate         time.Time  `db:"end_date" json:"end_date"`
	Amount          int64      `db:"amount" json:"amount"`
	Currency        string     `db:"currency" json:"currency"`
	Status          Status     `db:"status" json:"status"`
	PaymentIntentID string     `db:"payment_intent_id" json:"payment_intent_id"`
	IdempotencyKey  string     `db:"idempotency_key" json:"-"`
	SlotConsumed    bool       `db:"slot_consumed" json:"slot_consumed"`
	CancelledAt     *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// EndDate is the last covered day for a plan starting on start.
func EndDate(plan gym.Plan, start time.Time) time.Time {
	switch plan {
	case gym.PlanPerWeek:
		return start.AddDate(0, 0, 7)
	case gym.PlanPerMonth:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

type CreateBookingRequest struct {
	Plan            string `json:"plan" binding:"required,oneof=perDay perWeek perMonth"`
	StartDate       string `json:"startDate" binding:"required,datetime=2006-01-02"`
	PaymentMethodID string `json:"paymentMethodId" binding:"required"`
}

type PaymentIntentRequest struct {
	Plan            string `json:"plan" binding:"required,oneof=perDay perWeek perMonth"`
	StartDate       string `json:"startDate" binding:"required,datetime=2006-01-02"`
	PaymentMethodID string `json:"paymentMethodId"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
}

type PaymentIntentResponse struct {
	Booking      *Booking `json:"booking"`
	ClientSecret string   `json:"clientSecret"`
}

type StatsByDay struct {
	Bucket            string `db:"bucket" json:"bucket"`
	BookingsCreated   int    `db:"bookings_created" json:"bookings_created"`
	BookingsConfirmed int    `db:"bookings_confirmed" json:"bookings_confirmed"`
	BookingsCancelled int    `db:"bookings_cancelled" json:"bookings_cancelled"`
}

type StatsByGym struct {
	GymID             int    `db:"gym_id" json:"gym_id"`
	GymName           string `db:"gym_name" json:"gym_name"`
	Currency          string `db:"currency" json:"currency"`
	BookingsCreated   int    `db:"bookings_created" json:"bookings_created"`
	BookingsConfirmed int    `db:"bookings_confirmed" json:"bookings_confirmed"`
	BookingsCancelled int    `db:"bookings_cancelled" json:"bookings_cancelled"`
	Revenue           int64  `db:"revenue" json:"revenue"`
}
