package notify

import (
	"context"
	"fmt"
	"time"

	"gymhub/internal/logger"
)

const EventBookingCancelled = "booking.cancelled"

// BookingNotice is what a booking notification needs to know.
type BookingNotice struct {
	BookingID   int        `json:"booking_id"`
	UserID      int        `json:"user_id"`
	UserEmail   string     `json:"-"`
	UserName    string     `json:"-"`
	GymID       int        `json:"gym_id"`
	GymName     string     `json:"gym_name"`
	SlotID      int        `json:"slot_id"`
	Plan        string     `json:"plan"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	Amount      int64      `json:"amount"`
	Currency    string     `json:"currency"`
	Refunded    bool       `json:"refunded"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func (s *Service) BookingConfirmed(ctx context.Context, n BookingNotice) error {
	subject := "Booking Confirmed - " + n.GymName
	body := fmt.Sprintf(`Hi %s,

Your booking is confirmed!

Gym: %s
Plan: %s
Valid: %s to %s
Paid: %s

See you at the gym!

- GymHub Team`, n.UserName, n.GymName, n.Plan,
		n.StartDate.Format("Jan 2, 2006"), n.EndDate.Format("Jan 2, 2006"),
		formatAmount(n.Amount, n.Currency))

	return s.SendEmail(ctx, n.UserEmail, n.UserName, subject, body)
}

// BookingCancelled publishes the booking.cancelled event and emails the user.
// Both are attempted even when one of them fails. The email is skipped when
// the user's address is unknown.
func (s *Service) BookingCancelled(ctx context.Context, n BookingNotice) error {
	pubErr := s.Publish(ctx, EventBookingCancelled, n)
	if pubErr != nil {
		logger.Error("failed to publish cancellation event", "booking_id", n.BookingID, "error", pubErr)
	}
	if n.UserEmail == "" {
		logger.Warn("no email address for cancelled booking", "booking_id", n.BookingID, "user_id", n.UserID)
		return pubErr
	}

	refund := "No payment was taken."
	if n.Refunded {
		refund = fmt.Sprintf("A refund of %s is on its way.", formatAmount(n.Amount, n.Currency))
	}

	subject := "Booking Cancelled - " + n.GymName
	body := fmt.Sprintf(`Hi %s,

Your booking has been cancelled:

Gym: %s
Plan: %s
Start: %s

%s

- GymHub Team`, n.UserName, n.GymName, n.Plan, n.StartDate.Format("Jan 2, 2006"), refund)

	if err := s.SendEmail(ctx, n.UserEmail, n.UserName, subject, body); err != nil {
		return err
	}
	return pubErr
}

func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", minor/100, minor%100, currency)
}
