package booking

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gymhub/internal/auth"
	"gymhub/internal/gym"
	"gymhub/internal/logger"
	"gymhub/internal/metrics"
	"gymhub/internal/notify"
	"gymhub/internal/payment"
	"gymhub/internal/slot"
	"gymhub/internal/user"

	"github.com/google/uuid"
)

var (
	ErrNotBookingOwner      = errors.New("booking belongs to another user")
	ErrPaymentNotSuccessful = errors.New("payment not successful")
	ErrIntentMismatch       = errors.New("payment intent does not match booking")
	ErrSlotClosed           = errors.New("slot is closed")
	ErrInvalidStartDate     = errors.New("invalid start date")
	ErrStartDateInPast      = errors.New("start date is in the past")
	ErrSlotInPast           = errors.New("slot date is in the past")
	ErrStartDateMismatch    = errors.New("start date does not match slot date")
	ErrInvalidGroupBy       = errors.New("invalid group by")
)

type SlotStore interface {
	GetByID(ctx context.Context, id int) (*slot.Slot, error)
	Reserve(ctx context.Context, id int) error
	Release(ctx context.Context, id int) error
}

type GymStore interface {
	GetByID(ctx context.Context, id int) (*gym.Gym, error)
	IsOwnedBy(ctx context.Context, id, ownerID int) (bool, error)
}

type UserReader interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type Notifier interface {
	BookingConfirmed(ctx context.Context, n notify.BookingNotice) error
	BookingCancelled(ctx context.Context, n notify.BookingNotice) error
}

type Service interface {
	Create(ctx context.Context, userID, slotID int, req CreateBookingRequest, idempotencyKey string) (*Booking, error)
	CreatePaymentIntent(ctx context.Context, userID, slotID int, req PaymentIntentRequest) (*PaymentIntentResponse, error)
	ConfirmPayment(ctx context.Context, userID, bookingID int, req ConfirmPaymentRequest) (*Booking, error)
	Cancel(ctx context.Context, userID, bookingID int) (*Booking, error)
	ListMine(ctx context.Context, userID int) ([]Booking, error)
	Get(ctx context.Context, who auth.Identity, id int) (*Booking, error)
	ListByGym(ctx context.Context, who auth.Identity, gymID int) ([]Booking, error)
	Payments(ctx context.Context, who auth.Identity, id int) ([]payment.Record, error)
	Analytics(ctx context.Context, groupBy string, from, to time.Time) (interface{}, error)
}

type Deps struct {
	Repo     Repository
	Slots    SlotStore
	Gyms     GymStore
	Users    UserReader
	Gateway  payment.Gateway
	Ledger   payment.Ledger
	Notifier Notifier
	Timeout  time.Duration
}

type service struct {
	repo     Repository
	slots    SlotStore
	gyms     GymStore
	users    UserReader
	gateway  payment.Gateway
	ledger   payment.Ledger
	notifier Notifier
	timeout  time.Duration
	now      func() time.Time
}

func NewService(d Deps) Service {
	return &service{
		repo:     d.Repo,
		slots:    d.Slots,
		gyms:     d.Gyms,
		users:    d.Users,
		gateway:  d.Gateway,
		ledger:   d.Ledger,
		notifier: d.Notifier,
		timeout:  d.Timeout,
		now:      time.Now,
	}
}

// db bounds a persistence call. Gateway calls carry their own timeout.
func (s *service) db(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// quote is the priced, validated input shared by both booking paths.
type quote struct {
	slot      *slot.Slot
	gym       *gym.Gym
	plan      gym.Plan
	startDate time.Time
	endDate   time.Time
	amount    int64
}

func (s *service) quote(ctx context.Context, slotID int, planName, startDate string) (*quote, error) {
	dctx, cancel := s.db(ctx)
	defer cancel()

	sl, err := s.slots.GetByID(dctx, slotID)
	if err != nil {
		return nil, err
	}

	g, err := s.gyms.GetByID(dctx, sl.GymID)
	if err != nil {
		return nil, err
	}

	plan := gym.Plan(planName)
	amount, err := g.Price(plan)
	if err != nil {
		return nil, err
	}

	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, ErrInvalidStartDate
	}
	today := day(s.now())
	if day(sl.Date).Before(today) {
		return nil, ErrSlotInPast
	}
	if start.Before(today) {
		return nil, ErrStartDateInPast
	}
	// A plan's coverage starts on the day of the slot it consumes.
	if !start.Equal(day(sl.Date)) {
		return nil, ErrStartDateMismatch
	}

	if sl.Closed {
		return nil, ErrSlotClosed
	}
	if sl.Available <= 0 {
		metrics.RecordSlotFull()
		return nil, slot.ErrSlotFull
	}

	return &quote{
		slot:      sl,
		gym:       g,
		plan:      plan,
		startDate: start,
		endDate:   EndDate(plan, start),
		amount:    amount,
	}, nil
}

// day drops the clock part, keeping the calendar date as seen in UTC.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create books a slot in one call: reserve a spot, charge, persist. Each
// step undoes the previous ones when it fails. A repeated idempotency key
// returns the booking it already produced.
func (s *service) Create(ctx context.Context, userID, slotID int, req CreateBookingRequest, idempotencyKey string) (*Booking, error) {
	if idempotencyKey != "" {
		existing, err := s.findByKey(ctx, userID, idempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrBookingNotFound) {
			return nil, err
		}
	} else {
		idempotencyKey = uuid.NewString()
	}

	q, err := s.quote(ctx, slotID, req.Plan, req.StartDate)
	if err != nil {
		return nil, err
	}

	if err := s.reserve(ctx, q.slot.ID); err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, payment.IntentParams{
		Amount:          q.amount,
		Currency:        q.gym.Currency,
		PaymentMethodID: req.PaymentMethodID,
		Confirm:         true,
		IdempotencyKey:  idempotencyKey,
		Metadata:        intentMetadata(userID, q),
	})
	if err != nil {
		s.releaseSpot(ctx, q.slot.ID)
		return nil, err
	}
	if !intent.Succeeded() {
		s.cancelIntent(ctx, intent.ID, idempotencyKey)
		s.releaseSpot(ctx, q.slot.ID)
		return nil, ErrPaymentNotSuccessful
	}

	dctx, cancel := s.db(ctx)
	b, err := s.repo.Create(dctx, &Booking{
		UserID:          userID,
		GymID:           q.gym.ID,
		SlotID:          q.slot.ID,
		Plan:            q.plan,
		StartDate:       q.startDate,
		EndDate:         q.endDate,
		Amount:          q.amount,
		Currency:        q.gym.Currency,
		Status:          StatusConfirmed,
		PaymentIntentID: intent.ID,
		IdempotencyKey:  idempotencyKey,
		SlotConsumed:    true,
	})
	cancel()
	if errors.Is(err, ErrDuplicateBooking) {
		// A concurrent request with the same key won; the gateway returned
		// the same intent, so only the extra spot is given back.
		s.releaseSpot(ctx, q.slot.ID)
		return s.findByKey(ctx, userID, idempotencyKey)
	}
	if err != nil {
		s.refund(ctx, nil, intent.ID, q.amount, q.gym.Currency, idempotencyKey, "compensation")
		s.releaseSpot(ctx, q.slot.ID)
		return nil, err
	}

	s.record(ctx, b, payment.KindCharge, intent.Status, idempotencyKey)
	metrics.RecordBooking(string(StatusConfirmed), pathDirect)
	s.notifyConfirmed(ctx, b, q.gym.Name)

	return b, nil
}

// CreatePaymentIntent starts the two-phase path. The booking stays pending
// and holds no spot until it is confirmed.
func (s *service) CreatePaymentIntent(ctx context.Context, userID, slotID int, req PaymentIntentRequest) (*PaymentIntentResponse, error) {
	q, err := s.quote(ctx, slotID, req.Plan, req.StartDate)
	if err != nil {
		return nil, err
	}

	key := uuid.NewString()
	intent, err := s.gateway.CreateIntent(ctx, payment.IntentParams{
		Amount:          q.amount,
		Currency:        q.gym.Currency,
		PaymentMethodID: req.PaymentMethodID,
		IdempotencyKey:  key,
		Metadata:        intentMetadata(userID, q),
	})
	if err != nil {
		return nil, err
	}

	dctx, cancel := s.db(ctx)
	defer cancel()

	b, err := s.repo.Create(dctx, &Booking{
		UserID:          userID,
		GymID:           q.gym.ID,
		SlotID:          q.slot.ID,
		Plan:            q.plan,
		StartDate:       q.startDate,
		EndDate:         q.endDate,
		Amount:          q.amount,
		Currency:        q.gym.Currency,
		Status:          StatusPending,
		PaymentIntentID: intent.ID,
		IdempotencyKey:  key,
	})
	if err != nil {
		s.cancelIntent(ctx, intent.ID, key)
		return nil, err
	}

	metrics.RecordBooking(string(StatusPending), pathTwoPhase)
	return &PaymentIntentResponse{Booking: b, ClientSecret: intent.ClientSecret}, nil
}

// ConfirmPayment confirms a pending booking whose intent succeeded. When the
// slot filled up in the meantime the booking is cancelled and refunded.
func (s *service) ConfirmPayment(ctx context.Context, userID, bookingID int, req ConfirmPaymentRequest) (*Booking, error) {
	b, err := s.ownBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if req.PaymentIntentID != b.PaymentIntentID {
		return nil, ErrIntentMismatch
	}
	if b.Status != StatusPending {
		return nil, ErrNotPending
	}

	intent, err := s.gateway.GetIntent(ctx, b.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if !intent.Succeeded() {
		return nil, ErrPaymentNotSuccessful
	}

	dctx, cancel := s.db(ctx)
	err = s.repo.Confirm(dctx, b.ID, b.SlotID)
	cancel()
	if errors.Is(err, slot.ErrSlotFull) {
		metrics.RecordSlotFull()
		s.rejectFull(ctx, b)
		return nil, slot.ErrSlotFull
	}
	if err != nil {
		return nil, err
	}

	s.record(ctx, b, payment.KindCharge, intent.Status, b.IdempotencyKey)
	metrics.RecordBooking(string(StatusConfirmed), pathTwoPhase)

	dctx, cancel = s.db(ctx)
	defer cancel()
	confirmed, err := s.repo.GetByID(dctx, b.ID)
	if err != nil {
		return nil, err
	}

	s.notifyConfirmed(ctx, confirmed, "")
	return confirmed, nil
}

// rejectFull cancels a pending booking that lost the race for the last spot
// and gives the captured money back.
func (s *service) rejectFull(ctx context.Context, b *Booking) {
	ctx = context.WithoutCancel(ctx)

	dctx, cancel := s.db(ctx)
	_, err := s.repo.Cancel(dctx, b.ID)
	cancel()
	if err != nil && !errors.Is(err, ErrAlreadyCancelled) {
		logger.Error("failed to cancel booking on full slot", "booking_id", b.ID, "error", err)
	}

	s.refund(ctx, &b.ID, b.PaymentIntentID, b.Amount, b.Currency, b.IdempotencyKey, "slot_full")
}

// Cancel refunds or voids the payment, then cancels the booking and gives its
// spot back in one transaction.
func (s *service) Cancel(ctx context.Context, userID, bookingID int) (*Booking, error) {
	b, err := s.ownBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	refunded := false
	if b.PaymentIntentID != "" {
		switch b.Status {
		case StatusConfirmed:
			if err := s.refundOrFail(ctx, b, "cancellation"); err != nil {
				return nil, err
			}
			refunded = true
		case StatusPending:
			refunded, err = s.voidPending(ctx, b)
			if err != nil {
				return nil, err
			}
		}
	}

	dctx, cancel := s.db(ctx)
	cancelled, err := s.repo.Cancel(dctx, b.ID)
	cancel()
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingCancellation()
	s.notifyCancelled(ctx, cancelled, refunded)

	return cancelled, nil
}

// voidPending cancels the intent of a pending booking. An intent that was
// already captured cannot be cancelled and is refunded instead.
func (s *service) voidPending(ctx context.Context, b *Booking) (bool, error) {
	intent, err := s.gateway.CancelIntent(ctx, b.PaymentIntentID, "cancel-"+b.IdempotencyKey)
	if err == nil {
		s.record(ctx, b, payment.KindCancel, intent.Status, "cancel-"+b.IdempotencyKey)
		return false, nil
	}

	var gwErr *payment.GatewayError
	if !errors.As(err, &gwErr) || !gwErr.ClientError() {
		return false, err
	}

	current, getErr := s.gateway.GetIntent(ctx, b.PaymentIntentID)
	if getErr != nil || !current.Succeeded() {
		return false, err
	}

	if err := s.refundOrFail(ctx, b, "cancellation"); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) refundOrFail(ctx context.Context, b *Booking, reason string) error {
	key := "refund-" + b.IdempotencyKey
	refund, err := s.gateway.Refund(ctx, b.PaymentIntentID, key)
	if err != nil {
		return err
	}

	metrics.RecordRefund(reason)
	s.record(ctx, b, payment.KindRefund, refund.Status, key)
	return nil
}

func (s *service) ListMine(ctx context.Context, userID int) ([]Booking, error) {
	ctx, cancel := s.db(ctx)
	defer cancel()

	return s.repo.ListByUser(ctx, userID)
}

// Get lets the booking's user, the gym's owner and admins read a booking.
func (s *service) Get(ctx context.Context, who auth.Identity, id int) (*Booking, error) {
	ctx, cancel := s.db(ctx)
	defer cancel()

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.UserID == who.UserID || who.IsAdmin() {
		return b, nil
	}

	owns, err := s.gyms.IsOwnedBy(ctx, b.GymID, who.UserID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, ErrNotBookingOwner
	}
	return b, nil
}

func (s *service) ListByGym(ctx context.Context, who auth.Identity, gymID int) ([]Booking, error) {
	ctx, cancel := s.db(ctx)
	defer cancel()

	ownerID := who.UserID
	if who.IsAdmin() {
		ownerID = gym.AnyOwner
	}

	owns, err := s.gyms.IsOwnedBy(ctx, gymID, ownerID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, gym.ErrGymNotFound
	}

	return s.repo.ListByGym(ctx, gymID)
}

func (s *service) Payments(ctx context.Context, who auth.Identity, id int) ([]payment.Record, error) {
	b, err := s.Get(ctx, who, id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.db(ctx)
	defer cancel()

	return s.ledger.ListByBooking(ctx, b.ID)
}

func (s *service) Analytics(ctx context.Context, groupBy string, from, to time.Time) (interface{}, error) {
	ctx, cancel := s.db(ctx)
	defer cancel()

	switch groupBy {
	case "", "day":
		return s.repo.StatsByDay(ctx, from, to)
	case "gym":
		return s.repo.StatsByGym(ctx, from, to)
	}
	return nil, ErrInvalidGroupBy
}

func (s *service) ownBooking(ctx context.Context, userID, bookingID int) (*Booking, error) {
	ctx, cancel := s.db(ctx)
	defer cancel()

	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrNotBookingOwner
	}
	return b, nil
}

func (s *service) findByKey(ctx context.Context, userID int, key string) (*Booking, error) {
	ctx, cancel := s.db(ctx)
	defer cancel()

	b, err := s.repo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrDuplicateBooking
	}
	return b, nil
}

func (s *service) reserve(ctx context.Context, slotID int) error {
	ctx, cancel := s.db(ctx)
	defer cancel()

	err := s.slots.Reserve(ctx, slotID)
	if errors.Is(err, slot.ErrSlotFull) {
		metrics.RecordSlotFull()
	}
	return err
}

func (s *service) releaseSpot(ctx context.Context, slotID int) {
	ctx, cancel := s.db(context.WithoutCancel(ctx))
	defer cancel()

	if err := s.slots.Release(ctx, slotID); err != nil {
		logger.Error("failed to release slot spot", "slot_id", slotID, "error", err)
	}
}

func (s *service) cancelIntent(ctx context.Context, intentID, key string) {
	if _, err := s.gateway.CancelIntent(context.WithoutCancel(ctx), intentID, "cancel-"+key); err != nil {
		logger.Error("failed to cancel payment intent", "intent_id", intentID, "error", err)
	}
}

// refund is the best-effort compensation path: failures are logged with
// enough detail to settle by hand.
func (s *service) refund(ctx context.Context, bookingID *int, intentID string, amount int64, currency, key, reason string) {
	ctx = context.WithoutCancel(ctx)
	refundKey := "refund-" + key

	refund, err := s.gateway.Refund(ctx, intentID, refundKey)
	if err != nil {
		logger.Error("compensating refund failed",
			"intent_id", intentID, "amount", amount, "currency", currency, "reason", reason, "error", err)
		return
	}

	metrics.RecordRefund(reason)

	dctx, cancel := s.db(ctx)
	defer cancel()
	if _, err := s.ledger.Record(dctx, payment.Record{
		BookingID:      bookingID,
		IntentID:       intentID,
		Kind:           payment.KindRefund,
		Amount:         amount,
		Currency:       currency,
		Status:         refund.Status,
		IdempotencyKey: refundKey,
	}); err != nil {
		logger.Error("failed to record refund", "intent_id", intentID, "error", err)
	}
}

func (s *service) record(ctx context.Context, b *Booking, kind payment.Kind, status, key string) {
	ctx, cancel := s.db(context.WithoutCancel(ctx))
	defer cancel()

	id := b.ID
	if _, err := s.ledger.Record(ctx, payment.Record{
		BookingID:      &id,
		IntentID:       b.PaymentIntentID,
		Kind:           kind,
		Amount:         b.Amount,
		Currency:       b.Currency,
		Status:         status,
		IdempotencyKey: key,
	}); err != nil {
		logger.Error("failed to record payment", "booking_id", b.ID, "kind", kind, "error", err)
	}
}

func (s *service) notice(ctx context.Context, b *Booking, gymName string) notify.BookingNotice {
	n := notify.BookingNotice{
		BookingID:   b.ID,
		UserID:      b.UserID,
		GymID:       b.GymID,
		GymName:     gymName,
		SlotID:      b.SlotID,
		Plan:        string(b.Plan),
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		Amount:      b.Amount,
		Currency:    b.Currency,
		CancelledAt: b.CancelledAt,
	}

	ctx, cancel := s.db(ctx)
	defer cancel()

	if u, err := s.users.FindByID(ctx, b.UserID); err == nil {
		n.UserEmail = u.Email
		n.UserName = u.Name
	}
	if n.GymName == "" {
		if g, err := s.gyms.GetByID(ctx, b.GymID); err == nil {
			n.GymName = g.Name
		}
	}
	return n
}

func (s *service) notifyConfirmed(ctx context.Context, b *Booking, gymName string) {
	n := s.notice(ctx, b, gymName)
	if n.UserEmail == "" {
		return
	}
	if err := s.notifier.BookingConfirmed(ctx, n); err != nil {
		logger.Warn("failed to queue booking confirmation", "booking_id", b.ID, "error", err)
	}
}

func (s *service) notifyCancelled(ctx context.Context, b *Booking, refunded bool) {
	n := s.notice(ctx, b, "")
	n.Refunded = refunded
	if err := s.notifier.BookingCancelled(ctx, n); err != nil {
		logger.Warn("failed to queue booking cancellation", "booking_id", b.ID, "error", err)
	}
}

func intentMetadata(userID int, q *quote) map[string]string {
	return map[string]string{
		"user_id": strconv.Itoa(userID),
		"gym_id":  strconv.Itoa(q.gym.ID),
		"slot_id": strconv.Itoa(q.slot.ID),
		"plan":    string(q.plan),
	}
}
