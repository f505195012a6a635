package payment

import "time"

// Intent statuses reported by the gateway.
const (
	StatusSucceeded             = "succeeded"
	StatusProcessing            = "processing"
	StatusRequiresPaymentMethod = "requires_payment_method"
	StatusRequiresConfirmation  = "requires_confirmation"
	StatusCanceled              = "canceled"
)

type Intent struct {
	ID            string `json:"id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	ClientSecret  string `json:"client_secret"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

func (i *Intent) Succeeded() bool {
	return i.Status == StatusSucceeded
}

type Refund struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
}

type IntentParams struct {
	Amount          int64
	Currency        string
	PaymentMethodID string
	// Confirm charges the payment method in the same call.
	Confirm        bool
	IdempotencyKey string
	Metadata       map[string]string
}

type createIntentRequest struct {
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	Confirm       bool              `json:"confirm"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type refundRequest struct {
	PaymentIntent string `json:"payment_intent"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type Kind string

const (
	KindCharge Kind = "charge"
	KindRefund Kind = "refund"
	KindCancel Kind = "cancel"
)

// Record is one gateway side effect kept for auditing.
type Record struct {
	ID             int       `db:"id" json:"id"`
	BookingID      *int      `db:"booking_id" json:"booking_id"`
	IntentID       string    `db:"intent_id" json:"intent_id"`
	Kind           Kind      `db:"kind" json:"kind"`
	Amount         int64     `db:"amount" json:"amount"`
	Currency       string    `db:"currency" json:"currency"`
	Status         string    `db:"status" json:"status"`
	IdempotencyKey string    `db:"idempotency_key" json:"idempotency_key"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
