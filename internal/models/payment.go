package models

import "time"

// Payment methods and statuses accepted by the gateway integrations.
const (
	MethodPayHere = "PayHere"
	MethodStripe  = "Stripe"
	MethodWebXPay = "WebXPay"

	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment records a course purchase attempt.
type Payment struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user"`
	CourseID      string    `db:"course_id" json:"course"`
	Amount        float64   `db:"amount" json:"amount"`
	Method        string    `db:"method" json:"method"`
	Status        string    `db:"status" json:"status"`
	TransactionID *string   `db:"transaction_id" json:"transactionId,omitempty"`
	PaymentDate   time.Time `db:"payment_date" json:"paymentDate"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// PaymentDetail carries the user and course expansions, used both in list
// responses and on the printed receipt.
type PaymentDetail struct {
	Payment
	UserName    *string `db:"user_name" json:"userName,omitempty"`
	UserEmail   *string `db:"user_email" json:"userEmail,omitempty"`
	CourseTitle *string `db:"course_title" json:"courseTitle,omitempty"`
}

// PaymentFilter captures the filters accepted by the payment listing.
type PaymentFilter struct {
	UserID   string
	CourseID string
	Status   string
	Method   string
}
