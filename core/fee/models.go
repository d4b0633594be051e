package fee

import (
	"encoding/json"
	"fmt"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

const (
	StatusPending       = "Pending"
	StatusPartiallyPaid = "Partially Paid"
	StatusPaid          = "Paid"
)

var Statuses = []string{StatusPending, StatusPartiallyPaid, StatusPaid}

type Fee struct {
	ID            int             `json:"id" db:"id"`
	StudentID     int             `json:"studentId" db:"student_id"`
	FeeType       string          `json:"feeType" db:"fee_type"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaidAmount    decimal.Decimal `json:"paidAmount" db:"paid_amount"`
	Status        string          `json:"status" db:"status"`
	DueDate       null.Time       `json:"dueDate" db:"due_date"`
	CreatedDate   time.Time       `json:"createdDate" db:"created_date"` // UTC
	PaidDate      null.Time       `json:"paidDate" db:"paid_date"`       // UTC
	PaymentMethod null.String     `json:"paymentMethod" db:"payment_method"`
	TransactionID null.String     `json:"transactionId" db:"transaction_id"`
}

// RemainingAmount is the amount still owed.
func (f Fee) RemainingAmount() decimal.Decimal {
	return f.Amount.Sub(f.PaidAmount)
}

func (f Fee) IsFullyPaid() bool {
	return f.PaidAmount.GreaterThanOrEqual(f.Amount)
}

func (f Fee) MarshalJSON() ([]byte, error) {
	type fee Fee // drops the MarshalJSON method
	return json.Marshal(struct {
		fee
		RemainingAmount decimal.Decimal `json:"remainingAmount"`
		FullyPaid       bool            `json:"fullyPaid"`
	}{
		fee:             fee(f),
		RemainingAmount: f.RemainingAmount(),
		FullyPaid:       f.IsFullyPaid(),
	})
}

// PaymentExceedsBalanceError reports a payment greater than the fee's remaining amount.
type PaymentExceedsBalanceError struct {
	Remaining decimal.Decimal
}

func (err PaymentExceedsBalanceError) Error() string {
	return fmt.Sprintf("Payment amount cannot exceed remaining amount: %s", err.Remaining.StringFixed(2))
}

// ApplyPayment records a payment of `amount` made with `method`.
// The fee is left untouched when `amount` exceeds the remaining amount.
// Status moves to Paid once the fee is fully paid, to Partially Paid otherwise.
func (f *Fee) ApplyPayment(amount decimal.Decimal, method, transactionID string, paidAt time.Time) error {
	if remaining := f.RemainingAmount(); amount.GreaterThan(remaining) {
		exErr := PaymentExceedsBalanceError{Remaining: remaining}
		return core.NewValidationError(exErr, core.FieldError{Field: "amount", Error: exErr.Error()})
	}

	f.PaidAmount = f.PaidAmount.Add(amount)
	f.PaymentMethod = null.StringFrom(method)
	f.TransactionID = null.StringFrom(transactionID)
	f.PaidDate = null.TimeFrom(paidAt.UTC())
	if f.IsFullyPaid() {
		f.Status = StatusPaid
	} else {
		f.Status = StatusPartiallyPaid
	}
	return nil
}

// Payment is a paid fee along with the name of the student who owes it.
type Payment struct {
	Fee
	StudentName string `db:"student_name"`
}

// NewFee contains information needed to create a new Fee.
type NewFee struct {
	StudentID int             `json:"studentId" validate:"required,gt=0"`
	FeeType   string          `json:"feeType" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required,gt=0,money"`
	DueDate   null.Time       `json:"dueDate"`
}

func (nf *NewFee) Validate(validate *validator.Validate, translator ut.Translator) error {
	nf.FeeType = core.CleanString(nf.FeeType)
	return core.ValidateStruct(validate, translator, nf)
}

// UpdateFee defines what information may be provided to modify an existing Fee.
// Paid amount and payment details can only change through payments. A blank Status keeps the current one.
type UpdateFee struct {
	FeeType string          `json:"feeType" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"required,gt=0,money"`
	DueDate null.Time       `json:"dueDate"`
	Status  string          `json:"status" validate:"omitempty,feestatus"`
}

func (uf *UpdateFee) Validate(validate *validator.Validate, translator ut.Translator) error {
	uf.FeeType = core.CleanString(uf.FeeType)
	uf.Status = core.CleanString(uf.Status)
	return core.ValidateStruct(validate, translator, uf)
}

type UpdateFeeStatus struct {
	Status string `json:"status" validate:"required,feestatus"`
}

func (us *UpdateFeeStatus) Validate(validate *validator.Validate, translator ut.Translator) error {
	us.Status = core.CleanString(us.Status)
	return core.ValidateStruct(validate, translator, us)
}

type PaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required,gt=0,money"`
	PaymentMethod string          `json:"paymentMethod" validate:"required,max=50"`
}

func (pr *PaymentRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	pr.PaymentMethod = core.CleanString(pr.PaymentMethod)
	return core.ValidateStruct(validate, translator, pr)
}
