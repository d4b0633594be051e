package fee

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

const entityName = "Fee"

// ErrConcurrentPayment is returned when the fee changed between reading and saving a payment.
var ErrConcurrentPayment = core.NewValidationError(errors.New("fee was modified by another payment, please retry"))

type (
	Repository interface {
		CreateFee(ctx context.Context, f Fee) (Fee, error)
		QueryAllFees(ctx context.Context) ([]Fee, error)
		GetFeeByID(ctx context.Context, id int) (Fee, error)
		FilterFeesByStudent(ctx context.Context, studentID int) ([]Fee, error)
		FilterFeesByStudentAndStatus(ctx context.Context, studentID int, status string) ([]Fee, error)
		FilterFeesByStatus(ctx context.Context, status string) ([]Fee, error)
		FilterFeesByType(ctx context.Context, feeType string) ([]Fee, error)
		// UpdateFee saves the fee type, amount, due date and status of `f`.
		UpdateFee(ctx context.Context, f Fee) (Fee, error)
		// UpdateFeePayment loads the fee, calls `pay` on it then saves its payment fields, all atomically.
		// Nothing is saved when `pay` fails.
		UpdateFeePayment(ctx context.Context, id int, pay func(f *Fee) error) (Fee, error)
		DeleteFee(ctx context.Context, id int) error
		// SumPaidAmounts sums the paid amounts of fees with the given status.
		SumPaidAmounts(ctx context.Context, status string) (decimal.Decimal, error)
		// SumRemainingAmounts sums the remaining amounts of all fees but those with the excluded status.
		SumRemainingAmounts(ctx context.Context, excludedStatus string) (decimal.Decimal, error)
		CountFeesByStatus(ctx context.Context, status string) (int, error)
		// RecentPayments returns the last `limit` paid fees, newest payment first.
		RecentPayments(ctx context.Context, limit int) ([]Payment, error)
	}

	// StudentFinder finds the students fees belong to.
	StudentFinder interface {
		GetByID(ctx context.Context, id int) (student.Student, error)
	}

	Service struct {
		repo     Repository
		students StudentFinder
		nowFunc  func() time.Time
		newTxID  func() string
	}
)

func NewService(repo Repository, students StudentFinder) *Service {
	return &Service{
		repo:     repo,
		students: students,
		nowFunc:  time.Now,
		newTxID:  func() string { return uuid.New().String() },
	}
}

func (svc *Service) Create(ctx context.Context, nf NewFee) (Fee, error) {
	if _, err := svc.students.GetByID(ctx, nf.StudentID); err != nil {
		if core.IsNotFound(err) {
			return Fee{}, core.NewValidationError(err, core.FieldError{Field: "studentId", Error: err.Error()})
		}
		return Fee{}, errors.Wrap(err, "finding student")
	}

	return svc.repo.CreateFee(ctx, Fee{
		StudentID:   nf.StudentID,
		FeeType:     nf.FeeType,
		Amount:      nf.Amount,
		PaidAmount:  decimal.Zero,
		Status:      StatusPending,
		DueDate:     nf.DueDate,
		CreatedDate: svc.nowFunc().UTC(),
	})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Fee, error) {
	return svc.repo.QueryAllFees(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Fee, error) {
	return svc.repo.GetFeeByID(ctx, id)
}

func (svc *Service) FilterByStudent(ctx context.Context, studentID int) ([]Fee, error) {
	return svc.repo.FilterFeesByStudent(ctx, studentID)
}

func (svc *Service) FilterPendingByStudent(ctx context.Context, studentID int) ([]Fee, error) {
	return svc.repo.FilterFeesByStudentAndStatus(ctx, studentID, StatusPending)
}

func (svc *Service) FilterByStatus(ctx context.Context, status string) ([]Fee, error) {
	return svc.repo.FilterFeesByStatus(ctx, status)
}

func (svc *Service) FilterByType(ctx context.Context, feeType string) ([]Fee, error) {
	return svc.repo.FilterFeesByType(ctx, feeType)
}

// Update overwrites the fee type, amount, due date and status.
// The status is saved as provided, it is not derived from the amounts.
func (svc *Service) Update(ctx context.Context, id int, uf UpdateFee) (Fee, error) {
	f, err := svc.repo.GetFeeByID(ctx, id)
	if err != nil {
		return Fee{}, err
	}

	f.FeeType = uf.FeeType
	f.Amount = uf.Amount
	f.DueDate = uf.DueDate
	if uf.Status != "" {
		f.Status = uf.Status
	}
	return svc.repo.UpdateFee(ctx, f)
}

func (svc *Service) UpdateStatus(ctx context.Context, id int, us UpdateFeeStatus) (Fee, error) {
	f, err := svc.repo.GetFeeByID(ctx, id)
	if err != nil {
		return Fee{}, err
	}
	f.Status = us.Status
	return svc.repo.UpdateFee(ctx, f)
}

// ProcessPayment applies a payment to the fee, see Fee.ApplyPayment.
func (svc *Service) ProcessPayment(ctx context.Context, id int, pr PaymentRequest) (Fee, error) {
	return svc.repo.UpdateFeePayment(ctx, id, func(f *Fee) error {
		return f.ApplyPayment(pr.Amount, pr.PaymentMethod, svc.newTxID(), svc.nowFunc())
	})
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteFee(ctx, id)
}

// TotalCollected sums the paid amounts of fully paid fees.
func (svc *Service) TotalCollected(ctx context.Context) (decimal.Decimal, error) {
	return svc.repo.SumPaidAmounts(ctx, StatusPaid)
}

// TotalPending sums what is still owed on fees that are not paid.
func (svc *Service) TotalPending(ctx context.Context) (decimal.Decimal, error) {
	return svc.repo.SumRemainingAmounts(ctx, StatusPaid)
}

func (svc *Service) CountPending(ctx context.Context) (int, error) {
	return svc.repo.CountFeesByStatus(ctx, StatusPending)
}

func (svc *Service) RecentPayments(ctx context.Context, limit int) ([]Payment, error) {
	return svc.repo.RecentPayments(ctx, limit)
}

// NotFound returns the error reported for a missing fee.
func NotFound(id int) error {
	return core.NewNotFoundError(entityName, "id", id)
}
