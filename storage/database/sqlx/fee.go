package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/fee"
)

const feeColumns = `id, student_id, fee_type, amount, paid_amount, status, due_date, created_date, paid_date, payment_method, transaction_id`

type feeRepository struct {
	db *DB
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *DB) fee.Repository {
	return &feeRepository{db: db}
}

func (repo *feeRepository) selectFees(ctx context.Context, where string, args ...interface{}) ([]fee.Fee, error) {
	q := "SELECT " + feeColumns + " FROM fees"
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY id ASC"

	fees := make([]fee.Fee, 0)
	if err := repo.db.SelectContext(ctx, &fees, repo.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return fees, nil
}

func (repo *feeRepository) CreateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	q := repo.db.Rebind(`INSERT INTO fees
		(student_id, fee_type, amount, paid_amount, status, due_date, created_date, paid_date, payment_method, transaction_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	err := repo.db.QueryRowxContext(ctx, q,
		f.StudentID, f.FeeType, f.Amount, f.PaidAmount, f.Status, f.DueDate,
		f.CreatedDate.UTC(), f.PaidDate, f.PaymentMethod, f.TransactionID,
	).Scan(&f.ID)
	if err != nil {
		return fee.Fee{}, errors.Wrap(err, "inserting fee")
	}
	return f, nil
}

func (repo *feeRepository) QueryAllFees(ctx context.Context) ([]fee.Fee, error) {
	fees, err := repo.selectFees(ctx, "")
	return fees, errors.Wrap(err, "querying fees")
}

func (repo *feeRepository) GetFeeByID(ctx context.Context, id int) (fee.Fee, error) {
	var f fee.Fee
	q := repo.db.Rebind("SELECT " + feeColumns + " FROM fees WHERE id = ?")
	if err := repo.db.GetContext(ctx, &f, q, id); err != nil {
		return fee.Fee{}, trapNoRowsErr(err, fee.NotFound(id), "getting fee by id")
	}
	return f, nil
}

func (repo *feeRepository) FilterFeesByStudent(ctx context.Context, studentID int) ([]fee.Fee, error) {
	fees, err := repo.selectFees(ctx, "student_id = ?", studentID)
	return fees, errors.Wrap(err, "filtering fees by student")
}

func (repo *feeRepository) FilterFeesByStudentAndStatus(ctx context.Context, studentID int, status string) ([]fee.Fee, error) {
	fees, err := repo.selectFees(ctx, "student_id = ? AND status = ?", studentID, status)
	return fees, errors.Wrap(err, "filtering fees by student and status")
}

func (repo *feeRepository) FilterFeesByStatus(ctx context.Context, status string) ([]fee.Fee, error) {
	fees, err := repo.selectFees(ctx, "status = ?", status)
	return fees, errors.Wrap(err, "filtering fees by status")
}

func (repo *feeRepository) FilterFeesByType(ctx context.Context, feeType string) ([]fee.Fee, error) {
	fees, err := repo.selectFees(ctx, "fee_type = ?", feeType)
	return fees, errors.Wrap(err, "filtering fees by type")
}

func (repo *feeRepository) UpdateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	q := repo.db.Rebind("UPDATE fees SET fee_type = ?, amount = ?, due_date = ?, status = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, f.FeeType, f.Amount, f.DueDate, f.Status, f.ID)
	if err != nil {
		return fee.Fee{}, errors.Wrap(err, "updating fee")
	}
	if err = checkAffected(res, fee.NotFound(f.ID), "updating fee"); err != nil {
		return fee.Fee{}, err
	}
	return repo.GetFeeByID(ctx, f.ID)
}

// UpdateFeePayment locks the fee row on PostgreSQL. The update is also guarded on the paid amount read,
// so a payment saved in between makes it fail with fee.ErrConcurrentPayment instead of being lost.
func (repo *feeRepository) UpdateFeePayment(ctx context.Context, id int, pay func(f *fee.Fee) error) (fee.Fee, error) {
	var f fee.Fee
	err := repo.db.inTx(ctx, func(tx *sqlx.Tx) error {
		q := "SELECT " + feeColumns + " FROM fees WHERE id = ?"
		if repo.db.isPostgres() {
			q += " FOR UPDATE"
		}
		if err := tx.GetContext(ctx, &f, tx.Rebind(q), id); err != nil {
			return trapNoRowsErr(err, fee.NotFound(id), "getting fee for payment")
		}

		previouslyPaid := f.PaidAmount
		if err := pay(&f); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE fees SET
			paid_amount = ?, status = ?, paid_date = ?, payment_method = ?, transaction_id = ?
			WHERE id = ? AND paid_amount = ?`),
			f.PaidAmount, f.Status, f.PaidDate, f.PaymentMethod, f.TransactionID, id, previouslyPaid,
		)
		if err != nil {
			return errors.Wrap(err, "saving fee payment")
		}
		return checkAffected(res, fee.ErrConcurrentPayment, "saving fee payment")
	})
	if err != nil {
		return fee.Fee{}, err
	}
	return f, nil
}

func (repo *feeRepository) DeleteFee(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM fees WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting fee")
	}
	return checkAffected(res, fee.NotFound(id), "deleting fee")
}

// sum is rounded to cents: SQLite sums REAL columns as binary floats.
func (repo *feeRepository) sum(ctx context.Context, expr, where string, args ...interface{}) (decimal.Decimal, error) {
	var total decimal.Decimal
	q := repo.db.Rebind("SELECT COALESCE(SUM(" + expr + "), 0) FROM fees WHERE " + where)
	if err := repo.db.GetContext(ctx, &total, q, args...); err != nil {
		return decimal.Zero, err
	}
	return total.Round(core.MoneyPlaces), nil
}

func (repo *feeRepository) SumPaidAmounts(ctx context.Context, status string) (decimal.Decimal, error) {
	total, err := repo.sum(ctx, "paid_amount", "status = ?", status)
	return total, errors.Wrap(err, "summing paid amounts")
}

func (repo *feeRepository) SumRemainingAmounts(ctx context.Context, excludedStatus string) (decimal.Decimal, error) {
	total, err := repo.sum(ctx, "amount - paid_amount", "status <> ?", excludedStatus)
	return total, errors.Wrap(err, "summing remaining amounts")
}

func (repo *feeRepository) CountFeesByStatus(ctx context.Context, status string) (int, error) {
	var count int
	q := repo.db.Rebind("SELECT COUNT(*) FROM fees WHERE status = ?")
	if err := repo.db.GetContext(ctx, &count, q, status); err != nil {
		return 0, errors.Wrap(err, "counting fees by status")
	}
	return count, nil
}

func (repo *feeRepository) RecentPayments(ctx context.Context, limit int) ([]fee.Payment, error) {
	cols := strings.Split(feeColumns, ", ")
	for i, col := range cols {
		cols[i] = "f." + col
	}
	q := repo.db.Rebind(`SELECT ` + strings.Join(cols, ", ") + `, s.first_name || ' ' || s.last_name AS student_name
		FROM fees f JOIN students s ON s.id = f.student_id
		WHERE f.paid_date IS NOT NULL
		ORDER BY f.paid_date DESC, f.id DESC LIMIT ?`)

	payments := make([]fee.Payment, 0)
	if err := repo.db.SelectContext(ctx, &payments, q, limit); err != nil {
		return nil, errors.Wrap(err, "querying recent payments")
	}
	return payments, nil
}
