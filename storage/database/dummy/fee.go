package dummydb

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core/fee"
)

type feeRepository struct {
	db *DB
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *DB) fee.Repository {
	return &feeRepository{db: db}
}

func (repo *feeRepository) query(keep func(f fee.Fee) bool) []fee.Fee {
	fees := make([]fee.Fee, 0, len(repo.db.fees))
	for _, f := range repo.db.fees {
		if keep == nil || keep(*f) {
			fees = append(fees, *f)
		}
	}
	sort.Slice(fees, func(i, j int) bool { return fees[i].ID < fees[j].ID })
	return fees
}

func (repo *feeRepository) CreateFee(_ context.Context, f fee.Fee) (fee.Fee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	f.ID = repo.db.nextPK("fees")
	repo.db.fees[f.ID] = &f
	return f, nil
}

func (repo *feeRepository) QueryAllFees(context.Context) ([]fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(nil), nil
}

func (repo *feeRepository) GetFeeByID(_ context.Context, id int) (fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if f, ok := repo.db.fees[id]; ok {
		return *f, nil
	}
	return fee.Fee{}, fee.NotFound(id)
}

func (repo *feeRepository) FilterFeesByStudent(_ context.Context, studentID int) ([]fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(f fee.Fee) bool { return f.StudentID == studentID }), nil
}

func (repo *feeRepository) FilterFeesByStudentAndStatus(_ context.Context, studentID int, status string) ([]fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(f fee.Fee) bool { return f.StudentID == studentID && f.Status == status }), nil
}

func (repo *feeRepository) FilterFeesByStatus(_ context.Context, status string) ([]fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(f fee.Fee) bool { return f.Status == status }), nil
}

func (repo *feeRepository) FilterFeesByType(_ context.Context, feeType string) ([]fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(f fee.Fee) bool { return f.FeeType == feeType }), nil
}

func (repo *feeRepository) UpdateFee(_ context.Context, f fee.Fee) (fee.Fee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	current, ok := repo.db.fees[f.ID]
	if !ok {
		return fee.Fee{}, fee.NotFound(f.ID)
	}
	current.FeeType = f.FeeType
	current.Amount = f.Amount
	current.DueDate = f.DueDate
	current.Status = f.Status
	return *current, nil
}

func (repo *feeRepository) UpdateFeePayment(_ context.Context, id int, pay func(f *fee.Fee) error) (fee.Fee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	current, ok := repo.db.fees[id]
	if !ok {
		return fee.Fee{}, fee.NotFound(id)
	}
	f := *current
	if err := pay(&f); err != nil {
		return fee.Fee{}, err
	}
	repo.db.fees[id] = &f
	return f, nil
}

func (repo *feeRepository) DeleteFee(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.fees[id]; !ok {
		return fee.NotFound(id)
	}
	delete(repo.db.fees, id)
	return nil
}

func (repo *feeRepository) SumPaidAmounts(_ context.Context, status string) (decimal.Decimal, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	total := decimal.Zero
	for _, f := range repo.db.fees {
		if f.Status == status {
			total = total.Add(f.PaidAmount)
		}
	}
	return total, nil
}

func (repo *feeRepository) SumRemainingAmounts(_ context.Context, excludedStatus string) (decimal.Decimal, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	total := decimal.Zero
	for _, f := range repo.db.fees {
		if f.Status != excludedStatus {
			total = total.Add(f.RemainingAmount())
		}
	}
	return total, nil
}

func (repo *feeRepository) CountFeesByStatus(ctx context.Context, status string) (int, error) {
	fees, err := repo.FilterFeesByStatus(ctx, status)
	return len(fees), err
}

func (repo *feeRepository) RecentPayments(_ context.Context, limit int) ([]fee.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	fees := repo.query(func(f fee.Fee) bool { return f.PaidDate.Valid })
	sort.SliceStable(fees, func(i, j int) bool {
		if fees[i].PaidDate.Time.Equal(fees[j].PaidDate.Time) {
			return fees[i].ID > fees[j].ID
		}
		return fees[i].PaidDate.Time.After(fees[j].PaidDate.Time)
	})
	if len(fees) > limit {
		fees = fees[:limit]
	}

	payments := make([]fee.Payment, 0, len(fees))
	for _, f := range fees {
		p := fee.Payment{Fee: f}
		if st, ok := repo.db.students[f.StudentID]; ok {
			p.StudentName = st.FullName()
		}
		payments = append(payments, p)
	}
	return payments, nil
}
