package sqlxrepos_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/inquiry"
	"github.com/trezcool/shule/core/student"
	sqlxrepos "github.com/trezcool/shule/storage/database/sqlx"
	testutil "github.com/trezcool/shule/tests"
)

type repos struct {
	students  student.Repository
	fees      fee.Repository
	inquiries inquiry.Repository
}

func setup(t *testing.T) repos {
	db := sqlxrepos.NewDB(testutil.PrepareDB(t))
	return repos{
		students:  sqlxrepos.NewStudentRepository(db),
		fees:      sqlxrepos.NewFeeRepository(db),
		inquiries: sqlxrepos.NewInquiryRepository(db),
	}
}

func studentIDs(students []student.Student) []int {
	ids := make([]int, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}
	return ids
}

func TestStudentRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	john := testutil.CreateStudent(t, r.students, "John", "Doe", "john_doe@example.com", "Computer Science", student.StatusActive, now.Add(-time.Hour))
	jane := testutil.CreateStudent(t, r.students, "Jane", "Smith", "jane@example.com", "Business", student.StatusActive, now)
	alex := testutil.CreateStudent(t, r.students, "Alex", "Johnson", "alex@example.com", "Computer Science", student.StatusInactive, now.AddDate(0, -2, 0))

	t.Run("get", func(t *testing.T) {
		st, err := r.students.GetStudentByID(ctx, jane.ID)
		require.NoError(t, err)
		assert.Equal(t, jane, st)

		st, err = r.students.GetStudentByEmail(ctx, "john_doe@example.com")
		require.NoError(t, err)
		assert.Equal(t, john.ID, st.ID)

		_, err = r.students.GetStudentByID(ctx, 999)
		assert.EqualError(t, err, "Student not found with id: 999")
		_, err = r.students.GetStudentByEmail(ctx, "nobody@example.com")
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("unique email", func(t *testing.T) {
		var vErr *core.ValidationError

		_, err := r.students.CreateStudent(ctx, student.Student{
			FirstName: "Other", LastName: "John", Email: "jane@example.com",
			EnrollmentDate: now, Status: student.StatusActive,
		})
		require.Error(t, err)
		assert.Equal(t, "Student with email jane@example.com already exists", err.Error())
		assert.True(t, errors.As(err, &vErr))

		taken := john
		taken.Email = "alex@example.com"
		_, err = r.students.UpdateStudent(ctx, taken)
		require.Error(t, err)
		assert.Equal(t, "Student with email alex@example.com already exists", err.Error())
		assert.True(t, errors.As(err, &vErr))
	})

	t.Run("search", func(t *testing.T) {
		tests := []struct {
			term string
			want []int
		}{
			{term: "john", want: []int{john.ID, alex.ID}},
			{term: "SCIENCE", want: []int{john.ID, alex.ID}},
			{term: "n_d", want: []int{john.ID}},
			{term: "_", want: []int{john.ID}},
			{term: "%", want: []int{}},
			{term: "", want: []int{john.ID, jane.ID, alex.ID}},
		}
		for _, tc := range tests {
			students, err := r.students.SearchStudents(ctx, tc.term)
			require.NoError(t, err)
			assert.Equal(t, tc.want, studentIDs(students), "term %q", tc.term)
		}
	})

	t.Run("ordering", func(t *testing.T) {
		students, err := r.students.QueryAllStudents(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{john.ID, jane.ID, alex.ID}, studentIDs(students))

		students, err = r.students.QueryAllStudents(ctx, []core.DBOrdering{{Field: "status", Ascending: false}, {Field: "lastName", Ascending: true}})
		require.NoError(t, err)
		assert.Equal(t, []int{alex.ID, john.ID, jane.ID}, studentIDs(students))

		students, err = r.students.QueryAllStudents(ctx, []core.DBOrdering{{Field: "enrollmentDate", Ascending: true}})
		require.NoError(t, err)
		assert.Equal(t, []int{alex.ID, john.ID, jane.ID}, studentIDs(students))
	})

	t.Run("counts", func(t *testing.T) {
		count, err := r.students.CountStudentsByStatus(ctx, student.StatusActive)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		count, err = r.students.CountStudentsEnrolledBetween(ctx, now.Add(-2*time.Hour), now)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "upper bound is excluded")

		recent, err := r.students.RecentStudents(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []int{jane.ID, john.ID}, studentIDs(recent))
	})

	t.Run("update", func(t *testing.T) {
		jane.Course = "Economics"
		jane.Status = student.StatusInactive
		updated, err := r.students.UpdateStudent(ctx, jane)
		require.NoError(t, err)
		assert.Equal(t, jane, updated)

		_, err = r.students.UpdateStudent(ctx, student.Student{ID: 999})
		assert.True(t, core.IsNotFound(err))
	})
}

func TestStudentRepository_SearchStudents_unicode(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	elodie := testutil.CreateStudent(t, r.students, "Élodie", "Müller", "elodie@example.com", "Économie", student.StatusActive)
	testutil.CreateStudent(t, r.students, "John", "Doe", "john@example.com", "Physics", student.StatusActive)

	for _, term := range []string{"ÉLODIE", "élodie", "MÜLLER", "économie"} {
		students, err := r.students.SearchStudents(ctx, term)
		require.NoError(t, err)
		assert.Equal(t, []int{elodie.ID}, studentIDs(students), "term %q", term)
	}
}

func TestStudentRepository_DeleteStudent(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	st := testutil.CreateStudent(t, r.students, "John", "Doe", "john@example.com", "Physics", student.StatusActive)
	other := testutil.CreateStudent(t, r.students, "Jane", "Smith", "jane@example.com", "Physics", student.StatusActive)
	f := testutil.CreateFee(t, r.fees, st.ID, "Tuition", "1000")
	testutil.PayFee(t, r.fees, f.ID, "100", time.Now())
	testutil.CreateFee(t, r.fees, st.ID, "Library", "50")
	kept := testutil.CreateFee(t, r.fees, other.ID, "Tuition", "1000")

	require.NoError(t, r.students.DeleteStudent(ctx, st.ID))

	fees, err := r.fees.QueryAllFees(ctx)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, kept.ID, fees[0].ID)

	_, err = r.students.GetStudentByID(ctx, st.ID)
	assert.True(t, core.IsNotFound(err))
	assert.EqualError(t, r.students.DeleteStudent(ctx, st.ID), "Student not found with id: "+strconv.Itoa(st.ID))

	// foreign keys are enforced
	_, err = r.fees.CreateFee(ctx, fee.Fee{
		StudentID: st.ID, FeeType: "Tuition", Amount: decimal.NewFromInt(10), PaidAmount: decimal.Zero,
		Status: fee.StatusPending, CreatedDate: time.Now(),
	})
	assert.Error(t, err)
}

func TestFeeRepository_UpdateFeePayment(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	st := testutil.CreateStudent(t, r.students, "Jane", "Smith", "jane@example.com", "Business", student.StatusActive)
	f := testutil.CreateFee(t, r.fees, st.ID, "Tuition", "1000")

	t.Run("failed payment is not saved", func(t *testing.T) {
		_, err := r.fees.UpdateFeePayment(ctx, f.ID, func(f *fee.Fee) error {
			f.PaidAmount = decimal.NewFromInt(999)
			return errors.New("declined")
		})
		assert.EqualError(t, err, "declined")

		stored, err := r.fees.GetFeeByID(ctx, f.ID)
		require.NoError(t, err)
		assert.True(t, stored.PaidAmount.IsZero())
		assert.Equal(t, fee.StatusPending, stored.Status)
	})

	t.Run("unknown fee", func(t *testing.T) {
		_, err := r.fees.UpdateFeePayment(ctx, 999, func(f *fee.Fee) error { return nil })
		assert.EqualError(t, err, "Fee not found with id: 999")
	})

	t.Run("concurrent payments", func(t *testing.T) {
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			failures  []error
		)
		for i := 0; i < 6; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := r.fees.UpdateFeePayment(ctx, f.ID, func(f *fee.Fee) error {
					return f.ApplyPayment(decimal.NewFromInt(300), "Cash", "tx", time.Now())
				})
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					successes++
				} else {
					failures = append(failures, err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 3, successes)
		for _, err := range failures {
			var vErr *core.ValidationError
			assert.True(t, errors.As(err, &vErr), "err = %v", err)
		}

		stored, err := r.fees.GetFeeByID(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, "900", stored.PaidAmount.String())
		assert.Equal(t, fee.StatusPartiallyPaid, stored.Status)
	})
}

func TestFeeRepository_aggregates(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	total, err := r.fees.SumPaidAmounts(ctx, fee.StatusPaid)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	jane := testutil.CreateStudent(t, r.students, "Jane", "Smith", "jane@example.com", "Business", student.StatusActive)
	mike := testutil.CreateStudent(t, r.students, "Mike", "Davis", "mike@example.com", "Physics", student.StatusActive)
	tuition := testutil.CreateFee(t, r.fees, jane.ID, "Tuition", "2000")
	testutil.PayFee(t, r.fees, tuition.ID, "2000", now.Add(-2*time.Hour))
	library := testutil.CreateFee(t, r.fees, mike.ID, "Library", "300.75")
	testutil.PayFee(t, r.fees, library.ID, "100", now.Add(-time.Hour))
	testutil.CreateFee(t, r.fees, mike.ID, "Transport", "49.25")

	total, err = r.fees.SumPaidAmounts(ctx, fee.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, "2000", total.String())

	pending, err := r.fees.SumRemainingAmounts(ctx, fee.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, "250", pending.String())

	count, err := r.fees.CountFeesByStatus(ctx, fee.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	fees, err := r.fees.FilterFeesByStudentAndStatus(ctx, mike.ID, fee.StatusPartiallyPaid)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, library.ID, fees[0].ID)

	payments, err := r.fees.RecentPayments(ctx, 5)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, library.ID, payments[0].ID)
	assert.Equal(t, "Mike Davis", payments[0].StudentName)
	assert.True(t, payments[0].PaidDate.Time.Equal(now.Add(-time.Hour)))
	assert.Equal(t, "Jane Smith", payments[1].StudentName)

	payments, err = r.fees.RecentPayments(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestFeeRepository_aggregates_centAmounts(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	st := testutil.CreateStudent(t, r.students, "Jane", "Smith", "jane@example.com", "Business", student.StatusActive)
	for _, amount := range []string{"0.10", "0.20"} {
		f := testutil.CreateFee(t, r.fees, st.ID, "Printing", amount)
		testutil.PayFee(t, r.fees, f.ID, amount, now)
		testutil.CreateFee(t, r.fees, st.ID, "Photocopies", amount)
	}

	collected, err := r.fees.SumPaidAmounts(ctx, fee.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, "0.3", collected.String())

	pending, err := r.fees.SumRemainingAmounts(ctx, fee.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, "0.3", pending.String())
}

func TestInquiryRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	old := testutil.CreateInquiry(t, r.inquiries, "Alex Johnson", "alex@example.com", "Scholarships", now.Add(-time.Hour))
	newest := testutil.CreateInquiry(t, r.inquiries, "Sarah Wilson", "sarah@example.com", "Admissions", now)

	inq, err := r.inquiries.GetInquiryByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, old, inq)

	inq.Respond("Applications open in March.", now)
	responded, err := r.inquiries.UpdateInquiry(ctx, inq)
	require.NoError(t, err)
	assert.Equal(t, inquiry.StatusResponded, responded.Status)
	assert.Equal(t, "Applications open in March.", responded.Response.String)
	assert.True(t, responded.ResponseDate.Time.Equal(now))

	inquiries, err := r.inquiries.QueryAllInquiries(ctx)
	require.NoError(t, err)
	require.Len(t, inquiries, 2)
	assert.Equal(t, newest.ID, inquiries[0].ID)

	count, err := r.inquiries.CountInquiriesByStatus(ctx, inquiry.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	inquiries, err = r.inquiries.FilterInquiriesByEmail(ctx, "alex@example.com")
	require.NoError(t, err)
	require.Len(t, inquiries, 1)
	assert.Equal(t, old.ID, inquiries[0].ID)

	recent, err := r.inquiries.RecentInquiries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, newest.ID, recent[0].ID)

	require.NoError(t, r.inquiries.DeleteInquiry(ctx, old.ID))
	assert.True(t, core.IsNotFound(r.inquiries.DeleteInquiry(ctx, old.ID)))
	_, err = r.inquiries.UpdateInquiry(ctx, inq)
	assert.True(t, core.IsNotFound(err))
}
