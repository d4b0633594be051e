package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/inquiry"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/storage/database"
)

// PrepareDB opens a migrated in-memory SQLite database, closed at the end of the test.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open(database.DriverSQLite, database.SQLiteDSN(":memory:"))
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	db.SetMaxOpenConns(1) // a new connection would get an empty database
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// NewValidator returns a validator with all the app's validations registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	fee.InitValidators(validate, translator)
	inquiry.InitValidators(validate, translator)
	return validate, translator
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	firstName, lastName, email, course, status string,
	enrolledAt ...time.Time,
) student.Student {
	t.Helper()

	tstamp := time.Now().UTC().Truncate(time.Second)
	if len(enrolledAt) > 0 {
		tstamp = enrolledAt[0].UTC()
	}
	st, err := repo.CreateStudent(context.Background(), student.Student{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		Phone:          "+243810000000",
		DateOfBirth:    "2001-05-14",
		Gender:         "Female",
		Address:        "12 Avenue Kasa-Vubu, Kinshasa",
		Course:         course,
		EnrollmentDate: tstamp,
		Status:         status,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

func CreateFee(t *testing.T, repo fee.Repository, studentID int, feeType, amount string) fee.Fee {
	t.Helper()

	f, err := repo.CreateFee(context.Background(), fee.Fee{
		StudentID:   studentID,
		FeeType:     feeType,
		Amount:      decimal.RequireFromString(amount),
		PaidAmount:  decimal.Zero,
		Status:      fee.StatusPending,
		CreatedDate: time.Now().UTC().Truncate(time.Second),
	})
	if err != nil {
		t.Fatalf("CreateFee() failed: %v", err)
	}
	return f
}

// PayFee applies a payment of `amount` made at `paidAt` straight through the repository.
func PayFee(t *testing.T, repo fee.Repository, id int, amount string, paidAt time.Time) fee.Fee {
	t.Helper()

	f, err := repo.UpdateFeePayment(context.Background(), id, func(f *fee.Fee) error {
		return f.ApplyPayment(decimal.RequireFromString(amount), "Cash", fmt.Sprintf("tx-%d-%d", id, paidAt.Unix()), paidAt)
	})
	if err != nil {
		t.Fatalf("PayFee() failed: %v", err)
	}
	return f
}

func CreateInquiry(
	t *testing.T,
	repo inquiry.Repository,
	name, email, subject string,
	createdAt ...time.Time,
) inquiry.Inquiry {
	t.Helper()

	tstamp := time.Now().UTC().Truncate(time.Second)
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	inq, err := repo.CreateInquiry(context.Background(), inquiry.Inquiry{
		Name:        name,
		Email:       email,
		Phone:       "+243820000000",
		Subject:     subject,
		Message:     "Could you tell me more about " + subject + "?",
		Status:      inquiry.StatusPending,
		CreatedDate: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateInquiry() failed: %v", err)
	}
	return inq
}

// Logger records logged messages.
type Logger struct {
	mu       sync.Mutex
	Messages []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, level+": "+msg)
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log("DEBUG", msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log("INFO", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log("WARN", msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log("ERROR", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log("FATAL", msg) }
