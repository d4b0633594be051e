package student

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

const entityName = "Student"

// EmailExistsError reports an email already used by another student.
type EmailExistsError struct {
	Email string
}

func (err EmailExistsError) Error() string {
	return fmt.Sprintf("Student with email %s already exists", err.Email)
}

// EmailExists returns the validation error of a student created or updated with a taken `email`.
func EmailExists(email string) error {
	exErr := EmailExistsError{Email: email}
	return core.NewValidationError(exErr, core.FieldError{Field: "email", Error: exErr.Error()})
}

type (
	Repository interface {
		// CreateStudent and UpdateStudent fail with EmailExists when the email is taken.
		CreateStudent(ctx context.Context, st Student) (Student, error)
		// QueryAllStudents returns all students ordered by `ordering` (by ID when empty).
		QueryAllStudents(ctx context.Context, ordering []core.DBOrdering) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByEmail(ctx context.Context, email string) (Student, error)
		// SearchStudents does a case-insensitive match of `term` on one of first name, last name, email or course.
		SearchStudents(ctx context.Context, term string) ([]Student, error)
		FilterStudentsByStatus(ctx context.Context, status string) ([]Student, error)
		FilterStudentsByCourse(ctx context.Context, course string) ([]Student, error)
		CountStudentsByStatus(ctx context.Context, status string) (int, error)
		// CountStudentsEnrolledBetween counts students enrolled in [from, to).
		CountStudentsEnrolledBetween(ctx context.Context, from, to time.Time) (int, error)
		// RecentStudents returns the last `limit` enrolled students, newest first.
		RecentStudents(ctx context.Context, limit int) ([]Student, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		// DeleteStudent deletes the student along with all their fees, in a single transaction.
		DeleteStudent(ctx context.Context, id int) error
	}

	Service struct {
		repo    Repository
		nowFunc func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

func (svc *Service) checkEmailUniqueness(ctx context.Context, email string) error {
	_, err := svc.repo.GetStudentByEmail(ctx, email)
	if err == nil {
		return EmailExists(email)
	}
	if core.IsNotFound(err) {
		return nil
	}
	return errors.Wrap(err, "checking email uniqueness")
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.checkEmailUniqueness(ctx, ns.Email); err != nil {
		return Student{}, err
	}

	status := ns.Status
	if status == "" {
		status = StatusActive
	}
	return svc.repo.CreateStudent(ctx, Student{
		FirstName:      ns.FirstName,
		LastName:       ns.LastName,
		Email:          ns.Email,
		Phone:          ns.Phone,
		DateOfBirth:    ns.DateOfBirth,
		Gender:         ns.Gender,
		Address:        ns.Address,
		Course:         ns.Course,
		EnrollmentDate: svc.nowFunc().UTC(),
		Status:         status,
	})
}

func (svc *Service) QueryAll(ctx context.Context, ordering []core.DBOrdering) ([]Student, error) {
	if err := core.CheckOrdering(ordering, OrderingFields); err != nil {
		return nil, err
	}
	return svc.repo.QueryAllStudents(ctx, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Student, error) {
	return svc.repo.GetStudentByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Search(ctx context.Context, term string) ([]Student, error) {
	return svc.repo.SearchStudents(ctx, core.CleanString(term))
}

func (svc *Service) FilterByStatus(ctx context.Context, status string) ([]Student, error) {
	return svc.repo.FilterStudentsByStatus(ctx, status)
}

func (svc *Service) FilterByCourse(ctx context.Context, course string) ([]Student, error) {
	return svc.repo.FilterStudentsByCourse(ctx, course)
}

func (svc *Service) CountActive(ctx context.Context) (int, error) {
	return svc.repo.CountStudentsByStatus(ctx, StatusActive)
}

// CountNewAdmissions counts the students enrolled during the current calendar month (UTC).
func (svc *Service) CountNewAdmissions(ctx context.Context) (int, error) {
	now := svc.nowFunc().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return svc.repo.CountStudentsEnrolledBetween(ctx, from, from.AddDate(0, 1, 0))
}

func (svc *Service) Recent(ctx context.Context, limit int) ([]Student, error) {
	return svc.repo.RecentStudents(ctx, limit)
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	st, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if us.Email != st.Email {
		if err = svc.checkEmailUniqueness(ctx, us.Email); err != nil {
			return Student{}, err
		}
	}

	st.FirstName = us.FirstName
	st.LastName = us.LastName
	st.Email = us.Email
	st.Phone = us.Phone
	st.DateOfBirth = us.DateOfBirth
	st.Gender = us.Gender
	st.Address = us.Address
	st.Course = us.Course
	if us.Status != "" {
		st.Status = us.Status
	}
	return svc.repo.UpdateStudent(ctx, st)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteStudent(ctx, id)
}

// NotFound returns the error reported for a missing student.
func NotFound(id int) error {
	return core.NewNotFoundError(entityName, "id", id)
}

// NotFoundByEmail returns the error reported for an unknown student email.
func NotFoundByEmail(email string) error {
	return core.NewNotFoundError(entityName, "email", email)
}
