package student

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// OrderingFields maps the fields students can be ordered by to their column names.
var OrderingFields = map[string]string{
	"id":             "id",
	"firstName":      "first_name",
	"lastName":       "last_name",
	"email":          "email",
	"course":         "course",
	"status":         "status",
	"enrollmentDate": "enrollment_date",
}

type Student struct {
	ID             int       `json:"id" db:"id"`
	FirstName      string    `json:"firstName" db:"first_name"`
	LastName       string    `json:"lastName" db:"last_name"`
	Email          string    `json:"email" db:"email"`
	Phone          string    `json:"phone" db:"phone"`
	DateOfBirth    string    `json:"dateOfBirth" db:"date_of_birth"`
	Gender         string    `json:"gender" db:"gender"`
	Address        string    `json:"address" db:"address"`
	Course         string    `json:"course" db:"course"`
	EnrollmentDate time.Time `json:"enrollmentDate" db:"enrollment_date"` // UTC
	Status         string    `json:"status" db:"status"`
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FirstName   string `json:"firstName" validate:"required,max=50"`
	LastName    string `json:"lastName" validate:"required,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,phone"`
	DateOfBirth string `json:"dateOfBirth" validate:"required"`
	Gender      string `json:"gender" validate:"required"`
	Address     string `json:"address" validate:"required"`
	Course      string `json:"course" validate:"required"`
	Status      string `json:"status"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, translator ut.Translator) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.DateOfBirth = core.CleanString(ns.DateOfBirth)
	ns.Gender = core.CleanString(ns.Gender)
	ns.Address = core.CleanString(ns.Address)
	ns.Course = core.CleanString(ns.Course)
	ns.Status = core.CleanString(ns.Status)
	return core.ValidateStruct(validate, translator, ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// All fields but Status are overwritten, a blank Status keeps the current one.
type UpdateStudent struct {
	FirstName   string `json:"firstName" validate:"required,max=50"`
	LastName    string `json:"lastName" validate:"required,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,phone"`
	DateOfBirth string `json:"dateOfBirth" validate:"required"`
	Gender      string `json:"gender" validate:"required"`
	Address     string `json:"address" validate:"required"`
	Course      string `json:"course" validate:"required"`
	Status      string `json:"status"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate, translator ut.Translator) error {
	us.FirstName = core.CleanString(us.FirstName)
	us.LastName = core.CleanString(us.LastName)
	us.Email = core.CleanString(us.Email, true /* lower */)
	us.Phone = core.CleanString(us.Phone)
	us.DateOfBirth = core.CleanString(us.DateOfBirth)
	us.Gender = core.CleanString(us.Gender)
	us.Address = core.CleanString(us.Address)
	us.Course = core.CleanString(us.Course)
	us.Status = core.CleanString(us.Status)
	return core.ValidateStruct(validate, translator, us)
}
