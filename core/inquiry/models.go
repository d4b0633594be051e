package inquiry

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

const (
	StatusPending   = "Pending"
	StatusResponded = "Responded"
)

var Statuses = []string{StatusPending, StatusResponded}

type Inquiry struct {
	ID           int         `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Email        string      `json:"email" db:"email"`
	Phone        string      `json:"phone" db:"phone"`
	Subject      string      `json:"subject" db:"subject"`
	Message      string      `json:"message" db:"message"`
	Status       string      `json:"status" db:"status"`
	CreatedDate  time.Time   `json:"createdDate" db:"created_date"` // UTC
	Response     null.String `json:"response" db:"response"`
	ResponseDate null.Time   `json:"responseDate" db:"response_date"` // UTC
}

// Respond records the response to the inquiry. Responding again overwrites the previous response.
func (inq *Inquiry) Respond(response string, at time.Time) {
	inq.Response = null.StringFrom(response)
	inq.ResponseDate = null.TimeFrom(at.UTC())
	inq.Status = StatusResponded
}

// NewInquiry contains information needed to create a new Inquiry.
type NewInquiry struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,phone"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=1000"`
}

func (ni *NewInquiry) Validate(validate *validator.Validate, translator ut.Translator) error {
	ni.Name = core.CleanString(ni.Name)
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	ni.Phone = core.CleanString(ni.Phone)
	ni.Subject = core.CleanString(ni.Subject)
	ni.Message = core.CleanString(ni.Message)
	return core.ValidateStruct(validate, translator, ni)
}

// UpdateInquiry defines what information may be provided to modify an existing Inquiry.
// A blank Status keeps the current one.
type UpdateInquiry struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,phone"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=1000"`
	Status  string `json:"status" validate:"omitempty,inquirystatus"`
}

func (ui *UpdateInquiry) Validate(validate *validator.Validate, translator ut.Translator) error {
	ui.Name = core.CleanString(ui.Name)
	ui.Email = core.CleanString(ui.Email, true /* lower */)
	ui.Phone = core.CleanString(ui.Phone)
	ui.Subject = core.CleanString(ui.Subject)
	ui.Message = core.CleanString(ui.Message)
	ui.Status = core.CleanString(ui.Status)
	return core.ValidateStruct(validate, translator, ui)
}

type UpdateInquiryStatus struct {
	Status string `json:"status" validate:"required,inquirystatus"`
}

func (us *UpdateInquiryStatus) Validate(validate *validator.Validate, translator ut.Translator) error {
	us.Status = core.CleanString(us.Status)
	return core.ValidateStruct(validate, translator, us)
}

type RespondInquiry struct {
	Response string `json:"response" validate:"required"`
}

func (ri *RespondInquiry) Validate(validate *validator.Validate, translator ut.Translator) error {
	ri.Response = core.CleanString(ri.Response)
	return core.ValidateStruct(validate, translator, ri)
}
