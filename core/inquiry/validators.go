package inquiry

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

var (
	inquiryStatusTag  = "inquirystatus"
	inquiryStatusText = "status must be one of: " + strings.Join(Statuses, ", ")
)

// InitValidators registers the inquiry validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(inquiryStatusTag, inquiryStatusValidation)
	core.RegisterCustomTranslation(validate, translator, inquiryStatusTag, inquiryStatusText)
}

func inquiryStatusValidation(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	return status == StatusPending || status == StatusResponded
}
