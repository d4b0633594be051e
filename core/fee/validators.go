package fee

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

var (
	feeStatusTag  = "feestatus"
	feeStatusText = "status must be one of: " + strings.Join(Statuses, ", ")
)

// InitValidators registers the fee validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(feeStatusTag, feeStatusValidation)
	core.RegisterCustomTranslation(validate, translator, feeStatusTag, feeStatusText)
}

// Custom Validators

// feeStatusValidation checks that the status is one of Statuses.
func feeStatusValidation(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	for _, s := range Statuses {
		if status == s {
			return true
		}
	}
	return false
}
