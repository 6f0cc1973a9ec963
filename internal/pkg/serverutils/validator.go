package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and folds failures into a
// VALIDATION_ERROR envelope, one entry per offending field.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		fields := map[string]interface{}{}
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields[fe.Field()] = fmt.Sprintf("failed on '%s' rule", fe.Tag())
			}
		}
		return ValidationError(fields)
	}
	return nil
}
