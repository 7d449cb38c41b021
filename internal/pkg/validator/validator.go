package validator

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	return Details(validate.Struct(v))
}

// Details turns a bind or validation error into field -> problem pairs.
// Errors that are not about a specific field are reported under "body".
func Details(err error) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = fe.Tag()
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string]string{typeErr.Field: "type"}
	}
	return map[string]string{"body": err.Error()}
}
