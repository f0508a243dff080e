package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var fieldMessages = map[string]string{
	"title.required":     "A title is required",
	"details.required":   "Details are required",
	"name.required":      "A name is required",
	"email.required":     "An email is required",
	"password.required":  "A password is required",
	"password.maxbytes":  "Password must be at most 72 bytes",
	"password2.required": "Please confirm your password",
	"password2.eqfield":  "Passwords do not match",
}

type formValidator struct {
	validate *validator.Validate
}

func newFormValidator() *formValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("maxbytes", maxBytes)
	return &formValidator{validate: v}
}

// maxBytes limits the encoded length of a string, which bcrypt caps at 72
// bytes regardless of how many characters that is.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// check returns a *ValidationError describing every failed field, or nil.
func (f *formValidator) check(form interface{}) error {
	err := f.validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		verr.Fields = append(verr.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return verr
}
