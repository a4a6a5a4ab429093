package currency

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/richxcame/currencies/pkg/validation"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateData checks a record before it reaches the store.
// The code is skipped on update since it is immutable.
func validateData(data CurrencyData, withCode bool) error {
	var err error
	if withCode {
		err = validate.Struct(data)
	} else {
		err = validate.StructExcept(data, "Code")
	}

	verr := &validation.ValidationError{}
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return newError(ErrInvalidParameter, data.Code, err)
		}
		verr = validation.NewValidationError(fieldErrs)
	}

	if !data.Value.IsPositive() {
		verr.AddError("value", "value must be greater than 0")
	}

	if !verr.HasErrors() {
		return nil
	}

	cerr := newError(ErrInvalidParameter, data.Code, verr)
	cerr.Details = verr.Errors
	return cerr
}
