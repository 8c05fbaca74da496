package service

import (
	"errors"
	"reflect"
	"strings"

	"hospital-equipment-tracker/internal/maintenance"

	"github.com/go-playground/validator/v10"
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
	// ddmmyyyy accepts only real calendar dates in DD/MM/YYYY form
	_ = v.RegisterValidation("ddmmyyyy", func(fl validator.FieldLevel) bool {
		_, ok := maintenance.ParseDate(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("emaillist", func(fl validator.FieldLevel) bool {
		for _, addr := range splitList(fl.Field().String()) {
			if v.Var(addr, "email") != nil {
				return false
			}
		}
		return true
	})
	return v
}

func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalidInput("%v", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return &ValidationError{Fields: fields}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "ddmmyyyy":
		return "must be a valid DD/MM/YYYY date"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "emaillist":
		return "must be a comma separated list of email addresses"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// splitList splits a comma separated value and drops empty entries
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
