package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is returned when a request fails struct validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Fields, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json names so messages match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out.Fields = append(out.Fields, fe.Field()+" is required")
		case "min":
			if fe.Param() == "1" {
				out.Fields = append(out.Fields, fe.Field()+" must not be empty")
			} else {
				out.Fields = append(out.Fields, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
			}
		case "max":
			out.Fields = append(out.Fields, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "oneof":
			out.Fields = append(out.Fields, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			out.Fields = append(out.Fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return out
}
