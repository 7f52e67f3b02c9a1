package validator // import "github.com/Xunop/library-tracker/internal/validator"

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/util"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their json names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(field.Name)
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return util.UIDMatcher.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseRole(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("nospace", func(fl validator.FieldLevel) bool {
		return !util.HasSpace(fl.Field().String())
	})
	_ = v.RegisterValidation("balanced", func(fl validator.FieldLevel) bool {
		return util.IsBalanced(fl.Field().String())
	})
	return v
}

// Struct validates s against its validate tags and turns the first failure
// into a message fit for the user.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err
	}
	return errors.New(message(fieldErrors[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	case "email":
		return fmt.Sprintf("%s is not a valid email address", field)
	case "username":
		return fmt.Sprintf("%s may only contain letters, digits, dots, dashes and underscores (3 to 32 characters)", field)
	case "nospace":
		return fmt.Sprintf("%s must not contain spaces", field)
	case "balanced":
		return fmt.Sprintf("%s has unbalanced parentheses", field)
	case "role":
		return fmt.Sprintf("%s %q is not a known role", field, fe.Value())
	}
	return fmt.Sprintf("%s is invalid", field)
}
