package v1

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/adanyl0v/sprintsync/internal/models"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
	maxFullNameLength    = 100
	minPasswordLength    = 6
	maxPasswordLength    = 100
)

var validate = validator.New()

func init() {
	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		engine.RegisterTagNameFunc(wireFieldName)
		// notblank rejects strings that are empty after trimming whitespace.
		_ = engine.RegisterValidation("notblank", validators.NotBlank)
	}
}

// wireFieldName reports fields by their json or form key.
func wireFieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return ""
}

// bindErrorMessage turns a binding failure into a single readable line.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errInvalidRequestBody.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "notblank":
			msgs = append(msgs, field+" cannot be blank")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		case "min", "gt", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max", "lt", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func validateTaskPatch(p models.TaskPatch) string {
	if v, ok := p.Title.Get(); ok {
		n := utf8.RuneCountInString(strings.TrimSpace(v))
		if n == 0 || n > maxTitleLength {
			return fmt.Sprintf("title must be between 1 and %d characters", maxTitleLength)
		}
	}
	if p.Title.IsNull() {
		return "title cannot be null"
	}
	if v, ok := p.Description.Get(); ok && utf8.RuneCountInString(v) > maxDescriptionLength {
		return fmt.Sprintf("description must be at most %d characters", maxDescriptionLength)
	}
	if p.Status.IsNull() {
		return "status cannot be null"
	}
	if v, ok := p.Status.Get(); ok && !v.Valid() {
		return models.ErrInvalidStatus.Error()
	}
	if p.TotalMinutes.IsNull() {
		return "total_minutes cannot be null"
	}
	if v, ok := p.TotalMinutes.Get(); ok && v < 0 {
		return "total_minutes cannot be negative"
	}
	return ""
}

func validateUserPatch(p models.UserPatch) string {
	if v, ok := p.Email.Get(); ok {
		if err := validate.Var(v, "required,email,max=255"); err != nil {
			return "email must be a valid email"
		}
	}
	if v, ok := p.FullName.Get(); ok {
		n := utf8.RuneCountInString(strings.TrimSpace(v))
		if n == 0 || n > maxFullNameLength {
			return fmt.Sprintf("full_name must be between 1 and %d characters", maxFullNameLength)
		}
	}
	if v, ok := p.Password.Get(); ok {
		n := utf8.RuneCountInString(v)
		if n < minPasswordLength || n > maxPasswordLength {
			return fmt.Sprintf("password must be between %d and %d characters", minPasswordLength, maxPasswordLength)
		}
	}
	return ""
}
