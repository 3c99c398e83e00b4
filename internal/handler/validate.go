package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/taskflow/internal/apperror"
	"github.com/sakif/taskflow/internal/model"
)

// maxJSONBody bounds every JSON payload; the largest legal one is a task
// with a 4096-character description.
const maxJSONBody = 64 << 10

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Validator checks decoded payloads against their `validate` struct tags.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "account_name", func(fl validator.FieldLevel) bool {
		return accountNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "task_status", func(fl validator.FieldLevel) bool {
		return model.TaskStatus(fl.Field().String()).Valid()
	})

	return &Validator{v: v}
}

// mustRegister panics if tag cannot be registered, like regexp.MustCompile.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("handler: registering validation %q: %v", tag, err))
	}
}

// Struct validates payload and returns an apperror.ErrValidation listing
// every failing field.
func (val *Validator) Struct(payload any) error {
	err := val.v.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.ValidationFailed("body", err.Error())
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return apperror.Invalid(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "account_name":
		return "may contain only letters, digits and underscores"
	case "task_status":
		return "must be one of to_do, in_progress, done"
	default:
		return "is invalid"
	}
}

// decode reads a JSON body into dst and validates it.
func (val *Validator) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.LargeFile(maxErr.Limit)
		}
		return &badRequest{msg: "invalid JSON body: " + err.Error()}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &badRequest{msg: "request body must contain a single JSON object"}
	}

	return val.Struct(dst)
}
