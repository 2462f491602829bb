package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

type validationValuer interface {
	ValidationValue() any
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		return field.Interface().(validationValuer).ValidationValue()
	},
		internal.MaybeSet[string]{},
		internal.MaybeSet[int]{},
		internal.MaybeSet[int64]{},
		internal.MaybeSet[bool]{},
		internal.MaybeSet[time.Time]{},
		internal.MaybeSet[internal.Duration]{},
		internal.MaybeSet[internal.Urgency]{},
		internal.MaybeSet[internal.Bristol]{},
		internal.MaybeSet[internal.HSV]{},
		internal.MaybeSet[internal.ExerciseType]{},
		internal.MaybeSet[*internal.ExerciseRpe]{},
		internal.MaybeSet[internal.ConsumptionType]{},
		internal.MaybeSet[internal.ConsumableUnit]{},
		internal.MaybeString{},
		internal.MaybeF64{},
		internal.MaybeI32{},
		internal.MaybeDecimal{},
		internal.MaybeDateTime{},
	)
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		f, _ := field.Interface().(decimal.Decimal).Float64()
		return f
	}, decimal.Decimal{})
	return v
}

// ValidationErrors maps JSON field paths to messages.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + v[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == internal.ErrValidation
}

// orNil returns nil for an empty set so callers can return it directly.
func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// fieldPath turns "NewWee.NewEventMeta.colour.hue" into "colour.hue" by
// dropping the Go names of the root and embedded structs.
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" || unicode.IsUpper(rune(p[0])) {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "min":
		return "must not be empty"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "contains":
		return fmt.Sprintf("must contain %q", fe.Param())
	case "ne":
		return fmt.Sprintf("cannot be %q", fe.Param())
	default:
		return "is invalid"
	}
}

// Validate checks struct tags and returns ValidationErrors on failure.
func Validate(obj any) error {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(ValidationErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fieldPath(fe.Namespace())] = message(fe)
	}
	return out
}

func notBlank(errs ValidationErrors, field string, m internal.MaybeSet[string]) {
	if v, ok := m.Get(); ok && strings.TrimSpace(v) == "" {
		errs[field] = "must not be empty"
	}
}

// checkSymptomDetails requires the free text of a symptom exactly when its
// intensity is above zero.
func checkSymptomDetails(s *internal.Symptom) ValidationErrors {
	errs := ValidationErrors{}
	for _, d := range s.Details() {
		hasText := d.Detail != nil && strings.TrimSpace(*d.Detail) != ""
		switch {
		case d.Intensity == 0 && hasText:
			errs[d.DetailName] = "must be empty when " + d.Field + " is 0"
		case d.Intensity > 0 && !hasText:
			errs[d.DetailName] = "is required when " + d.Field + " is above 0"
		}
	}
	return errs
}
