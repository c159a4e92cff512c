package climate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so errors line up with request bodies.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks coordinate ranges, the date format expected by the
// resolution, start <= end and that at least one parameter is requested.
func (q Query) Validate() error {
	if err := ValidateStruct(q); err != nil {
		return err
	}

	var fields []FieldError

	start, startErr := q.checkDate("start", q.Start)
	if startErr != nil {
		fields = append(fields, *startErr)
	}
	end, endErr := q.checkDate("end", q.End)
	if endErr != nil {
		fields = append(fields, *endErr)
	}
	if startErr == nil && endErr == nil && start.After(end) {
		fields = append(fields, FieldError{
			Field:   "start",
			Message: "must not be after end",
			Code:    "ltefield",
		})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateStruct runs the `validate` struct tags of v and reports failures
// as a *ValidationError keyed by JSON field path.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating %T: %w", v, err)
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fieldPath(fe),
			Message: describe(fe),
			Code:    fe.Tag(),
		})
	}
	return &ValidationError{Fields: fields}
}

func (q Query) checkDate(field, value string) (time.Time, *FieldError) {
	want := q.Resolution.PeriodLength()
	if len(value) != want {
		layout := "YYYYMMDD"
		if q.Resolution == ResolutionMonthly {
			layout = "YYYYMM"
		}
		return time.Time{}, &FieldError{
			Field:   field,
			Message: fmt.Sprintf("must use %s format for %s data", layout, q.Resolution),
			Code:    "format",
		}
	}
	parsed, err := q.Resolution.ParsePeriod(value)
	if err != nil {
		return time.Time{}, &FieldError{
			Field:   field,
			Message: "is not a valid calendar date",
			Code:    "date",
		}
	}
	return parsed, nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must contain at least " + fe.Param() + " item"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "numeric":
		return "must contain digits only"
	case "alphanum", "alpha":
		return "contains invalid characters"
	case "max":
		return "must be at most " + fe.Param() + " long"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
