package timelog

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Tiliavir/adolog/internal/apperrors"
	"github.com/Tiliavir/adolog/internal/model"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(useJSONTagNames)
	v.RegisterStructValidation(requireLoggedTime, model.TimeLogRecord{})
	return v
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// requireLoggedTime rejects a record with zero hours and zero minutes.
func requireLoggedTime(sl validator.StructLevel) {
	r := sl.Current().Interface().(model.TimeLogRecord)
	if r.TotalMinutes() == 0 {
		sl.ReportError(r.Minutes, "minutes", "Minutes", "logged", "")
	}
}

// invalidRecord turns validator output into an ErrInvalidRecord with one
// readable reason per field.
func invalidRecord(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidRecord, err)
	}

	reasons := make([]string, 0, len(errs))
	for _, fe := range errs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "datetime":
			msg = "must be a YYYY-MM-DD date"
		case "gte":
			msg = "must be at least " + fe.Param()
		case "lte":
			msg = "must be at most " + fe.Param()
		case "logged":
			msg = "no time logged"
		default:
			msg = "is invalid"
		}
		reasons = append(reasons, fe.Field()+" "+msg)
	}
	sort.Strings(reasons)
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidRecord, strings.Join(reasons, ", "))
}
