package family

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gabrieli/tamhui/internal/apperr"
	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/store"
)

// phonePattern accepts 9 or 10 digits with an optional hyphen after the
// area code, e.g. "050-1234567" or "081234567".
var phonePattern = regexp.MustCompile(`^\d{2,3}-?\d{7}$`)

func validateRecord(rec store.Record) error {
	name := rec.Key(schema.Families())
	if name == "" {
		return &apperr.ValidationError{
			Reason:      apperr.ReasonMissingFullName,
			Description: "a family cannot be added without a full name",
		}
	}
	for _, field := range []string{schema.FieldHomePhone, schema.FieldMobilePhone} {
		phone, _ := rec[field].(string)
		if phone == "" {
			continue
		}
		if err := validation.Validate(phone, validation.Match(phonePattern)); err != nil {
			return &apperr.ValidationError{
				Reason:      apperr.ReasonPhoneMalformed,
				Description: fmt.Sprintf("%s of %q must be 9 or 10 digits", field, name),
			}
		}
	}
	return nil
}

func validateDriverName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.RuneLength(2, 0),
	)
	if err != nil {
		return &apperr.ValidationError{
			Reason:      apperr.ReasonDriverTooShort,
			Description: "a driver name must be at least 2 characters",
		}
	}
	return nil
}
