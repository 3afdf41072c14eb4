package checkout

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fjod/go_storefront/internal/domain"
)

// FieldErrors maps a field name to what is wrong with it. Returned by
// step validation so the UI can attach errors per field; no network call
// is involved in producing one.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f + ": " + e[f])
	}
	return b.String()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateAddress(addr domain.Address) error {
	return fieldErrors(validate.Struct(addr))
}

func validatePaymentDetails(details domain.PaymentDetails) error {
	return fieldErrors(validate.Struct(details))
}

// fieldErrors converts validator output into FieldErrors keyed by the
// struct's json field names.
func fieldErrors(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fe := make(FieldErrors, len(verrs))
	for _, v := range verrs {
		name := jsonName(v.Field())
		switch v.Tag() {
		case "required":
			fe[name] = "is required"
		default:
			fe[name] = "is invalid"
		}
	}
	return fe
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
