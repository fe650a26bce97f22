package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"payslip/internal/core"
)

// maxFormBytes bounds every form body the server accepts.
const maxFormBytes = 64 << 10

var errBadItemID = errors.New("invalid item id")

// parseForm limits and parses a urlencoded body.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	return nil
}

// formValue returns a trimmed, control-character-free form value.
func formValue(form url.Values, key string) string {
	return sanitizeInput(form.Get(key))
}

// ParseDetailsForm reads the slip details form. Only the year is checked
// here; the month and range checks belong to the service.
func ParseDetailsForm(form url.Values) (core.Details, error) {
	d := core.Details{
		Employee: core.Employee{
			Name:          formValue(form, "employee_name"),
			ID:            formValue(form, "employee_id"),
			Designation:   formValue(form, "designation"),
			DateOfJoining: formValue(form, "date_of_joining"),
			BankName:      formValue(form, "bank_name"),
			AccountNo:     formValue(form, "account_no"),
			IFSC:          strings.ToUpper(formValue(form, "ifsc")),
			PAN:           strings.ToUpper(formValue(form, "pan")),
		},
		Period: core.Period{
			Month: formValue(form, "month"),
		},
		Attendance: core.Attendance{
			StandardDays:        formValue(form, "standard_days"),
			PaidDays:            formValue(form, "paid_days"),
			Leaves:              formValue(form, "leaves"),
			LOPDays:             formValue(form, "lop_days"),
			BankTransactionDate: formValue(form, "bank_transaction_date"),
		},
	}

	year, err := strconv.Atoi(formValue(form, "year"))
	if err != nil {
		return d, core.ErrInvalidYear
	}
	d.Period.Year = year
	return d, nil
}

// pathKind resolves the {kind} path segment.
func pathKind(r *http.Request) (core.Kind, bool) {
	k := core.Kind(r.PathValue("kind"))
	return k, k.IsValid()
}

// pathItemID resolves the {item} path segment.
func pathItemID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("item"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errBadItemID, r.PathValue("item"))
	}
	return id, nil
}
