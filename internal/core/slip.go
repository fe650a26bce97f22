package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Default attendance values used when a new slip is opened.
const (
	DefaultStandardDays = "30"
	DefaultPaidDays     = "30"
	DefaultLeaves       = "0"
	DefaultLOPDays      = "0"
)

var (
	DefaultEarningTitles = []string{
		"Basic Salary",
		"House Rent Allowance",
		"Travel Allowance",
		"Performance Pay",
		"Joining Bonus",
	}
	DefaultDeductionTitles = []string{
		"Professional Tax",
	}

	ErrInvalidKind  = errors.New("invalid ledger kind")
	ErrInvalidMonth = errors.New("invalid month")
	ErrInvalidYear  = errors.New("invalid year")
)

type (
	// Employee holds the identification and bank details printed on a slip.
	// Values are display text and are not validated.
	Employee struct {
		Name          string `json:"name" yaml:"name"`
		ID            string `json:"id" yaml:"id"`
		Designation   string `json:"designation" yaml:"designation"`
		DateOfJoining string `json:"date_of_joining" yaml:"date_of_joining"`
		BankName      string `json:"bank_name" yaml:"bank_name"`
		AccountNo     string `json:"account_no" yaml:"account_no"`
		IFSC          string `json:"ifsc" yaml:"ifsc"`
		PAN           string `json:"pan" yaml:"pan"`
	}

	// Period is the pay month, stored as the English month name.
	Period struct {
		Month string `json:"month" yaml:"month"`
		Year  int    `json:"year" yaml:"year"`
	}

	Attendance struct {
		StandardDays        string `json:"standard_days" yaml:"standard_days"`
		PaidDays            string `json:"paid_days" yaml:"paid_days"`
		Leaves              string `json:"leaves" yaml:"leaves"`
		LOPDays             string `json:"lop_days" yaml:"lop_days"`
		BankTransactionDate string `json:"bank_transaction_date" yaml:"bank_transaction_date"`
	}

	// Details groups the free-form fields of a slip.
	Details struct {
		Employee   Employee   `json:"employee" yaml:"employee"`
		Period     Period     `json:"period" yaml:"period"`
		Attendance Attendance `json:"attendance" yaml:"attendance"`
	}

	// Slip is a salary slip draft. It is a value: edits go through Apply.
	Slip struct {
		Details    Details
		Earnings   Ledger
		Deductions Ledger
	}

	// Summary is the computed outcome of a slip.
	Summary struct {
		TotalEarnings   decimal.Decimal
		TotalDeductions decimal.Decimal
		NetPay          decimal.Decimal
		NetPayWords     string
	}

	// Seed lists the titles a new slip starts with.
	Seed struct {
		Earnings   []string `yaml:"earnings"`
		Deductions []string `yaml:"deductions"`
	}
)

// DefaultSeed returns the built-in starter titles.
func DefaultSeed() Seed {
	return Seed{
		Earnings:   append([]string(nil), DefaultEarningTitles...),
		Deductions: append([]string(nil), DefaultDeductionTitles...),
	}
}

// DefaultDetails returns empty employee fields, the pay period of now and
// a full month of attendance.
func DefaultDetails(now time.Time) Details {
	return Details{
		Period: Period{Month: now.Month().String(), Year: now.Year()},
		Attendance: Attendance{
			StandardDays: DefaultStandardDays,
			PaidDays:     DefaultPaidDays,
			Leaves:       DefaultLeaves,
			LOPDays:      DefaultLOPDays,
		},
	}
}

// NewSlip opens a slip seeded with the given titles and default details.
func NewSlip(seed Seed, now time.Time) Slip {
	return Slip{
		Details:    DefaultDetails(now),
		Earnings:   NewLedger(seed.Earnings...),
		Deductions: NewLedger(seed.Deductions...),
	}
}

// Ledger returns the ledger for kind.
func (s Slip) Ledger(kind Kind) (Ledger, error) {
	switch kind {
	case Earning:
		return s.Earnings, nil
	case Deduction:
		return s.Deductions, nil
	default:
		return Ledger{}, ErrInvalidKind
	}
}

func (s Slip) TotalEarnings() decimal.Decimal {
	return s.Earnings.Total()
}

func (s Slip) TotalDeductions() decimal.Decimal {
	return s.Deductions.Total()
}

// NetPay is total earnings minus total deductions and may be negative.
func (s Slip) NetPay() decimal.Decimal {
	return s.TotalEarnings().Sub(s.TotalDeductions())
}

// Summarize computes the totals and the words phrase for net pay.
func (s Slip) Summarize() Summary {
	earn, ded := s.TotalEarnings(), s.TotalDeductions()
	net := earn.Sub(ded)
	return Summary{
		TotalEarnings:   earn,
		TotalDeductions: ded,
		NetPay:          net,
		NetPayWords:     ToWords(net),
	}
}

// FileName builds the export file name, e.g.
// "Salary_Slip_Asha Rao_March_2025.pdf". Path separators in the employee
// name are replaced and control characters dropped so the result is always
// a single printable path element.
func (s Slip) FileName(ext string) string {
	name := strings.NewReplacer("/", "-", `\`, "-").Replace(s.Details.Employee.Name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	base := "Salary_Slip_" + name + "_" + s.Details.Period.Month + "_" + strconv.Itoa(s.Details.Period.Year)
	if ext == "" {
		return base
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}

// Validate checks the pay period, the only part of a slip with a closed
// set of values.
func (p Period) Validate() error {
	if _, ok := ParseMonth(p.Month); !ok {
		return ErrInvalidMonth
	}
	if p.Year < 1900 || p.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// ParseMonth resolves an English month name, case-insensitively.
func ParseMonth(name string) (time.Month, bool) {
	name = strings.TrimSpace(name)
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, true
		}
	}
	return 0, false
}

// Months lists the month names in calendar order.
func Months() []string {
	out := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		out = append(out, m.String())
	}
	return out
}
