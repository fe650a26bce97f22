package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewSlipDefaults(t *testing.T) {
	now := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	s := NewSlip(DefaultSeed(), now)

	if s.Details.Period.Month != "March" || s.Details.Period.Year != 2025 {
		t.Fatalf("unexpected period %+v", s.Details.Period)
	}
	a := s.Details.Attendance
	if a.StandardDays != "30" || a.PaidDays != "30" || a.Leaves != "0" || a.LOPDays != "0" {
		t.Fatalf("unexpected attendance %+v", a)
	}
	if s.Earnings.Len() != 5 || s.Deductions.Len() != 1 {
		t.Fatalf("unexpected seed sizes: %d earnings, %d deductions", s.Earnings.Len(), s.Deductions.Len())
	}
	for i, it := range s.Earnings.Items() {
		if it.ID != i+1 || it.Title != DefaultEarningTitles[i] || it.Amount != "" {
			t.Fatalf("unexpected seeded earning %d: %+v", i, it)
		}
	}
	if it, _ := s.Deductions.Get(1); it.Title != "Professional Tax" {
		t.Fatalf("unexpected seeded deduction %+v", it)
	}
}

func TestDefaultSeedIsACopy(t *testing.T) {
	seed := DefaultSeed()
	seed.Earnings[0] = "changed"
	if DefaultEarningTitles[0] != "Basic Salary" {
		t.Fatalf("DefaultSeed leaked the package slice")
	}
}

func TestSummarize(t *testing.T) {
	s := NewSlip(DefaultSeed(), time.Now())
	s = ApplyAll(s,
		SetAmount(Earning, 1, "1000"),
		SetAmount(Earning, 2, "500.50"),
		SetAmount(Deduction, 1, "abc"),
	)
	sum := s.Summarize()
	if !sum.TotalEarnings.Equal(decimal.RequireFromString("1500.50")) {
		t.Fatalf("total earnings = %s", sum.TotalEarnings)
	}
	if !sum.TotalDeductions.IsZero() {
		t.Fatalf("garbage deduction must count as zero, got %s", sum.TotalDeductions)
	}
	if !sum.NetPay.Equal(sum.TotalEarnings.Sub(sum.TotalDeductions)) {
		t.Fatalf("net pay mismatch")
	}
	if sum.NetPayWords != "One Thousand Five Hundred Rupees and Fifty Paise" {
		t.Fatalf("unexpected words %q", sum.NetPayWords)
	}
}

func TestNetPayEmptyLedgers(t *testing.T) {
	s := Slip{}
	if !s.NetPay().IsZero() {
		t.Fatalf("empty slip net pay = %s", s.NetPay())
	}
	if got := s.Summarize().NetPayWords; got != "Zero" {
		t.Fatalf("empty slip words = %q", got)
	}
}

func TestNetPayNegative(t *testing.T) {
	s := ApplyAll(NewSlip(DefaultSeed(), time.Now()),
		SetAmount(Earning, 1, "100"),
		SetAmount(Deduction, 1, "300"),
	)
	sum := s.Summarize()
	if !sum.NetPay.Equal(decimal.NewFromInt(-200)) {
		t.Fatalf("net pay = %s", sum.NetPay)
	}
	if sum.NetPayWords != "Negative Two Hundred Rupees" {
		t.Fatalf("words = %q", sum.NetPayWords)
	}
}

func TestSlipLedger(t *testing.T) {
	s := NewSlip(DefaultSeed(), time.Now())
	if l, err := s.Ledger(Deduction); err != nil || l.Len() != 1 {
		t.Fatalf("deduction ledger: len=%d err=%v", l.Len(), err)
	}
	if _, err := s.Ledger("bonus"); err != ErrInvalidKind {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestFileName(t *testing.T) {
	s := NewSlip(DefaultSeed(), time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC))
	s.Details.Employee.Name = "Asha Rao"
	if got := s.FileName("pdf"); got != "Salary_Slip_Asha Rao_November_2024.pdf" {
		t.Fatalf("unexpected file name %q", got)
	}
	if got := s.FileName(".html"); got != "Salary_Slip_Asha Rao_November_2024.html" {
		t.Fatalf("unexpected file name %q", got)
	}
	s.Details.Employee.Name = "../etc/passwd"
	if got := s.FileName(""); got != "Salary_Slip_..-etc-passwd_November_2024" {
		t.Fatalf("unexpected file name %q", got)
	}
	s.Details.Employee.Name = "Asha\r\nRao\t"
	if got := s.FileName(""); got != "Salary_Slip_AshaRao_November_2024" {
		t.Fatalf("unexpected file name %q", got)
	}
}

func TestPeriodValidate(t *testing.T) {
	cases := []struct {
		p  Period
		ok bool
	}{
		{Period{Month: "January", Year: 2025}, true},
		{Period{Month: "december", Year: 2025}, true},
		{Period{Month: "Smarch", Year: 2025}, false},
		{Period{Month: "May", Year: 0}, false},
	}
	for i, tc := range cases {
		err := tc.p.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
