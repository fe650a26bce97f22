// Package export turns a slip into a standalone document and writes it to
// disk.
package export

import (
	"time"

	"payslip/internal/core"
)

// Line is a ledger entry with its amount already formatted as INR.
type Line struct {
	Title  string `json:"title"`
	Amount string `json:"amount"`
}

// Row pairs the n-th earning with the n-th deduction for side-by-side
// tables. Either side may be nil.
type Row struct {
	Earning   *Line
	Deduction *Line
}

// Document is a frozen, display-ready snapshot of a slip. It is what gets
// queued for export, so it carries no raw amounts.
type Document struct {
	Company         string       `json:"company,omitempty"`
	FileName        string       `json:"file_name"`
	Details         core.Details `json:"details"`
	Earnings        []Line       `json:"earnings"`
	Deductions      []Line       `json:"deductions"`
	TotalEarnings   string       `json:"total_earnings"`
	TotalDeductions string       `json:"total_deductions"`
	NetPay          string       `json:"net_pay"`
	NetPayWords     string       `json:"net_pay_words"`
	GeneratedAt     time.Time    `json:"generated_at"`
}

// NewDocument snapshots s.
func NewDocument(company string, s core.Slip, now time.Time) Document {
	sum := s.Summarize()
	return Document{
		Company:         company,
		FileName:        s.FileName(""),
		Details:         s.Details,
		Earnings:        lines(s.Earnings),
		Deductions:      lines(s.Deductions),
		TotalEarnings:   core.FormatINR(sum.TotalEarnings),
		TotalDeductions: core.FormatINR(sum.TotalDeductions),
		NetPay:          core.FormatINR(sum.NetPay),
		NetPayWords:     core.Decorate(sum.NetPayWords),
		GeneratedAt:     now,
	}
}

// Rows zips earnings and deductions.
func (d Document) Rows() []Row {
	n := max(len(d.Earnings), len(d.Deductions))
	rows := make([]Row, n)
	for i := range rows {
		if i < len(d.Earnings) {
			rows[i].Earning = &d.Earnings[i]
		}
		if i < len(d.Deductions) {
			rows[i].Deduction = &d.Deductions[i]
		}
	}
	return rows
}

func lines(l core.Ledger) []Line {
	items := l.Items()
	out := make([]Line, len(items))
	for i, it := range items {
		out[i] = Line{Title: it.Title, Amount: core.FormatINR(core.ParseAmount(it.Amount))}
	}
	return out
}
