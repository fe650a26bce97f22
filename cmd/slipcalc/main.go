// Command slipcalc computes a salary slip from a YAML file without the web
// editor.
//
//	slipcalc -f slip.yaml
//	cat slip.yaml | slipcalc -format json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"payslip/internal/core"
	"payslip/internal/export"
)

type slipFile struct {
	Company    string       `yaml:"company"`
	Details    core.Details `yaml:"details"`
	Earnings   []lineFile   `yaml:"earnings"`
	Deductions []lineFile   `yaml:"deductions"`
}

type lineFile struct {
	Title  string `yaml:"title"`
	Amount string `yaml:"amount"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, time.Now()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "slipcalc:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer, now time.Time) error {
	fs := flag.NewFlagSet("slipcalc", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var path, format string
	fs.StringVar(&path, "f", "-", "YAML slip file, - for stdin")
	fs.StringVar(&format, "format", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	company, slip, err := readSlip(in, now)
	if err != nil {
		return err
	}
	doc := export.NewDocument(company, slip, now)

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "text":
		return writeText(stdout, doc)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// readSlip decodes a slip file. Missing details fall back to the defaults
// for now; lines with a blank title are skipped.
func readSlip(r io.Reader, now time.Time) (string, core.Slip, error) {
	var sf slipFile
	if err := yaml.NewDecoder(r).Decode(&sf); err != nil && !errors.Is(err, io.EOF) {
		return "", core.Slip{}, fmt.Errorf("parse slip file: %w", err)
	}

	slip := core.NewSlip(core.Seed{}, now)
	slip.Details = mergeDetails(slip.Details, sf.Details)
	if m, ok := core.ParseMonth(slip.Details.Period.Month); ok {
		slip.Details.Period.Month = m.String()
	}
	if err := slip.Details.Period.Validate(); err != nil {
		return "", core.Slip{}, err
	}

	for _, l := range []struct {
		kind  core.Kind
		lines []lineFile
	}{
		{core.Earning, sf.Earnings},
		{core.Deduction, sf.Deductions},
	} {
		for _, line := range l.lines {
			ledger, _ := slip.Ledger(l.kind)
			next, item, ok := ledger.Add(line.Title)
			if !ok {
				continue
			}
			next = next.SetAmount(item.ID, line.Amount)
			if l.kind == core.Earning {
				slip.Earnings = next
			} else {
				slip.Deductions = next
			}
		}
	}
	return sf.Company, slip, nil
}

func mergeDetails(def, in core.Details) core.Details {
	out := in
	if out.Period.Month == "" {
		out.Period.Month = def.Period.Month
	}
	if out.Period.Year == 0 {
		out.Period.Year = def.Period.Year
	}
	a, d := &out.Attendance, def.Attendance
	a.StandardDays = orDefault(a.StandardDays, d.StandardDays)
	a.PaidDays = orDefault(a.PaidDays, d.PaidDays)
	a.Leaves = orDefault(a.Leaves, d.Leaves)
	a.LOPDays = orDefault(a.LOPDays, d.LOPDays)
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func writeText(w io.Writer, doc export.Document) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", doc.Details.Period.Month, doc.Details.Period.Year)
	if name := doc.Details.Employee.Name; name != "" {
		fmt.Fprintf(&b, "Employee: %s\n", name)
	}
	b.WriteString("\nEarnings\n")
	for _, l := range doc.Earnings {
		fmt.Fprintf(&b, "  %-30s %18s\n", l.Title, l.Amount)
	}
	fmt.Fprintf(&b, "  %-30s %18s\n", "Total Earnings", doc.TotalEarnings)
	b.WriteString("\nDeductions\n")
	for _, l := range doc.Deductions {
		fmt.Fprintf(&b, "  %-30s %18s\n", l.Title, l.Amount)
	}
	fmt.Fprintf(&b, "  %-30s %18s\n", "Total Deductions", doc.TotalDeductions)
	fmt.Fprintf(&b, "\nNet Pay: %s\n%s\n", doc.NetPay, doc.NetPayWords)
	_, err := io.WriteString(w, b.String())
	return err
}
