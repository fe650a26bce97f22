package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"payslip/internal/core"
)

type seedFile struct {
	Version    int      `yaml:"version"`
	Earnings   []string `yaml:"earnings"`
	Deductions []string `yaml:"deductions"`
}

// LoadSeed reads a YAML seed file. A missing file yields the built-in
// seed; an empty list in the file falls back to the built-in titles for
// that kind.
func LoadSeed(path string) (core.Seed, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.DefaultSeed(), nil
	}
	if err != nil {
		return core.Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(b)
}

// ParseSeed decodes the YAML seed format:
//
//	version: 1
//	earnings: [Basic Salary, House Rent Allowance]
//	deductions: [Professional Tax]
func ParseSeed(b []byte) (core.Seed, error) {
	var sf seedFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return core.Seed{}, fmt.Errorf("parse seed file: %w", err)
	}
	if sf.Version != 1 {
		return core.Seed{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, sf.Version)
	}

	def := core.DefaultSeed()
	seed := core.Seed{
		Earnings:   Dedupe(sf.Earnings),
		Deductions: Dedupe(sf.Deductions),
	}
	if len(seed.Earnings) == 0 {
		seed.Earnings = def.Earnings
	}
	if len(seed.Deductions) == 0 {
		seed.Deductions = def.Deductions
	}
	return seed, nil
}

// Dedupe trims titles and drops blanks and repeats, keeping first-seen
// order.
func Dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
