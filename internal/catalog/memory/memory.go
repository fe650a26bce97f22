package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"payslip/internal/catalog"
	"payslip/internal/core"
)

type entry struct {
	title string
	uses  int
	order int
}

type Store struct {
	mu     sync.Mutex
	seed   core.Seed
	titles map[core.Kind][]*entry
	next   int
}

func New(seed core.Seed) *Store {
	s := &Store{
		seed: core.Seed{
			Earnings:   catalog.Dedupe(seed.Earnings),
			Deductions: catalog.Dedupe(seed.Deductions),
		},
		titles: map[core.Kind][]*entry{},
	}
	for _, t := range s.seed.Earnings {
		s.add(core.Earning, t)
	}
	for _, t := range s.seed.Deductions {
		s.add(core.Deduction, t)
	}
	return s
}

// NewFromFile builds a store from a YAML seed file, falling back to the
// built-in titles when the file does not exist.
func NewFromFile(path string) (*Store, error) {
	seed, err := catalog.LoadSeed(path)
	if err != nil {
		return nil, err
	}
	return New(seed), nil
}

func (s *Store) Seed(_ context.Context) (core.Seed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Seed{
		Earnings:   append([]string(nil), s.seed.Earnings...),
		Deductions: append([]string(nil), s.seed.Deductions...),
	}, nil
}

func (s *Store) Suggestions(_ context.Context, kind core.Kind) ([]string, error) {
	if !kind.IsValid() {
		return nil, core.ErrInvalidKind
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append([]*entry(nil), s.titles[kind]...)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].uses != entries[j].uses {
			return entries[i].uses > entries[j].uses
		}
		return entries[i].order < entries[j].order
	})
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.title
	}
	return out, nil
}

// Record bumps the use count of title, adding it if unknown. Blank titles
// are ignored.
func (s *Store) Record(_ context.Context, kind core.Kind, title string) error {
	if !kind.IsValid() {
		return core.ErrInvalidKind
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(kind, title).uses++
	return nil
}

func (s *Store) add(kind core.Kind, title string) *entry {
	for _, e := range s.titles[kind] {
		if e.title == title {
			return e
		}
	}
	e := &entry{title: title, order: s.next}
	s.next++
	s.titles[kind] = append(s.titles[kind], e)
	return e
}
