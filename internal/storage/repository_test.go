package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"payslip/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "catalog.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteSeedMatchesDefaults(t *testing.T) {
	repo := newTestRepo(t)
	seed, err := repo.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if !reflect.DeepEqual(seed, core.DefaultSeed()) {
		t.Fatalf("seed = %+v, want %+v", seed, core.DefaultSeed())
	}
}

func TestSQLiteRecordAndSuggest(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, title := range []string{"Overtime", "Overtime", " Travel Allowance ", ""} {
		if err := repo.Record(ctx, core.Earning, title); err != nil {
			t.Fatalf("Record(%q): %v", title, err)
		}
	}

	got, err := repo.Suggestions(ctx, core.Earning)
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}
	want := []string{"Overtime", "Travel Allowance", "Basic Salary", "House Rent Allowance", "Performance Pay", "Joining Bonus"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Suggestions = %v, want %v", got, want)
	}

	if n, _ := repo.Uses(ctx, core.Earning, "Overtime"); n != 2 {
		t.Fatalf("Uses(Overtime) = %d, want 2", n)
	}
	if n, err := repo.Uses(ctx, core.Deduction, "Overtime"); err != nil || n != 0 {
		t.Fatalf("Uses for another kind = %d, %v, want 0, nil", n, err)
	}

	seed, _ := repo.Seed(ctx)
	for _, title := range seed.Earnings {
		if title == "Overtime" {
			t.Fatalf("recorded titles must not join the seed")
		}
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Record(ctx, core.Deduction, "Income Tax"); err != nil {
		t.Fatal(err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	got, _ := repo.Suggestions(ctx, core.Deduction)
	if len(got) == 0 || got[0] != "Income Tax" {
		t.Fatalf("Suggestions after reopen = %v", got)
	}
}

func TestSQLiteInvalidKind(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.Suggestions(context.Background(), core.Kind("x")); err != core.ErrInvalidKind {
		t.Fatalf("err = %v", err)
	}
}
