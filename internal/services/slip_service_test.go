package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"payslip/internal/amqp"
	"payslip/internal/catalog/memory"
	"payslip/internal/core"
	"payslip/internal/log"
	"payslip/internal/metrics"
)

type failingCatalog struct {
	*memory.Store
}

func (failingCatalog) Seed(context.Context) (core.Seed, error) {
	return core.Seed{}, errors.New("db down")
}

func (failingCatalog) Record(context.Context, core.Kind, string) error {
	return errors.New("db down")
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*amqp.ExportRequest
	err  error
}

func (p *fakePublisher) PublishExport(_ context.Context, msg *amqp.ExportRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func quietLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError, Output: &bytes.Buffer{}})
}

func newService(t *testing.T, opts ...Option) (*SlipService, *memory.Store) {
	t.Helper()
	store := memory.New(core.DefaultSeed())
	opts = append([]Option{WithLogger(quietLogger()), WithClock(func() time.Time { return testNow })}, opts...)
	return NewSlipService(Config{TTL: time.Hour, Capacity: 10, Company: "Acme"}, store, opts...), store
}

func TestNewDraft(t *testing.T) {
	m := metrics.New()
	svc, _ := newService(t, WithMetrics(m))

	d, err := svc.NewDraft(context.Background())
	if err != nil {
		t.Fatalf("NewDraft: %v", err)
	}
	if d.ID == "" || d.Slip.Earnings.Len() != 5 || d.Slip.Details.Period.Month != "March" {
		t.Fatalf("unexpected draft %+v", d)
	}
	got, err := svc.Get(context.Background(), d.ID)
	if err != nil || got.ID != d.ID {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if testutil.ToFloat64(m.DraftsActive) != 1 || testutil.ToFloat64(m.DraftsCreated) != 1 {
		t.Fatalf("draft gauges not updated")
	}
}

func TestNewDraftFallsBackWhenCatalogFails(t *testing.T) {
	svc := NewSlipService(Config{}, failingCatalog{memory.New(core.DefaultSeed())}, WithLogger(quietLogger()))
	d, err := svc.NewDraft(context.Background())
	if err != nil {
		t.Fatalf("NewDraft: %v", err)
	}
	if d.Slip.Deductions.Len() != len(core.DefaultDeductionTitles) {
		t.Fatalf("expected built-in seed, got %+v", d.Slip.Deductions.Items())
	}
}

func TestGetUnknownDraft(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("err = %v, want ErrDraftNotFound", err)
	}
	if _, err := svc.Apply(context.Background(), "nope", core.AddItem(core.Earning, "x")); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("Apply err = %v, want ErrDraftNotFound", err)
	}
}

func TestApplyAndSummary(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	svc, store := newService(t, WithMetrics(m))
	d, _ := svc.NewDraft(ctx)

	cmds := []core.Command{
		core.SetAmount(core.Earning, 1, "100000"),
		core.SetAmount(core.Earning, 2, "23456.50"),
		core.AddItem(core.Deduction, "Income Tax"),
		core.SetAmount(core.Deduction, 2, "3456.5"),
		core.RemoveItem(core.Deduction, 1),
	}
	for _, cmd := range cmds {
		if _, err := svc.Apply(ctx, d.ID, cmd); err != nil {
			t.Fatalf("Apply(%+v): %v", cmd, err)
		}
	}

	sum, err := svc.Summary(ctx, d.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.NetPay.String() != "120000" {
		t.Fatalf("NetPay = %s, want 120000", sum.NetPay)
	}
	if sum.NetPayWords != "One Lakh Twenty Thousand Rupees" {
		t.Fatalf("NetPayWords = %q", sum.NetPayWords)
	}

	if got := testutil.ToFloat64(m.Commands.WithLabelValues("set_amount", "earning")); got != 2 {
		t.Fatalf("set_amount/earning = %v", got)
	}

	titles, _ := store.Suggestions(ctx, core.Deduction)
	if len(titles) == 0 || titles[0] != "Income Tax" {
		t.Fatalf("added title not recorded: %v", titles)
	}
}

func TestApplyRejectsInvalidCommands(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	d, _ := svc.NewDraft(ctx)

	if _, err := svc.Apply(ctx, d.ID, core.Command{Op: core.OpAdd, Kind: "bonus", Title: "x"}); !errors.Is(err, core.ErrInvalidKind) {
		t.Fatalf("err = %v, want ErrInvalidKind", err)
	}
	if _, err := svc.Apply(ctx, d.ID, core.Command{Op: "explode", Kind: core.Earning}); !errors.Is(err, ErrInvalidCommand) {
		t.Fatalf("err = %v, want ErrInvalidCommand", err)
	}
}

func TestApplyIgnoresRecordFailure(t *testing.T) {
	ctx := context.Background()
	svc := NewSlipService(Config{}, failingCatalog{memory.New(core.DefaultSeed())}, WithLogger(quietLogger()))
	d, _ := svc.NewDraft(ctx)
	got, err := svc.Apply(ctx, d.ID, core.AddItem(core.Earning, "Overtime"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.Slip.Earnings.Len() != 6 {
		t.Fatalf("item not added")
	}
}

func TestConcurrentApply(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	d, _ := svc.NewDraft(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Apply(ctx, d.ID, core.AddItem(core.Earning, "Bonus"))
		}()
	}
	wg.Wait()

	got, _ := svc.Get(ctx, d.ID)
	if got.Slip.Earnings.Len() != 25 {
		t.Fatalf("earnings = %d, want 25", got.Slip.Earnings.Len())
	}
	seen := map[int]bool{}
	for _, it := range got.Slip.Earnings.Items() {
		if seen[it.ID] {
			t.Fatalf("duplicate id %d", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestUpdateDetails(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	d, _ := svc.NewDraft(ctx)

	details := d.Slip.Details
	details.Employee.Name = "Asha Rao"
	details.Period = core.Period{Month: "april", Year: 2024}

	got, err := svc.UpdateDetails(ctx, d.ID, details)
	if err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	if got.Slip.Details.Employee.Name != "Asha Rao" || got.Slip.Details.Period.Month != "April" {
		t.Fatalf("details = %+v", got.Slip.Details)
	}

	details.Period.Month = "Smarch"
	if _, err := svc.UpdateDetails(ctx, d.ID, details); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("err = %v, want ErrInvalidMonth", err)
	}
	details.Period = core.Period{Month: "May", Year: 25}
	if _, err := svc.UpdateDetails(ctx, d.ID, details); !errors.Is(err, core.ErrInvalidYear) {
		t.Fatalf("err = %v, want ErrInvalidYear", err)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without publisher", func(t *testing.T) {
		svc, _ := newService(t)
		d, _ := svc.NewDraft(ctx)
		if svc.ExportEnabled() {
			t.Fatalf("ExportEnabled should be false")
		}
		if _, err := svc.Export(ctx, d.ID); !errors.Is(err, ErrExportDisabled) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("publishes snapshot", func(t *testing.T) {
		pub := &fakePublisher{}
		m := metrics.New()
		svc, _ := newService(t, WithPublisher(pub), WithMetrics(m))
		d, _ := svc.NewDraft(ctx)
		details := d.Slip.Details
		details.Employee.Name = "Asha Rao"
		svc.UpdateDetails(ctx, d.ID, details)
		svc.Apply(ctx, d.ID, core.SetAmount(core.Earning, 1, "500"))

		name, err := svc.Export(ctx, d.ID)
		if err != nil {
			t.Fatalf("Export: %v", err)
		}
		if name != "Salary_Slip_Asha Rao_March_2025" {
			t.Fatalf("file name = %q", name)
		}
		if len(pub.msgs) != 1 || pub.msgs[0].Document.NetPay != "₹500.00" || pub.msgs[0].Document.Company != "Acme" {
			t.Fatalf("published %+v", pub.msgs)
		}
		if testutil.ToFloat64(m.Exports.WithLabelValues(metrics.ResultQueued)) != 1 {
			t.Fatalf("queued export not counted")
		}
	})

	t.Run("publish failure", func(t *testing.T) {
		m := metrics.New()
		svc, _ := newService(t, WithPublisher(&fakePublisher{err: errors.New("broker down")}), WithMetrics(m))
		d, _ := svc.NewDraft(ctx)
		if _, err := svc.Export(ctx, d.ID); err == nil {
			t.Fatalf("expected error")
		}
		if testutil.ToFloat64(m.Exports.WithLabelValues(metrics.ResultFailed)) != 1 {
			t.Fatalf("failed export not counted")
		}
	})
}

func TestDraftsExpire(t *testing.T) {
	ctx := context.Background()
	now := testNow
	m := metrics.New()
	svc := NewSlipService(Config{TTL: time.Minute, Capacity: 10}, memory.New(core.DefaultSeed()),
		WithLogger(quietLogger()), WithMetrics(m), WithClock(func() time.Time { return now }))

	d, _ := svc.NewDraft(ctx)
	now = now.Add(2 * time.Minute)
	if n := svc.Drafts().CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired = %d, want 1", n)
	}
	if _, err := svc.Get(ctx, d.ID); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expired draft still readable")
	}
	if testutil.ToFloat64(m.DraftsActive) != 0 || testutil.ToFloat64(m.DraftsEvicted) != 1 {
		t.Fatalf("eviction not reflected in metrics")
	}
}
