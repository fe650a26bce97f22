package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"payslip/internal/amqp"
	"payslip/internal/core"
	"payslip/internal/export"
	"payslip/internal/log"
	"payslip/internal/metrics"
)

// chanConsumer hands out requests from a shared channel and returns once
// it is drained, recording handler errors.
type chanConsumer struct {
	ch chan *amqp.ExportRequest

	mu   sync.Mutex
	errs []error
}

func (c *chanConsumer) ConsumeExports(ctx context.Context, handler func(context.Context, *amqp.ExportRequest) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-c.ch:
			if !ok {
				return nil
			}
			if err := handler(ctx, msg); err != nil {
				c.mu.Lock()
				c.errs = append(c.errs, err)
				c.mu.Unlock()
			}
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write(export.Document) (string, error) {
	return "", errors.New("disk full")
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError, Output: io.Discard})
}

func request(t *testing.T, name string, year int) *amqp.ExportRequest {
	t.Helper()
	s := core.NewSlip(core.DefaultSeed(), time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC))
	s.Details.Employee.Name = name
	s = core.Apply(s, core.SetAmount(core.Earning, 1, "42000"))
	return amqp.NewExportRequest("draft-"+name, export.NewDocument("Acme", s, time.Now()))
}

func TestRunWritesEveryRequest(t *testing.T) {
	r, err := export.NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	m := metrics.New()

	c := &chanConsumer{ch: make(chan *amqp.ExportRequest, 3)}
	c.ch <- request(t, "Asha", 2025)
	c.ch <- request(t, "Ravi", 2025)
	c.ch <- request(t, "Meera", 2024)
	close(c.ch)

	w := NewExportWorker(c, &export.Writer{Dir: dir, Renderer: r}, m, quietLogger(), 2)
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(c.errs) != 0 {
		t.Fatalf("handler errors: %v", c.errs)
	}
	for _, name := range []string{
		"Salary_Slip_Asha_March_2025.html",
		"Salary_Slip_Ravi_March_2025.html",
		"Salary_Slip_Meera_March_2024.html",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	if got := testutil.ToFloat64(m.Exports.WithLabelValues(metrics.ResultRendered)); got != 3 {
		t.Fatalf("rendered = %v, want 3", got)
	}
}

func TestHandleDropsUnusableFileNames(t *testing.T) {
	r, _ := export.NewRenderer()
	m := metrics.New()
	w := NewExportWorker(nil, &export.Writer{Dir: t.TempDir(), Renderer: r}, m, quietLogger(), 1)

	msg := request(t, "Asha", 2025)
	msg.Document.FileName = "../outside"
	if err := w.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle = %v, want nil so the message is acknowledged", err)
	}
	if got := testutil.ToFloat64(m.Exports.WithLabelValues(metrics.ResultFailed)); got != 1 {
		t.Fatalf("failed = %v, want 1", got)
	}
}

func TestHandleAcksOverlongFileNames(t *testing.T) {
	r, _ := export.NewRenderer()
	m := metrics.New()
	dir := t.TempDir()
	w := NewExportWorker(nil, &export.Writer{Dir: dir, Renderer: r}, m, quietLogger(), 1)

	msg := request(t, strings.Repeat("a", 300), 2025)
	if err := w.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle = %v, want nil so the message is acknowledged", err)
	}
	if got := testutil.ToFloat64(m.Exports.WithLabelValues(metrics.ResultFailed)); got != 1 {
		t.Fatalf("failed = %v, want 1", got)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("unexpected files: %v", entries)
	}
}

func TestHandleReturnsWriteErrors(t *testing.T) {
	m := metrics.New()
	w := NewExportWorker(nil, failingWriter{}, m, quietLogger(), 1)
	if err := w.Handle(context.Background(), request(t, "Asha", 2025)); err == nil {
		t.Fatalf("expected error for redelivery")
	}
	if got := testutil.ToFloat64(m.Exports.WithLabelValues(metrics.ResultFailed)); got != 1 {
		t.Fatalf("failed = %v, want 1", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	c := &chanConsumer{ch: make(chan *amqp.ExportRequest)}
	w := NewExportWorker(c, failingWriter{}, nil, quietLogger(), 3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run after cancel = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop")
	}
}
