package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"payslip/internal/core"
	"payslip/internal/export"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{64, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"closed channel", errors.New("channel closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"validation error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "payslip", queueName: "slip_exports"}

	if client.isCircuitOpen() {
		t.Fatal("circuit breaker should be closed initially")
	}

	for i := 0; i < maxFailures-1; i++ {
		client.recordFailure()
	}
	if client.isCircuitOpen() {
		t.Fatal("circuit should stay closed below the failure threshold")
	}
	client.recordFailure()
	if !client.isCircuitOpen() {
		t.Fatal("circuit should open at the failure threshold")
	}

	client.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if client.isCircuitOpen() {
		t.Fatal("circuit should half-open after the timeout")
	}
	if atomic.LoadInt32(&client.state) != StateHalfOpen {
		t.Fatalf("state = %d, want half-open", client.state)
	}

	client.recordFailure()
	if !client.isCircuitOpen() {
		t.Fatal("a failure while half-open should reopen the circuit")
	}

	client.recordSuccess()
	if client.isCircuitOpen() || atomic.LoadInt64(&client.failureCount) != 0 {
		t.Fatal("success should close the circuit and reset failures")
	}
}

func TestClient_PublishExport_FailsFast(t *testing.T) {
	client := &Client{exchangeName: "payslip", queueName: "slip_exports"}
	msg := NewExportRequest("d1", export.Document{FileName: "x"})

	t.Run("open circuit", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now()

		err := client.PublishExport(context.Background(), msg)
		if !errors.Is(err, ErrCircuitOpen) || !strings.Contains(err.Error(), "circuit breaker is open") {
			t.Fatalf("err = %v, want ErrCircuitOpen", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		client.recordSuccess()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := client.PublishExport(ctx, msg); err != context.Canceled {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	})
}

func TestClient_ConsumeStopsOnContext(t *testing.T) {
	client := &Client{exchangeName: "payslip", queueName: "slip_exports"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.ConsumeExports(ctx, func(context.Context, *ExportRequest) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestExportRequest_JSON(t *testing.T) {
	s := core.NewSlip(core.DefaultSeed(), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	s = core.Apply(s, core.SetAmount(core.Earning, 1, "1500.5"))
	doc := export.NewDocument("Acme", s, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))

	b, err := NewExportRequest("d1", doc).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := ExportRequestFromJSON(b)
	if err != nil {
		t.Fatalf("ExportRequestFromJSON: %v", err)
	}
	if got.DraftID != "d1" || got.Document.NetPay != "₹1,500.50" || got.Document.Details.Period.Month != "March" {
		t.Fatalf("decoded %+v", got)
	}
	if len(got.Document.Earnings) != len(doc.Earnings) {
		t.Fatalf("earnings lost in transit")
	}
}

func TestExportRequest_RejectsBadInput(t *testing.T) {
	for _, body := range []string{`{"version":`, `{"version": 99}`} {
		if _, err := ExportRequestFromJSON([]byte(body)); err == nil {
			t.Errorf("ExportRequestFromJSON(%s) should fail", body)
		}
	}
}
