// Package worker renders queued slip exports to disk.
package worker

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"payslip/internal/amqp"
	"payslip/internal/export"
	"payslip/internal/log"
	"payslip/internal/metrics"
)

// Consumer delivers export requests to a handler until ctx is done.
// *amqp.Client implements it.
type Consumer interface {
	ConsumeExports(ctx context.Context, handler func(context.Context, *amqp.ExportRequest) error) error
}

// DocumentWriter persists a rendered document and returns where it went.
type DocumentWriter interface {
	Write(doc export.Document) (string, error)
}

// ExportWorker writes every export request it receives as an HTML file.
type ExportWorker struct {
	consumer    Consumer
	writer      DocumentWriter
	metrics     *metrics.Metrics
	logger      *log.Logger
	concurrency int
}

func NewExportWorker(consumer Consumer, writer DocumentWriter, m *metrics.Metrics, logger *log.Logger, concurrency int) *ExportWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		consumer:    consumer,
		writer:      writer,
		metrics:     m,
		logger:      logger.WithComponent(log.ComponentWorker),
		concurrency: concurrency,
	}
}

// Run starts one consumer per unit of concurrency and blocks until they
// all stop. Cancellation is not reported as an error.
func (w *ExportWorker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		g.Go(func() error {
			err := w.consumer.ConsumeExports(gctx, w.Handle)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	w.logger.InfoContext(ctx, "Export worker running", "consumers", w.concurrency)
	return g.Wait()
}

// Handle renders one request. A document that can never be written is
// logged and acknowledged; any other failure is returned so the message
// is redelivered.
func (w *ExportWorker) Handle(ctx context.Context, msg *amqp.ExportRequest) error {
	path, err := w.writer.Write(msg.Document)
	if err != nil {
		w.metrics.Export(metrics.ResultFailed)
		if errors.Is(err, export.ErrInvalidFileName) {
			w.logger.ErrorContext(ctx, "Dropping export with unusable file name",
				log.FieldDraftID, msg.DraftID,
				log.FieldFileName, msg.Document.FileName,
				log.FieldError, err)
			return nil
		}
		return fmt.Errorf("write export for draft %s: %w", msg.DraftID, err)
	}
	w.metrics.Export(metrics.ResultRendered)

	w.logger.InfoContext(ctx, "Export written",
		log.FieldDraftID, msg.DraftID,
		log.FieldFileName, path,
		log.FieldNetPay, msg.Document.NetPay,
		"queued_at", msg.Timestamp)
	return nil
}
