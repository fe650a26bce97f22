package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"payslip/internal/amqp"
	"payslip/internal/cache"
	"payslip/internal/catalog"
	"payslip/internal/core"
	"payslip/internal/export"
	"payslip/internal/log"
	"payslip/internal/metrics"
)

var (
	ErrDraftNotFound  = errors.New("draft not found")
	ErrExportDisabled = errors.New("export queue not configured")
	ErrInvalidCommand = errors.New("invalid ledger command")
)

// ExportPublisher queues export requests; *amqp.Client implements it.
type ExportPublisher interface {
	PublishExport(ctx context.Context, msg *amqp.ExportRequest) error
}

// Draft is a slip being edited, addressed by a random id.
type Draft struct {
	ID        string
	Slip      core.Slip
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Config struct {
	TTL      time.Duration
	Capacity int
	Company  string
}

// SlipService owns the in-memory drafts. Every edit is a read-modify-write
// under the cache lock, so concurrent requests on one draft never lose
// updates.
type SlipService struct {
	drafts    *cache.LRUCache[Draft]
	catalog   catalog.Catalog
	publisher ExportPublisher
	metrics   *metrics.Metrics
	logger    *log.Logger
	company   string
	now       func() time.Time
}

// Option customises a SlipService.
type Option func(*SlipService)

func WithPublisher(p ExportPublisher) Option {
	return func(s *SlipService) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *SlipService) { s.metrics = m }
}

func WithLogger(l *log.Logger) Option {
	return func(s *SlipService) { s.logger = l.WithComponent(log.ComponentSlip) }
}

func WithClock(now func() time.Time) Option {
	return func(s *SlipService) { s.now = now }
}

func NewSlipService(cfg Config, cat catalog.Catalog, opts ...Option) *SlipService {
	s := &SlipService{
		catalog: cat,
		company: cfg.Company,
		now:     time.Now,
		logger:  log.New(log.DefaultConfig()).WithComponent(log.ComponentSlip),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}

	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 500
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	s.drafts = cache.NewLRUCache[Draft](capacity, ttl,
		cache.WithClock[Draft](func() time.Time { return s.now() }),
		cache.WithEvictHook(func(_ string, _ Draft) {
			s.metrics.DraftsActive.Dec()
			s.metrics.DraftsEvicted.Inc()
		}),
	)
	return s
}

// Drafts exposes the draft store for periodic expiry sweeps.
func (s *SlipService) Drafts() cache.Cleaner {
	return s.drafts
}

// NewDraft opens a slip seeded from the catalog. A catalog failure falls
// back to the built-in titles.
func (s *SlipService) NewDraft(ctx context.Context) (Draft, error) {
	seed, err := s.catalog.Seed(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Catalog seed unavailable, using built-in titles", log.FieldError, err)
		seed = core.DefaultSeed()
	}

	now := s.now()
	d := Draft{
		ID:        uuid.NewString(),
		Slip:      core.NewSlip(seed, now),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.drafts.Set(d.ID, d)
	s.metrics.DraftsCreated.Inc()
	s.metrics.DraftsActive.Inc()

	s.logger.InfoContext(ctx, "Draft created",
		log.NewFields().WithDraft(d.ID, d.Slip.Details.Period.Month, d.Slip.Details.Period.Year).ToSlice()...)
	return d, nil
}

func (s *SlipService) Get(_ context.Context, id string) (Draft, error) {
	d, ok := s.drafts.Get(id)
	if !ok {
		return Draft{}, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	return d, nil
}

// UpdateDetails replaces the free-form fields of a draft. The pay period
// must name a real month and a four-digit year.
func (s *SlipService) UpdateDetails(ctx context.Context, id string, details core.Details) (Draft, error) {
	month, ok := core.ParseMonth(details.Period.Month)
	if ok {
		details.Period.Month = month.String()
	}
	if err := details.Period.Validate(); err != nil {
		return Draft{}, err
	}

	d, err := s.update(id, func(d Draft) Draft {
		d.Slip.Details = details
		return d
	})
	if err != nil {
		return Draft{}, err
	}
	s.logger.DebugContext(ctx, "Draft details updated", log.FieldDraftID, id)
	return d, nil
}

// Apply runs a ledger command against a draft. Titles introduced by add
// and rename are recorded in the catalog; a recording failure is logged
// and otherwise ignored.
func (s *SlipService) Apply(ctx context.Context, id string, cmd core.Command) (Draft, error) {
	if err := validateCommand(cmd); err != nil {
		return Draft{}, err
	}

	d, err := s.update(id, func(d Draft) Draft {
		d.Slip = core.Apply(d.Slip, cmd)
		return d
	})
	if err != nil {
		return Draft{}, err
	}
	s.metrics.CommandApplied(string(cmd.Op), string(cmd.Kind))

	if (cmd.Op == core.OpAdd || cmd.Op == core.OpRename) && strings.TrimSpace(cmd.Title) != "" {
		if err := s.catalog.Record(ctx, cmd.Kind, strings.TrimSpace(cmd.Title)); err != nil {
			s.logger.WarnContext(ctx, "Failed to record title", log.FieldKind, cmd.Kind, log.FieldError, err)
		}
	}
	return d, nil
}

func (s *SlipService) Summary(ctx context.Context, id string) (core.Summary, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return core.Summary{}, err
	}
	return d.Slip.Summarize(), nil
}

// Document snapshots a draft for rendering.
func (s *SlipService) Document(ctx context.Context, id string) (export.Document, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return export.Document{}, err
	}
	return export.NewDocument(s.company, d.Slip, s.now()), nil
}

// Export queues the draft for rendering by the export worker and returns
// the file name the worker will write.
func (s *SlipService) Export(ctx context.Context, id string) (string, error) {
	if s.publisher == nil {
		return "", ErrExportDisabled
	}
	doc, err := s.Document(ctx, id)
	if err != nil {
		return "", err
	}

	if err := s.publisher.PublishExport(ctx, amqp.NewExportRequest(id, doc)); err != nil {
		s.metrics.Export(metrics.ResultFailed)
		return "", fmt.Errorf("queue export: %w", err)
	}
	s.metrics.Export(metrics.ResultQueued)

	s.logger.InfoContext(ctx, "Export queued",
		log.FieldDraftID, id,
		log.FieldFileName, doc.FileName,
		log.FieldNetPay, doc.NetPay)
	return doc.FileName, nil
}

// ExportEnabled reports whether Export can succeed at all.
func (s *SlipService) ExportEnabled() bool {
	return s.publisher != nil
}

// Suggestions lists known titles for kind. Errors yield an empty list.
func (s *SlipService) Suggestions(ctx context.Context, kind core.Kind) []string {
	titles, err := s.catalog.Suggestions(ctx, kind)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load suggestions", log.FieldKind, kind, log.FieldError, err)
		return nil
	}
	return titles
}

func (s *SlipService) update(id string, fn func(Draft) Draft) (Draft, error) {
	var out Draft
	ok := s.drafts.Update(id, func(cur Draft, found bool) (Draft, bool) {
		if !found {
			return cur, false
		}
		out = fn(cur)
		out.UpdatedAt = s.now()
		return out, true
	})
	if !ok {
		return Draft{}, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	return out, nil
}

func validateCommand(cmd core.Command) error {
	if !cmd.Kind.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidKind, cmd.Kind)
	}
	switch cmd.Op {
	case core.OpAdd, core.OpRemove, core.OpRename, core.OpSetAmount:
		return nil
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidCommand, cmd.Op)
	}
}
