package ledger

import (
	"context"

	"github.com/realtyflow/leadqual/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Store persists invocation records. Implementations must be append-only: no
// update or delete operations are exposed anywhere in this package.
type Store interface {
	Insert(ctx context.Context, rec InvocationRecord) error
	Aggregate(ctx context.Context, f Filter) (Totals, error)
}

// Recorder is the narrow write surface handed to the model call orchestrator.
type Recorder interface {
	Record(ctx context.Context, rec InvocationRecord)
}

// Ledger prices and persists every model invocation. Record never propagates
// a failure to the caller: a lost accounting row degrades silently instead of
// aborting a conversation turn.
type Ledger struct {
	store   Store
	rates   RateTable
	logger  *logging.Logger
	tracer  trace.Tracer
	dropped DropCounter
}

// DropCounter is bumped whenever a ledger write is lost.
type DropCounter interface {
	ObserveLedgerDrop()
}

var _ Recorder = (*Ledger)(nil)

// New wires a ledger around the supplied store.
func New(store Store, rates RateTable, logger *logging.Logger, dropped DropCounter) *Ledger {
	if store == nil {
		panic("ledger: store cannot be nil")
	}
	if rates == nil {
		rates = DefaultRates()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Ledger{
		store:   store,
		rates:   rates,
		logger:  logger,
		tracer:  otel.Tracer("leadqual.internal.ledger"),
		dropped: dropped,
	}
}

// Record finalizes, prices, and appends one invocation record.
func (l *Ledger) Record(ctx context.Context, rec InvocationRecord) {
	ctx, span := l.tracer.Start(ctx, "ledger.record")
	defer span.End()

	rec.Finalize()
	if rec.CostUSD == 0 {
		rec.CostUSD = l.rates.Cost(rec.Tier, rec.PromptTokens, rec.CompletionTokens, rec.CachedTokens)
	}

	if err := l.store.Insert(ctx, rec); err != nil {
		span.RecordError(err)
		l.logger.Error("ledger write failed, dropping record",
			"error", err,
			"tier", rec.Tier,
			"category", string(rec.Category),
			"conversation_id", rec.Attribution.ConversationID,
		)
		if l.dropped != nil {
			l.dropped.ObserveLedgerDrop()
		}
	}
}

// Aggregate returns token and cost totals for the filter.
func (l *Ledger) Aggregate(ctx context.Context, f Filter) (Totals, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.aggregate")
	defer span.End()
	return l.store.Aggregate(ctx, f)
}

// Rates exposes the rate table for callers that price estimates up front.
func (l *Ledger) Rates() RateTable {
	return l.rates
}
