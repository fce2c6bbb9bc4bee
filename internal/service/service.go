// Package service is the entry point for AMM operations. It authorizes the
// caller, runs the engine inside a locked ledger transaction, and once the
// transaction has committed journals and publishes the result.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LeJamon/goAMMd/internal/core/amm"
	"github.com/LeJamon/goAMMd/internal/core/auth"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMMd/internal/storage/relationaldb"
)

// Config holds the optional collaborators of a Service.
type Config struct {
	// Authorizer defaults to a Policy without operators.
	Authorizer auth.Authorizer
	// Journal records committed operations; nil disables History.
	Journal   *relationaldb.Journal
	Publisher EventPublisher
	Logger    *slog.Logger

	// Now is the clock used to stamp events.
	Now func() time.Time
}

// Service executes AMM operations against a ledger.Manager.
type Service struct {
	ledger    *ledger.Manager
	engine    *amm.Engine
	authz     auth.Authorizer
	journal   *relationaldb.Journal
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Service over m.
func New(m *ledger.Manager, cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Authorizer == nil {
		cfg.Authorizer = auth.NewPolicy(nil)
	}
	if cfg.Publisher == nil {
		cfg.Publisher = NoOpPublisher{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		ledger:    m,
		engine:    amm.NewEngine(cfg.Logger),
		authz:     cfg.Authorizer,
		journal:   cfg.Journal,
		publisher: cfg.Publisher,
		logger:    cfg.Logger.With("component", "service"),
		now:       cfg.Now,
	}
}

// PoolRef identifies a pool by its AMM and ordered mint pair.
type PoolRef struct {
	AMM   string       `json:"amm_id"`
	AMint ledger.Asset `json:"a_mint"`
	BMint ledger.Asset `json:"b_mint"`
}

// Keylet returns the key of the referenced pool record.
func (r PoolRef) Keylet() keylet.Keylet {
	return keylet.Pool(keylet.AMM(r.AMM), string(r.AMint), string(r.BMint))
}

func (r PoolRef) validate() error {
	if r.AMM == "" || r.AMint == "" || r.BMint == "" {
		return ErrInvalidParams
	}
	return nil
}

// record journals and publishes a committed operation. The ledger change is
// already durable, so failures here are logged rather than returned.
func (s *Service) record(ctx context.Context, ev *Event) {
	ev.Timestamp = s.now().UTC()
	if s.journal != nil {
		if err := s.journal.Append(ctx, ev.journalEntry()); err != nil {
			s.logger.Warn("failed to journal operation", "type", ev.Type, "error", err)
		}
	}
	s.publisher.Publish(ev)
}

// lockScope returns the account locks an operation on p by caller needs:
// the caller's holdings and the pool's reserves and share supply.
func lockScope(caller ledger.AccountID, p *amm.Pool) []keylet.Keylet {
	return []keylet.Keylet{
		keylet.Account(caller),
		keylet.Account(p.Authority()),
	}
}

type sequenceKey struct{}

// WithSequence returns a copy of ctx under which operations only commit if
// seq is the caller's next sequence, advancing it in the same commit.
func WithSequence(ctx context.Context, seq uint64) context.Context {
	return context.WithValue(ctx, sequenceKey{}, seq)
}

func sequenceFrom(ctx context.Context) (uint64, bool) {
	seq, ok := ctx.Value(sequenceKey{}).(uint64)
	return seq, ok
}

// apply runs fn in a ledger transaction over scope, consuming the caller's
// sequence when ctx carries one. A failed operation leaves the sequence
// unchanged.
func (s *Service) apply(ctx context.Context, caller ledger.AccountID, scope []keylet.Keylet, fn func(ledger.Ledger) error) error {
	seq, ok := sequenceFrom(ctx)
	if !ok {
		return s.ledger.Apply(ctx, scope, fn)
	}

	scope = append(scope[:len(scope):len(scope)], keylet.Account(caller))
	return s.ledger.Apply(ctx, scope, func(l ledger.Ledger) error {
		next, err := l.ReadSequence(caller)
		if err != nil {
			return err
		}
		if seq != next {
			return fmt.Errorf("%w: request has %d, %s expects %d", ErrBadSequence, seq, caller, next)
		}
		if err := fn(l); err != nil {
			return err
		}
		return l.SetSequence(caller, next+1)
	})
}
