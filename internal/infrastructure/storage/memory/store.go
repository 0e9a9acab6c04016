// Package memory provides the transactional in-memory store behind every
// domain repository. Writes inside RunInTransaction are journaled; an error
// from the use case or from snapshot persistence replays the journal so the
// store is left exactly as it was.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/tx"
	"erpledger/internal/infrastructure/storage/snapshot"
	"erpledger/pkg/logger"
)

// errReadOnly is returned when a write is attempted inside ReadOnly.
var errReadOnly = errors.New("write attempted in read-only transaction")

// txState is the journal of one transaction.
type txState struct {
	readOnly bool
	undo     []func()
	dirty    map[string]struct{}
}

func (t *txState) record(undo func()) {
	t.undo = append(t.undo, undo)
}

func (t *txState) touch(buckets ...string) {
	for _, b := range buckets {
		t.dirty[b] = struct{}{}
	}
}

type txKey struct{}

// Store is the single-writer in-memory state. Transactions hold txMu for
// their whole run, and so do reads made outside a transaction, so a reader
// only ever sees committed state.
type Store struct {
	// txMu serialises transactions and outside reads; mu guards st.
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state

	persist snapshot.Store
	codec   *snapshot.Codec
	tracer  trace.Tracer
}

// Option configures a Store.
type Option func(*Store)

// WithPersistence writes dirty buckets to ps after every commit.
func WithPersistence(ps snapshot.Store, codec *snapshot.Codec) Option {
	return func(s *Store) {
		s.persist = ps
		s.codec = codec
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		st:     newState(),
		tracer: otel.Tracer("erpledger/memory"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the state with the persisted snapshot, if any.
func (s *Store) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	buckets, err := s.persist.LoadBuckets(ctx)
	if err != nil {
		return fmt.Errorf("load buckets: %w", err)
	}
	if len(buckets) == 0 {
		return nil
	}
	snap, err := s.codec.Decode(buckets)
	if err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = stateFromSnapshot(snap)

	logger.Info(ctx, "state loaded from snapshot",
		"products", len(snap.Products),
		"components", len(snap.Components),
		"ledger_entries", len(snap.Ledger),
	)
	return nil
}

// RunInTransaction implements tx.Manager.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if t, ok := ctx.Value(txKey{}).(*txState); ok {
		if t.readOnly {
			return errReadOnly
		}
		return fn(ctx)
	}

	ctx, span := s.tracer.Start(ctx, "memory.Transaction",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	s.txMu.Lock()
	defer s.txMu.Unlock()

	t := &txState{dirty: make(map[string]struct{})}
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		s.rollback(t)
		span.SetAttributes(attribute.Int("tx.undo_steps", len(t.undo)))
		return err
	}

	if err := s.flush(ctx, t); err != nil {
		s.rollback(t)
		logger.Error(ctx, "snapshot persistence failed, transaction rolled back", "error", err)
		return apperror.NewStorage(err)
	}
	span.SetAttributes(attribute.Int("tx.dirty_buckets", len(t.dirty)))
	return nil
}

// ReadOnly implements tx.ReadOnlyManager: fn sees no concurrent writers.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, &txState{readOnly: true, dirty: map[string]struct{}{}}))
}

func (s *Store) rollback(t *txState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
}

func (s *Store) flush(ctx context.Context, t *txState) error {
	if s.persist == nil || len(t.dirty) == 0 {
		return nil
	}
	names := make([]string, 0, len(t.dirty))
	for name := range t.dirty {
		names = append(names, name)
	}
	sort.Strings(names)

	s.mu.RLock()
	snap := s.st.export()
	s.mu.RUnlock()

	buckets, err := s.codec.Encode(snap, names)
	if err != nil {
		return err
	}
	return s.persist.SaveBuckets(ctx, buckets)
}

// write runs fn against the state under the caller's transaction, or in a
// transaction of its own when ctx carries none.
func (s *Store) write(ctx context.Context, fn func(st *state, t *txState) error) error {
	t, ok := ctx.Value(txKey{}).(*txState)
	if !ok {
		return s.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.write(ctx, fn)
		})
	}
	if t.readOnly {
		return errReadOnly
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st, t)
}

// read runs fn against the state. Inside a transaction it sees that
// transaction's own writes; outside one it waits for the running writer so
// callers never observe changes that may still be rolled back.
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); !ok {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// put sets m[k] and journals the previous value.
func put[K comparable, V any](t *txState, m map[K]V, k K, v V) {
	prev, existed := m[k]
	m[k] = v
	t.record(func() {
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	})
}

// remove deletes m[k] and journals the previous value.
func remove[K comparable, V any](t *txState, m map[K]V, k K) {
	prev, existed := m[k]
	if !existed {
		return
	}
	delete(m, k)
	t.record(func() { m[k] = prev })
}

var (
	_ tx.Manager         = (*Store)(nil)
	_ tx.ReadOnlyManager = (*Store)(nil)
)
