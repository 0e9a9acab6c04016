package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/ledger"
	"erpledger/internal/infrastructure/storage/memory"
	"erpledger/internal/infrastructure/storage/snapshot"
)

// bucketStore keeps buckets in a map and can be told to fail.
type bucketStore struct {
	mu      sync.Mutex
	buckets map[string]snapshot.Bucket
	fail    bool
	saves   int
}

func newBucketStore() *bucketStore {
	return &bucketStore{buckets: map[string]snapshot.Bucket{}}
}

func (b *bucketStore) LoadBuckets(ctx context.Context) ([]snapshot.Bucket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]snapshot.Bucket, 0, len(b.buckets))
	for _, name := range snapshot.AllBuckets {
		if bk, ok := b.buckets[name]; ok {
			out = append(out, bk)
		}
	}
	return out, nil
}

func (b *bucketStore) SaveBuckets(ctx context.Context, buckets []snapshot.Bucket) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errors.New("disk full")
	}
	b.saves++
	for _, bk := range buckets {
		b.buckets[bk.Name] = bk
	}
	return nil
}

func (b *bucketStore) Close() error { return nil }

func newPersistentStore(t *testing.T, ps snapshot.Store) *memory.Store {
	t.Helper()
	codec, err := snapshot.NewCodec(0)
	require.NoError(t, err)
	return memory.New(memory.WithPersistence(ps, codec))
}

func seedComponent(t *testing.T, ctx context.Context, s *memory.Store) *entity.Component {
	t.Helper()
	c := &entity.Component{Name: "Bottle", Unit: "pcs"}
	require.NoError(t, s.Catalog().CreateComponent(ctx, c))
	require.NoError(t, s.Batches().InsertBatch(ctx, c.Ref(), &entity.Batch{
		LotNumber: "SUP-1",
		Quantity:  types.NewQuantity(100),
	}))
	return c
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	c := seedComponent(t, ctx, s)

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		batches, err := s.Batches().ListBatches(ctx, c.Ref())
		require.NoError(t, err)
		b := batches[0]
		b.Quantity = types.NewQuantity(40)
		require.NoError(t, s.Batches().UpdateBatch(ctx, c.Ref(), b))
		require.NoError(t, s.Batches().InsertBatch(ctx, c.Ref(), &entity.Batch{LotNumber: "SUP-2", Quantity: types.NewQuantity(5)}))
		require.NoError(t, s.Ledger().Append(ctx, entity.LedgerEntry{ID: 1, ItemType: entity.ItemTypeComponent, ItemID: c.ID}))
		_, err = s.NextValue(ctx, "seq:SO_2026")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	batches, err := s.Batches().ListBatches(ctx, c.Ref())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, types.NewQuantity(100), batches[0].Quantity)

	entries, err := s.Ledger().List(ctx, ledger.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	v, err := s.NextValue(ctx, "seq:SO_2026")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v, "sequence must be given back on rollback")
}

func TestRunInTransaction_NestedReusesOuter(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Catalog().CreateComponent(ctx, &entity.Component{Name: "Cap"}))
		return s.RunInTransaction(ctx, func(ctx context.Context) error {
			require.NoError(t, s.Catalog().CreateComponent(ctx, &entity.Component{Name: "Label"}))
			return errors.New("inner failure")
		})
	})
	require.Error(t, err)

	components, err := s.Catalog().ListComponents(ctx)
	require.NoError(t, err)
	assert.Empty(t, components)
}

func TestRunInTransaction_PersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	ps := newBucketStore()
	s := newPersistentStore(t, ps)
	c := seedComponent(t, ctx, s)

	ps.fail = true
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.Batches().InsertBatch(ctx, c.Ref(), &entity.Batch{LotNumber: "SUP-9", Quantity: types.NewQuantity(1)})
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeStorage))

	batches, err := s.Batches().ListBatches(ctx, c.Ref())
	require.NoError(t, err)
	assert.Len(t, batches, 1)
}

func TestLoad_RestoresCommittedState(t *testing.T) {
	ctx := context.Background()
	ps := newBucketStore()
	s := newPersistentStore(t, ps)

	p := &entity.Product{SKU: "WIDGET", Name: "Widget", ShelfLifeDays: 30}
	require.NoError(t, s.Catalog().CreateProduct(ctx, p))
	exp := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Batches().InsertBatch(ctx, p.Ref(), &entity.Batch{
		LotNumber:  "L1",
		Quantity:   types.NewQuantity(12),
		ExpiryDate: &exp,
		Status:     entity.QCSellable,
	}))
	_, err := s.NextValue(ctx, "seq:SO_2026")
	require.NoError(t, err)
	assert.Positive(t, ps.saves)

	restored := newPersistentStore(t, ps)
	require.NoError(t, restored.Load(ctx))

	got, err := restored.Catalog().GetProductBySKU(ctx, "WIDGET")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	require.Len(t, got.Batches, 1)
	assert.Equal(t, types.NewQuantity(12), got.Batches[0].Quantity)
	assert.True(t, got.Batches[0].ExpiryDate.Equal(exp))

	v, err := restored.NextValue(ctx, "seq:SO_2026")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	// ids keep increasing after a restart
	next := &entity.Product{SKU: "GADGET", Name: "Gadget"}
	require.NoError(t, restored.Catalog().CreateProduct(ctx, next))
	assert.Greater(t, next.ID, p.ID)
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	p := &entity.Product{
		SKU:          "SKU-1",
		Name:         "Thing",
		PricingTiers: []entity.PricingTier{{MinQuantity: types.NewQuantity(1), UnitPrice: types.MustMoney("10")}},
	}
	require.NoError(t, s.Catalog().CreateProduct(ctx, p))

	got, err := s.Catalog().GetProduct(ctx, p.ID)
	require.NoError(t, err)
	got.PricingTiers[0].UnitPrice = types.MustMoney("1")

	again, err := s.Catalog().GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, again.PricingTiers[0].UnitPrice.Equal(types.MustMoney("10")))
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Catalog().CreateProduct(ctx, &entity.Product{SKU: "A", Name: "A"}))

	err := s.Catalog().CreateProduct(ctx, &entity.Product{SKU: "A", Name: "Again"})
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyExists))
}

func TestBatchRepo_UnknownItem(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	_, err := s.Batches().ListBatches(ctx, entity.ProductRef(42))
	assert.True(t, apperror.IsNotFound(err))
}

func TestReadOnly_RejectsWrites(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	err := s.ReadOnly(ctx, func(ctx context.Context) error {
		return s.Catalog().CreateComponent(ctx, &entity.Component{Name: "X"})
	})
	require.Error(t, err)
}

func TestRead_WaitsForOpenTransaction(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	written := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.RunInTransaction(ctx, func(ctx context.Context) error {
			c := &entity.Component{Name: "Steel", Unit: "m", UnitCost: types.Zero()}
			if err := s.Catalog().CreateComponent(ctx, c); err != nil {
				return err
			}
			close(written)
			<-release
			return errors.New("abort")
		})
	}()
	<-written

	listed := make(chan []entity.Component, 1)
	go func() {
		list, err := s.Catalog().ListComponents(ctx)
		assert.NoError(t, err)
		listed <- list
	}()

	select {
	case <-listed:
		t.Fatal("read finished while a transaction was still open")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.EqualError(t, <-done, "abort")
	assert.Empty(t, <-listed, "rolled back component must never be visible")
}
