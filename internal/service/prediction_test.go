package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiopredict/cardiopredict/internal/metrics"
	"github.com/cardiopredict/cardiopredict/internal/model"
	"github.com/cardiopredict/cardiopredict/internal/testutil"
	"github.com/cardiopredict/cardiopredict/internal/testutil/memstore"
)

var (
	alice = &model.Claims{UserID: 1, Username: "alice", Role: model.RoleUser}
	bob   = &model.Claims{UserID: 2, Username: "bob", Role: model.RoleUser}
)

func newPredictionService(t *testing.T, listCache PredictionCache) (*PredictionService, *memstore.Store, *metrics.InMemoryRecorder) {
	t.Helper()
	store := memstore.New()
	rec := metrics.NewInMemory()
	svc := NewPredictionService(store, constScorer{out: 1}, listCache, rec, testutil.NoopLogger())
	return svc, store, rec
}

func TestPredictionService_CreateStampsCallerAsOwner(t *testing.T) {
	svc, _, rec := newPredictionService(t, nil)

	p, err := svc.Create(context.Background(), alice, validInput())
	require.NoError(t, err)

	assert.Positive(t, p.ID)
	assert.Equal(t, alice.UserID, p.OwnerID)
	assert.Equal(t, 1.0, p.Result)
	assert.Equal(t, testutil.ValidFeatures(), p.Features)
	assert.EqualValues(t, 1, rec.Snapshot().PredictionsCreated)
	assert.EqualValues(t, 1, rec.Snapshot().ScoringDurationCount)
}

func TestPredictionService_RejectsMissingCaller(t *testing.T) {
	svc, store, _ := newPredictionService(t, nil)
	ctx := context.Background()

	_, err := svc.List(ctx, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Get(ctx, nil, 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Caller is checked before the payload.
	_, err = svc.Create(ctx, nil, PredictionInput{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.ErrorIs(t, svc.Delete(ctx, nil, 1), ErrUnauthenticated)
	assert.Zero(t, store.PredictionCount())
}

func TestPredictionService_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(in *PredictionInput)
		field string
	}{
		{"missing_age", func(in *PredictionInput) { in.Age = nil }, "age"},
		{"zero_age", func(in *PredictionInput) { in.Age = ptr(0) }, "age"},
		{"negative_cigs", func(in *PredictionInput) { in.CigsPerDay = ptr(-1) }, "cigsPerDay"},
		{"stroke_out_of_range", func(in *PredictionInput) { in.PrevalentStroke = ptr(2) }, "prevalentStroke"},
		{"missing_glucose", func(in *PredictionInput) { in.Glucose = nil }, "glucose"},
		{"zero_sys_bp", func(in *PredictionInput) { in.SysBP = ptr(0.0) }, "sysBP"},
		{"age_beyond_int32", func(in *PredictionInput) { in.Age = ptr(3_000_000_000) }, "age"},
		{"cigs_beyond_int32", func(in *PredictionInput) { in.CigsPerDay = ptr(2_147_483_648) }, "cigsPerDay"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc, store, _ := newPredictionService(t, nil)

			in := validInput()
			test.edit(&in)

			_, err := svc.Create(context.Background(), alice, in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, test.field, verr.Field)
			assert.Zero(t, store.PredictionCount())
		})
	}
}

func TestPredictionService_BoundaryValuesAreAccepted(t *testing.T) {
	tests := []struct {
		name string
		edit func(in *PredictionInput)
	}{
		{"age_one", func(in *PredictionInput) { in.Age = ptr(1) }},
		{"zero_cigs", func(in *PredictionInput) { in.CigsPerDay = ptr(0) }},
		{"no_stroke", func(in *PredictionInput) { in.PrevalentStroke = ptr(0) }},
		{"stroke", func(in *PredictionInput) { in.PrevalentStroke = ptr(1) }},
		{"max_int32_age", func(in *PredictionInput) { in.Age = ptr(2_147_483_647) }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc, store, _ := newPredictionService(t, nil)

			in := validInput()
			test.edit(&in)

			p, err := svc.Create(context.Background(), alice, in)
			require.NoError(t, err)
			assert.Equal(t, *in.Age, p.Age)
			assert.Equal(t, *in.PrevalentStroke, p.PrevalentStroke)
			assert.Equal(t, 1, store.PredictionCount())
		})
	}
}

func TestPredictionService_ScorerFailureStoresNothing(t *testing.T) {
	store := memstore.New()
	svc := NewPredictionService(store, constScorer{err: errors.New("boom")}, nil, nil, testutil.NoopLogger())

	_, err := svc.Create(context.Background(), alice, validInput())
	require.Error(t, err)
	assert.Zero(t, store.PredictionCount())
}

func TestPredictionService_OwnerIsolation(t *testing.T) {
	svc, _, _ := newPredictionService(t, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, alice, validInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, bob, p.ID), ErrNotFound)

	list, err := svc.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := svc.Get(ctx, alice, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestPredictionService_DeleteThenGetIsNotFound(t *testing.T) {
	svc, _, rec := newPredictionService(t, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, alice, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, alice, p.ID))
	assert.EqualValues(t, 1, rec.Snapshot().PredictionsDeleted)

	_, err = svc.Get(ctx, alice, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, alice, p.ID), ErrNotFound)
}

func TestPredictionService_ListInInsertionOrder(t *testing.T) {
	svc, _, _ := newPredictionService(t, nil)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		p, err := svc.Create(ctx, alice, validInput())
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	_, err := svc.Create(ctx, bob, validInput())
	require.NoError(t, err)

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, p := range list {
		assert.Equal(t, ids[i], p.ID)
		assert.Equal(t, alice.UserID, p.OwnerID)
	}
}

func TestPredictionService_NonPositiveID(t *testing.T) {
	svc, _, _ := newPredictionService(t, nil)
	ctx := context.Background()

	for _, id := range []int64{0, -5} {
		_, err := svc.Get(ctx, alice, id)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "id", verr.Field)

		require.ErrorAs(t, svc.Delete(ctx, alice, id), &verr)
	}
}

func TestPredictionService_ListCache(t *testing.T) {
	c := memstore.NewCache()
	svc, _, rec := newPredictionService(t, c)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, validInput())
	require.NoError(t, err)

	first, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.EqualValues(t, 1, rec.Snapshot().ListCacheMisses)

	second, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, second, 1)
	assert.EqualValues(t, 1, rec.Snapshot().ListCacheHits)

	// Writes drop the cached list so the next read sees them.
	p, err := svc.Create(ctx, alice, validInput())
	require.NoError(t, err)

	third, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, third, 2)

	require.NoError(t, svc.Delete(ctx, alice, p.ID))
	fourth, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, fourth, 1)
	assert.Equal(t, 2, c.Invalidated())
}

func TestPredictionService_ListCacheErrorFallsBackToStore(t *testing.T) {
	c := memstore.NewCache()
	c.FailGet = errors.New("redis down")
	svc, _, _ := newPredictionService(t, c)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, validInput())
	require.NoError(t, err)

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPredictionService_StoreFailureLeavesCacheAlone(t *testing.T) {
	c := memstore.NewCache()
	store := memstore.New()
	store.FailCreate = errors.New("connection reset")
	svc := NewPredictionService(store, constScorer{out: 1}, c, nil, testutil.NoopLogger())

	_, err := svc.Create(context.Background(), alice, validInput())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Zero(t, c.Invalidated())
}

func TestPredictionService_ListDoesNotCacheSnapshotOlderThanWrite(t *testing.T) {
	tests := []struct {
		name  string
		write func(ctx context.Context, svc *PredictionService, existing *model.Prediction) error
		want  int
	}{
		{
			name: "delete",
			write: func(ctx context.Context, svc *PredictionService, existing *model.Prediction) error {
				return svc.Delete(ctx, alice, existing.ID)
			},
			want: 0,
		},
		{
			name: "create",
			write: func(ctx context.Context, svc *PredictionService, _ *model.Prediction) error {
				_, err := svc.Create(ctx, alice, validInput())
				return err
			},
			want: 2,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := newPausingListStore()
			svc := NewPredictionService(store, constScorer{out: 1}, memstore.NewCache(), nil, testutil.NoopLogger())
			ctx := context.Background()

			existing, err := svc.Create(ctx, alice, validInput())
			require.NoError(t, err)

			done := make(chan []*model.Prediction, 1)
			go func() {
				list, _ := svc.List(ctx, alice)
				done <- list
			}()

			// The read above has its snapshot but has not cached it yet.
			<-store.listed
			require.NoError(t, test.write(ctx, svc, existing))
			close(store.release)
			assert.Len(t, <-done, 1)

			list, err := svc.List(ctx, alice)
			require.NoError(t, err)
			assert.Len(t, list, test.want)
		})
	}
}
