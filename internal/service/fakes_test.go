package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cardiopredict/cardiopredict/internal/model"
	"github.com/cardiopredict/cardiopredict/internal/testutil/memstore"
)

// stubIssuer issues "token-<username>".
type stubIssuer struct{}

func (stubIssuer) Issue(user *model.User) (string, time.Time, error) {
	return "token-" + user.Username, time.Now().Add(20 * time.Minute), nil
}

// constScorer returns out for any vector of the right length.
type constScorer struct {
	out float64
	err error
}

func (s constScorer) Transform(x []float64) ([]float64, error) {
	if len(x) != model.FeatureCount {
		return nil, errors.New("bad dimension")
	}
	return x, nil
}

func (s constScorer) Predict(_ []float64) (float64, error) {
	return s.out, s.err
}

func ptr[T any](v T) *T {
	return &v
}

func validInput() PredictionInput {
	return PredictionInput{
		Age:             ptr(45),
		CigsPerDay:      ptr(10),
		PrevalentStroke: ptr(0),
		SysBP:           ptr(120.5),
		DiaBP:           ptr(80.2),
		HeartRate:       ptr(72.5),
		Glucose:         ptr(95.3),
	}
}

// pausingListStore holds the first ListPredictions call after it has read
// the store, until release is closed.
type pausingListStore struct {
	*memstore.Store
	listed  chan struct{}
	release chan struct{}
	once    sync.Once
}

func newPausingListStore() *pausingListStore {
	return &pausingListStore{
		Store:   memstore.New(),
		listed:  make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *pausingListStore) ListPredictions(ctx context.Context, ownerID int64) ([]*model.Prediction, error) {
	list, err := s.Store.ListPredictions(ctx, ownerID)
	s.once.Do(func() {
		close(s.listed)
		<-s.release
	})
	return list, err
}
