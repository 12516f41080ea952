package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cardiopredict/cardiopredict/internal/cache"
	"github.com/cardiopredict/cardiopredict/internal/metrics"
	"github.com/cardiopredict/cardiopredict/internal/model"
	"github.com/cardiopredict/cardiopredict/internal/repository"
	"github.com/cardiopredict/cardiopredict/internal/scorer"
)

// PredictionInput is an unvalidated feature payload.
// Pointers distinguish a missing field from a zero value.
type PredictionInput struct {
	Age             *int     `json:"age" validate:"required,gt=0,max=2147483647"`
	CigsPerDay      *int     `json:"cigsPerDay" validate:"required,gte=0,max=2147483647"`
	PrevalentStroke *int     `json:"prevalentStroke" validate:"required,oneof=0 1"`
	SysBP           *float64 `json:"sysBP" validate:"required,gt=0"`
	DiaBP           *float64 `json:"diaBP" validate:"required,gt=0"`
	HeartRate       *float64 `json:"heartRate" validate:"required,gt=0"`
	Glucose         *float64 `json:"glucose" validate:"required,gt=0"`
}

// Features validates the input and returns the feature set.
func (in PredictionInput) Features() (model.Features, error) {
	if err := validateStruct(in); err != nil {
		return model.Features{}, err
	}
	return model.Features{
		Age:             *in.Age,
		CigsPerDay:      *in.CigsPerDay,
		PrevalentStroke: *in.PrevalentStroke,
		SysBP:           *in.SysBP,
		DiaBP:           *in.DiaBP,
		HeartRate:       *in.HeartRate,
		Glucose:         *in.Glucose,
	}, nil
}

// PredictionService scores feature sets and manages each caller's history.
// Every method is scoped to the caller passed in; a nil caller is rejected
// before any other work.
type PredictionService struct {
	store   PredictionStore
	scorer  scorer.Scorer
	cache   PredictionCache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewPredictionService creates a new PredictionService.
// listCache may be nil to disable caching.
func NewPredictionService(store PredictionStore, sc scorer.Scorer, listCache PredictionCache, recorder metrics.Recorder, logger *slog.Logger) *PredictionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionService{
		store:   store,
		scorer:  sc,
		cache:   listCache,
		metrics: recorder,
		logger:  logger,
	}
}

// List returns the caller's predictions in insertion order.
func (s *PredictionService) List(ctx context.Context, caller *model.Claims) ([]*model.Prediction, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}

	var (
		generation int64
		cacheable  bool
	)
	if s.cache != nil {
		cached, err := s.cache.GetPredictionList(ctx, caller.UserID)
		if err == nil {
			s.metrics.IncListCacheHit()
			return cached, nil
		}
		s.metrics.IncListCacheMiss()
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("prediction list cache read failed", "user_id", caller.UserID, "error", err)
		}

		// The generation must be read before the store so a write that lands
		// in between makes the snapshot below stale.
		generation, err = s.cache.PredictionListGeneration(ctx, caller.UserID)
		if err != nil {
			s.logger.Warn("prediction list cache generation read failed", "user_id", caller.UserID, "error", err)
		} else {
			cacheable = true
		}
	}

	predictions, err := s.store.ListPredictions(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	if cacheable {
		stored, err := s.cache.SetPredictionList(ctx, caller.UserID, generation, predictions)
		if err != nil {
			s.logger.Warn("prediction list cache write failed", "user_id", caller.UserID, "error", err)
		} else if !stored {
			s.logger.Debug("prediction list cache write skipped", "user_id", caller.UserID)
		}
	}

	return predictions, nil
}

// Get returns one of the caller's predictions.
// A row owned by someone else is reported as ErrNotFound.
func (s *PredictionService) Get(ctx context.Context, caller *model.Claims, id int64) (*model.Prediction, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	p, err := s.store.GetPrediction(ctx, repository.OwnedBy(id, caller.UserID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// Create validates input, scores it and stores the result under the caller.
// Nothing is stored unless validation and scoring both succeed.
func (s *PredictionService) Create(ctx context.Context, caller *model.Claims, input PredictionInput) (*model.Prediction, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}

	features, err := input.Features()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := scorer.Score(s.scorer, features.Vector())
	if err != nil {
		return nil, fmt.Errorf("failed to score features: %w", err)
	}
	s.metrics.ObserveScoringDuration(time.Since(start))

	p := &model.Prediction{
		Features: features,
		Result:   result,
		OwnerID:  caller.UserID,
	}
	if err := s.store.CreatePrediction(ctx, p); err != nil {
		return nil, err
	}

	s.invalidate(ctx, caller.UserID)
	s.metrics.IncPredictionCreated()

	return p, nil
}

// Delete removes one of the caller's predictions.
func (s *PredictionService) Delete(ctx context.Context, caller *model.Claims, id int64) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if err := validateID(id); err != nil {
		return err
	}

	if err := s.store.DeletePrediction(ctx, repository.OwnedBy(id, caller.UserID)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.invalidate(ctx, caller.UserID)
	s.metrics.IncPredictionDeleted()

	return nil
}

func (s *PredictionService) invalidate(ctx context.Context, ownerID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePredictionList(ctx, ownerID); err != nil {
		s.logger.Warn("prediction list cache invalidation failed", "user_id", ownerID, "error", err)
	}
}

func validateID(id int64) error {
	if id <= 0 {
		return &ValidationError{Field: "id", Message: "must be greater than 0"}
	}
	return nil
}
