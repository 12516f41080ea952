package service

import (
	"context"

	"github.com/cardiopredict/cardiopredict/internal/model"
	"github.com/cardiopredict/cardiopredict/internal/repository"
)

// UserStore persists users. *repository.Repository implements it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, user *model.User) error
	UpdateUserPassword(ctx context.Context, id int64, hashedPassword string) error
}

// PredictionStore persists predictions. *repository.Repository implements it.
type PredictionStore interface {
	CreatePrediction(ctx context.Context, p *model.Prediction) error
	ListPredictions(ctx context.Context, ownerID int64) ([]*model.Prediction, error)
	GetPrediction(ctx context.Context, o repository.Owned) (*model.Prediction, error)
	DeletePrediction(ctx context.Context, o repository.Owned) error
}

// PredictionCache caches per-owner prediction lists. *cache.Cache implements it.
// A list is only cached if the owner's generation did not change while it
// was loaded.
type PredictionCache interface {
	GetPredictionList(ctx context.Context, ownerID int64) ([]*model.Prediction, error)
	PredictionListGeneration(ctx context.Context, ownerID int64) (int64, error)
	SetPredictionList(ctx context.Context, ownerID, generation int64, predictions []*model.Prediction) (bool, error)
	InvalidatePredictionList(ctx context.Context, ownerID int64) error
}

// PasswordHasher hashes and checks passwords. *auth.Argon2Hasher implements it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

var (
	_ UserStore       = (*repository.Repository)(nil)
	_ PredictionStore = (*repository.Repository)(nil)
)
