// Package testutil holds helpers shared by integration tests and fakes.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cardiopredict/cardiopredict/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// NoopLogger returns a logger that discards everything.
func NoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// TruncateAll empties every application table. The schema must exist.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "TRUNCATE predictions, users RESTART IDENTITY CASCADE"); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user with unique email and username.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	suffix := time.Now().UnixNano()
	return &model.User{
		Email:          fmt.Sprintf("%s-%d@example.com", username, suffix),
		Username:       fmt.Sprintf("%s-%d", username, suffix),
		FirstName:      "Test",
		LastName:       "User",
		HashedPassword: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		IsActive:       true,
		Role:           model.RoleUser,
		PhoneNumber:    "555-0100",
	}
}

// ValidFeatures returns the reference example payload.
func ValidFeatures() model.Features {
	return model.Features{
		Age:             45,
		CigsPerDay:      10,
		PrevalentStroke: 0,
		SysBP:           120.5,
		DiaBP:           80.2,
		HeartRate:       72.5,
		Glucose:         95.3,
	}
}
