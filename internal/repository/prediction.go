package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cardiopredict/cardiopredict/internal/model"
)

const predictionColumns = `id, age, cigs_per_day, prevalent_stroke, sys_bp, dia_bp, heart_rate, glucose, result, owner_id, created_at`

// CreatePrediction inserts p and fills in its ID and CreatedAt.
func (r *Repository) CreatePrediction(ctx context.Context, p *model.Prediction) error {
	query := `
		INSERT INTO predictions (age, cigs_per_day, prevalent_stroke, sys_bp, dia_bp, heart_rate, glucose, result, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.Age,
		p.CigsPerDay,
		p.PrevalentStroke,
		p.SysBP,
		p.DiaBP,
		p.HeartRate,
		p.Glucose,
		p.Result,
		p.OwnerID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	return nil
}

// ListPredictions returns all predictions of ownerID in insertion order.
func (r *Repository) ListPredictions(ctx context.Context, ownerID int64) ([]*model.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE owner_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	predictions := make([]*model.Prediction, 0)
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}

	return predictions, nil
}

// GetPrediction returns the prediction matching o, or ErrNotFound.
func (r *Repository) GetPrediction(ctx context.Context, o Owned) (*model.Prediction, error) {
	filter, args := o.where(1)
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE ` + filter

	p, err := scanPrediction(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return p, nil
}

// DeletePrediction removes the prediction matching o in a single statement.
// Returns ErrNotFound if no row matched.
func (r *Repository) DeletePrediction(ctx context.Context, o Owned) error {
	filter, args := o.where(1)

	tag, err := r.pool.Exec(ctx, `DELETE FROM predictions WHERE `+filter, args...)
	if err != nil {
		return fmt.Errorf("failed to delete prediction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanPrediction(row pgx.Row) (*model.Prediction, error) {
	var p model.Prediction
	err := row.Scan(
		&p.ID,
		&p.Age,
		&p.CigsPerDay,
		&p.PrevalentStroke,
		&p.SysBP,
		&p.DiaBP,
		&p.HeartRate,
		&p.Glucose,
		&p.Result,
		&p.OwnerID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
