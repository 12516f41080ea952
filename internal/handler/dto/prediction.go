package dto

import (
	"time"

	"github.com/cardiopredict/cardiopredict/internal/model"
)

// PredictionRequest represents the request body for scoring a feature set.
// Fields are pointers so a missing field can be told apart from zero.
// Any owner field in the body is ignored.
type PredictionRequest struct {
	Age             *int     `json:"age"`
	CigsPerDay      *int     `json:"cigsPerDay"`
	PrevalentStroke *int     `json:"prevalentStroke"`
	SysBP           *float64 `json:"sysBP"`
	DiaBP           *float64 `json:"diaBP"`
	HeartRate       *float64 `json:"heartRate"`
	Glucose         *float64 `json:"glucose"`
}

// PredictionResponse represents a stored prediction in API responses.
type PredictionResponse struct {
	ID              int64     `json:"id"`
	Age             int       `json:"age"`
	CigsPerDay      int       `json:"cigsPerDay"`
	PrevalentStroke int       `json:"prevalentStroke"`
	SysBP           float64   `json:"sysBP"`
	DiaBP           float64   `json:"diaBP"`
	HeartRate       float64   `json:"heartRate"`
	Glucose         float64   `json:"glucose"`
	Result          float64   `json:"result"`
	OwnerID         int64     `json:"ownerId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ToPredictionResponse converts a Prediction model to PredictionResponse DTO.
func ToPredictionResponse(p *model.Prediction) *PredictionResponse {
	return &PredictionResponse{
		ID:              p.ID,
		Age:             p.Age,
		CigsPerDay:      p.CigsPerDay,
		PrevalentStroke: p.PrevalentStroke,
		SysBP:           p.SysBP,
		DiaBP:           p.DiaBP,
		HeartRate:       p.HeartRate,
		Glucose:         p.Glucose,
		Result:          p.Result,
		OwnerID:         p.OwnerID,
		CreatedAt:       p.CreatedAt,
	}
}

// ToPredictionListResponse converts predictions to a JSON array.
// An empty history encodes as [] rather than null.
func ToPredictionListResponse(predictions []*model.Prediction) []*PredictionResponse {
	out := make([]*PredictionResponse, 0, len(predictions))
	for _, p := range predictions {
		out = append(out, ToPredictionResponse(p))
	}
	return out
}
