package model

import "time"

// FeatureCount is the dimension of the scoring vector.
const FeatureCount = 7

// FeatureNames lists the wire names of the scoring features in vector order.
var FeatureNames = [FeatureCount]string{
	"age",
	"cigsPerDay",
	"prevalentStroke",
	"sysBP",
	"diaBP",
	"heartRate",
	"glucose",
}

// Features is a validated clinical feature set.
type Features struct {
	Age             int     `json:"age"`
	CigsPerDay      int     `json:"cigsPerDay"`
	PrevalentStroke int     `json:"prevalentStroke"`
	SysBP           float64 `json:"sysBP"`
	DiaBP           float64 `json:"diaBP"`
	HeartRate       float64 `json:"heartRate"`
	Glucose         float64 `json:"glucose"`
}

// Vector returns the features in scoring order.
func (f Features) Vector() []float64 {
	return []float64{
		float64(f.Age),
		float64(f.CigsPerDay),
		float64(f.PrevalentStroke),
		f.SysBP,
		f.DiaBP,
		f.HeartRate,
		f.Glucose,
	}
}

// Prediction is a stored scoring result owned by exactly one user.
// It is never updated after creation.
type Prediction struct {
	ID int64 `json:"id"`
	Features
	Result    float64   `json:"result"`
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}
