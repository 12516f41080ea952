// Package scorer holds the frozen scaling and prediction pipeline that turns a
// clinical feature vector into a risk outcome.
//
// A Pipeline is immutable once built and is safe for concurrent use.
package scorer

import (
	"errors"
	"fmt"

	"github.com/cardiopredict/cardiopredict/internal/model"
)

// Model kinds.
const (
	KindLinear   = "linear"
	KindLogistic = "logistic"
)

// ErrDimension is returned when a vector has the wrong length.
var ErrDimension = errors.New("feature vector has wrong dimension")

// Scorer maps a feature vector to a scalar outcome.
type Scorer interface {
	Transform(x []float64) ([]float64, error)
	Predict(x []float64) (float64, error)
}

// Artifact is the serialized form of a trained pipeline.
type Artifact struct {
	Features []string       `json:"features"`
	Scaler   ScalerArtifact `json:"scaler"`
	Model    ModelArtifact  `json:"model"`
}

// ScalerArtifact holds standard-scaler statistics.
type ScalerArtifact struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// ModelArtifact holds the fitted model coefficients.
type ModelArtifact struct {
	Kind      string    `json:"kind"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// Pipeline is a standard scaler followed by a linear or logistic model.
type Pipeline struct {
	mean      []float64
	scale     []float64
	coef      []float64
	intercept float64
	kind      string
}

// New validates an artifact and builds a Pipeline from it.
func New(a Artifact) (*Pipeline, error) {
	if len(a.Features) != model.FeatureCount {
		return nil, fmt.Errorf("artifact lists %d features, want %d", len(a.Features), model.FeatureCount)
	}
	for i, name := range a.Features {
		if name != model.FeatureNames[i] {
			return nil, fmt.Errorf("artifact feature %d is %q, want %q", i, name, model.FeatureNames[i])
		}
	}
	if len(a.Scaler.Mean) != model.FeatureCount || len(a.Scaler.Scale) != model.FeatureCount {
		return nil, fmt.Errorf("scaler: %w", ErrDimension)
	}
	if len(a.Model.Coef) != model.FeatureCount {
		return nil, fmt.Errorf("model coefficients: %w", ErrDimension)
	}
	switch a.Model.Kind {
	case KindLinear, KindLogistic:
	default:
		return nil, fmt.Errorf("unsupported model kind %q", a.Model.Kind)
	}

	scale := make([]float64, model.FeatureCount)
	for i, s := range a.Scaler.Scale {
		// Zero-variance features are left unscaled.
		if s == 0 {
			s = 1
		}
		scale[i] = s
	}

	return &Pipeline{
		mean:      append([]float64(nil), a.Scaler.Mean...),
		scale:     scale,
		coef:      append([]float64(nil), a.Model.Coef...),
		intercept: a.Model.Intercept,
		kind:      a.Model.Kind,
	}, nil
}

// Kind returns the model kind.
func (p *Pipeline) Kind() string {
	return p.kind
}

// Transform standardizes x as (x - mean) / scale.
func (p *Pipeline) Transform(x []float64) ([]float64, error) {
	if len(x) != len(p.mean) {
		return nil, ErrDimension
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - p.mean[i]) / p.scale[i]
	}
	return out, nil
}

// Predict evaluates the model on an already transformed vector.
// Linear models return the raw value; logistic models return the class
// label 0 or 1.
func (p *Pipeline) Predict(x []float64) (float64, error) {
	if len(x) != len(p.coef) {
		return 0, ErrDimension
	}
	z := p.intercept
	for i, v := range x {
		z += p.coef[i] * v
	}
	if p.kind == KindLogistic {
		if z > 0 {
			return 1, nil
		}
		return 0, nil
	}
	return z, nil
}

// Score runs the full pipeline on x.
func Score(s Scorer, x []float64) (float64, error) {
	scaled, err := s.Transform(x)
	if err != nil {
		return 0, fmt.Errorf("transform: %w", err)
	}
	out, err := s.Predict(scaled)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	return out, nil
}
