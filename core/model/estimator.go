// Package model defines the estimator interfaces shared by every classifier
// in the pipeline, plus the fitted-state manager they compose.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Estimator is the interface for models that can be fitted to data.
type Estimator interface {
	// Fit trains the estimator on features X (n×d) and labels y (n×1).
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for fitted models that can predict labels.
type Predictor interface {
	// Predict returns an n×1 matrix of predicted labels for X.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the mean accuracy of the predictions for X against y.
	Score(X, y mat.Matrix) (float64, error)
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models that allow parameter modification.
type ParameterSetter interface {
	// SetParams sets the model's hyperparameters.
	SetParams(params map[string]interface{}) error
}

// Classifier is the full surface the grid search and the repeated evaluator
// require from a model family.
type Classifier interface {
	Estimator
	Predictor
	Scorer
	ParameterGetter
	ParameterSetter

	// PredictProba returns an n×k matrix of class probability estimates.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique classes seen during fitting, ascending.
	Classes() []int
}

// Factory constructs a fresh, unfitted instance of a model family. The grid
// search and the evaluator use it to get a clean estimator per candidate and
// per iteration.
type Factory func() Classifier
