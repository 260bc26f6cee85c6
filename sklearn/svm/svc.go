// Package svm implements a linear support vector classifier.
package svm

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/reopenlab/reopenml/core/model"
	"github.com/reopenlab/reopenml/pkg/errors"
)

// SVC is a binary linear support vector classifier trained by full-batch
// subgradient descent on the L2-regularized hinge loss. Weights start at
// zero, so fitting is deterministic for a given input.
type SVC struct {
	state *model.StateManager

	// Hyperparameters
	c       float64 // Regularization strength is 1/(C·n)
	maxIter int
	tol     float64

	// Fitted attributes
	coef_      []float64
	intercept_ float64
	classes_   []int
	nFeatures_ int
	nIter_     int
}

// Option is a functional option for SVC.
type Option func(*SVC)

// NewSVC creates an SVC with defaults C=1.0, max_iter=1000, tol=1e-4.
func NewSVC(opts ...Option) *SVC {
	s := &SVC{
		state:   model.NewStateManager(),
		c:       1.0,
		maxIter: 1000,
		tol:     1e-4,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithC sets the regularization strength.
func WithC(c float64) Option {
	return func(s *SVC) {
		s.c = c
	}
}

// WithMaxIter sets the maximum number of subgradient iterations.
func WithMaxIter(maxIter int) Option {
	return func(s *SVC) {
		s.maxIter = maxIter
	}
}

// WithTol sets the subgradient-norm stopping tolerance.
func WithTol(tol float64) Option {
	return func(s *SVC) {
		s.tol = tol
	}
}

// Fit trains the classifier on X (n×d) and binary labels y (n×1). Refitting
// starts from a clean state; a failed Fit leaves the model unfitted.
func (s *SVC) Fit(X, y mat.Matrix) error {
	s.state.Reset()

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 {
		return errors.Wrap(errors.ErrEmptyData, "SVC.Fit")
	}
	if nSamples != yRows {
		return errors.NewDimensionError("SVC.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("SVC.Fit", "y must be a column vector")
	}

	s.classes_ = extractClasses(y)
	if len(s.classes_) != 2 {
		return errors.NewValueError("SVC.Fit", "exactly two classes are required")
	}
	s.nFeatures_ = nFeatures

	// The hinge loss works on ±1 labels; the second (higher) class is +1.
	signs := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		if int(y.At(i, 0)) == s.classes_[1] {
			signs[i] = 1
		} else {
			signs[i] = -1
		}
	}

	s.coef_ = make([]float64, nFeatures)
	s.intercept_ = 0
	lambda := 1.0 / (s.c * float64(nSamples))

	converged := false
	for iter := 0; iter < s.maxIter; iter++ {
		gradW := make([]float64, nFeatures)
		gradB := 0.0

		for j := 0; j < nFeatures; j++ {
			gradW[j] = lambda * s.coef_[j]
		}

		for i := 0; i < nSamples; i++ {
			margin := signs[i] * s.decision(X, i)
			if margin < 1 {
				scale := signs[i] / float64(nSamples)
				gradB -= scale
				for j := 0; j < nFeatures; j++ {
					gradW[j] -= scale * X.At(i, j)
				}
			}
		}

		learningRate := 1.0 / (1.0 + 0.1*float64(iter))
		for j := range s.coef_ {
			s.coef_[j] -= learningRate * gradW[j]
		}
		s.intercept_ -= learningRate * gradB

		s.nIter_ = iter + 1

		maxGrad := math.Abs(gradB)
		for _, g := range gradW {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < s.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("SVC", s.maxIter))
	}

	s.state.SetDimensions(nFeatures, nSamples)
	s.state.SetFitted()
	return nil
}

func (s *SVC) decision(X mat.Matrix, i int) float64 {
	z := s.intercept_
	for j := 0; j < s.nFeatures_; j++ {
		z += X.At(i, j) * s.coef_[j]
	}
	return z
}

// Predict returns the predicted class labels for X as an n×1 matrix.
func (s *SVC) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("SVC", "Predict"); err != nil {
		return nil, err
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != s.nFeatures_ {
		return nil, errors.NewDimensionError("SVC.Predict", s.nFeatures_, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if s.decision(X, i) >= 0 {
			predictions.Set(i, 0, float64(s.classes_[1]))
		} else {
			predictions.Set(i, 0, float64(s.classes_[0]))
		}
	}

	return predictions, nil
}

// PredictProba returns probability-like estimates for X as an n×2 matrix by
// passing the decision value through a logistic link. SVC is not a calibrated
// probabilistic model; these values are only meant for ranking.
func (s *SVC) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("SVC", "PredictProba"); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		p := 1.0 / (1.0 + math.Exp(-s.decision(X, i)))
		probas.Set(i, 0, 1-p)
		probas.Set(i, 1, p)
	}

	return probas, nil
}

// Score returns the mean accuracy of the predictions for X against y.
func (s *SVC) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := s.Predict(X)
	if err != nil {
		return 0, err
	}

	nSamples, _ := X.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}

	return float64(correct) / float64(nSamples), nil
}

// Classes returns the class labels seen during fitting, ascending.
func (s *SVC) Classes() []int {
	return s.classes_
}

// GetParams returns the model hyperparameters.
func (s *SVC) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":        s.c,
		"max_iter": s.maxIter,
		"tol":      s.tol,
	}
}

// SetParams sets the model hyperparameters.
func (s *SVC) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "C":
			c, ok := toFloat(value)
			if !ok || c <= 0 {
				return errors.NewValidationError("C", "must be a positive number", value)
			}
			s.c = c
		case "max_iter":
			n, ok := toInt(value)
			if !ok || n <= 0 {
				return errors.NewValidationError("max_iter", "must be a positive integer", value)
			}
			s.maxIter = n
		case "tol":
			t, ok := toFloat(value)
			if !ok || t <= 0 {
				return errors.NewValidationError("tol", "must be a positive number", value)
			}
			s.tol = t
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

func extractClasses(y mat.Matrix) []int {
	rows, _ := y.Dims()
	classMap := make(map[int]bool)
	for i := 0; i < rows; i++ {
		classMap[int(y.At(i, 0))] = true
	}

	classes := make([]int, 0, len(classMap))
	for class := range classMap {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	return classes
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func toInt(v interface{}) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if x == math.Trunc(x) {
			return int(x), true
		}
		return 0, false
	default:
		return 0, false
	}
}
