// Package linear_model implements linear classifiers over gonum matrices.
package linear_model

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/reopenlab/reopenml/core/model"
	"github.com/reopenlab/reopenml/pkg/errors"
)

// LogisticRegression is a binary logistic regression classifier fitted by
// full-batch gradient descent with L2 regularization.
type LogisticRegression struct {
	state *model.StateManager

	// Hyperparameters
	c            float64 // Inverse regularization strength
	maxIter      int
	tol          float64
	fitIntercept bool
	randomState  int64

	// Fitted attributes
	coef_      []float64
	intercept_ float64
	classes_   []int
	nFeatures_ int
	nIter_     int

	rand *rand.Rand
}

// Option is a functional option for LogisticRegression.
type Option func(*LogisticRegression)

// NewLogisticRegression creates a LogisticRegression with scikit-learn-style
// defaults: C=1.0, max_iter=100, tol=1e-4, fit_intercept=true.
func NewLogisticRegression(opts ...Option) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		c:            1.0,
		maxIter:      100,
		tol:          1e-4,
		fitIntercept: true,
		randomState:  -1,
	}

	for _, opt := range opts {
		opt(lr)
	}

	lr.resetRand()
	return lr
}

// WithC sets the inverse regularization strength.
func WithC(c float64) Option {
	return func(lr *LogisticRegression) {
		lr.c = c
	}
}

// WithMaxIter sets the maximum number of gradient descent iterations.
func WithMaxIter(maxIter int) Option {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithTol sets the gradient-norm stopping tolerance.
func WithTol(tol float64) Option {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithFitIntercept sets whether an intercept term is fitted.
func WithFitIntercept(fit bool) Option {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithRandomState seeds the weight initialization. Negative means unseeded.
func WithRandomState(seed int64) Option {
	return func(lr *LogisticRegression) {
		lr.randomState = seed
	}
}

func (lr *LogisticRegression) resetRand() {
	if lr.randomState >= 0 {
		lr.rand = rand.New(rand.NewSource(lr.randomState))
	} else {
		lr.rand = rand.New(rand.NewSource(rand.Int63()))
	}
}

// Fit trains the model on X (n×d) and binary labels y (n×1). Refitting
// starts from a clean state; a failed Fit leaves the model unfitted.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	lr.state.Reset()

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 {
		return errors.Wrap(errors.ErrEmptyData, "LogisticRegression.Fit")
	}
	if nSamples != yRows {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("LogisticRegression.Fit", "y must be a column vector")
	}

	lr.classes_ = extractClasses(y)
	if len(lr.classes_) != 2 {
		return errors.NewValueError("LogisticRegression.Fit", "exactly two classes are required")
	}
	lr.nFeatures_ = nFeatures

	// Small random initialization, reproducible under a fixed random_state.
	lr.coef_ = make([]float64, nFeatures)
	for j := range lr.coef_ {
		lr.coef_[j] = lr.rand.NormFloat64() * 0.01
	}
	lr.intercept_ = 0

	// Labels as 0/1 against the positive (second) class.
	yBinary := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		if int(y.At(i, 0)) == lr.classes_[1] {
			yBinary[i] = 1
		}
	}

	baseLearningRate := 1.0
	lambda := 1.0 / lr.c

	converged := false
	for iter := 0; iter < lr.maxIter; iter++ {
		gradW := make([]float64, nFeatures)
		gradB := 0.0

		for i := 0; i < nSamples; i++ {
			z := lr.intercept_
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * lr.coef_[j]
			}
			residual := sigmoid(z) - yBinary[i]
			gradB += residual
			for j := 0; j < nFeatures; j++ {
				gradW[j] += residual * X.At(i, j)
			}
		}

		for j := range gradW {
			gradW[j] = gradW[j]/float64(nSamples) + lambda*lr.coef_[j]
		}
		gradB /= float64(nSamples)

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for j := range lr.coef_ {
			lr.coef_[j] -= learningRate * gradW[j]
		}
		if lr.fitIntercept {
			lr.intercept_ -= learningRate * gradB
		}

		lr.nIter_ = iter + 1

		maxGrad := math.Abs(gradB)
		for _, g := range gradW {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.maxIter))
	}

	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// decision returns the linear score for row i of X.
func (lr *LogisticRegression) decision(X mat.Matrix, i int) float64 {
	z := lr.intercept_
	for j := 0; j < lr.nFeatures_; j++ {
		z += X.At(i, j) * lr.coef_[j]
	}
	return z
}

// Predict returns the predicted class labels for X as an n×1 matrix.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "Predict"); err != nil {
		return nil, err
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.nFeatures_ {
		return nil, errors.NewDimensionError("LogisticRegression.Predict", lr.nFeatures_, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if sigmoid(lr.decision(X, i)) >= 0.5 {
			predictions.Set(i, 0, float64(lr.classes_[1]))
		} else {
			predictions.Set(i, 0, float64(lr.classes_[0]))
		}
	}

	return predictions, nil
}

// PredictProba returns the class probability estimates for X as an n×2 matrix
// ordered by ascending class label.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "PredictProba"); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		p := sigmoid(lr.decision(X, i))
		probas.Set(i, 0, 1-p)
		probas.Set(i, 1, p)
	}

	return probas, nil
}

// Score returns the mean accuracy of the predictions for X against y.
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
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
func (lr *LogisticRegression) Classes() []int {
	return lr.classes_
}

// GetParams returns the model hyperparameters.
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":             lr.c,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
		"fit_intercept": lr.fitIntercept,
		"random_state":  lr.randomState,
	}
}

// SetParams sets the model hyperparameters.
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "C":
			c, ok := toFloat(value)
			if !ok || c <= 0 {
				return errors.NewValidationError("C", "must be a positive number", value)
			}
			lr.c = c
		case "max_iter":
			n, ok := toInt(value)
			if !ok || n <= 0 {
				return errors.NewValidationError("max_iter", "must be a positive integer", value)
			}
			lr.maxIter = n
		case "tol":
			t, ok := toFloat(value)
			if !ok || t <= 0 {
				return errors.NewValidationError("tol", "must be a positive number", value)
			}
			lr.tol = t
		case "fit_intercept":
			b, ok := value.(bool)
			if !ok {
				return errors.NewValidationError("fit_intercept", "must be a bool", value)
			}
			lr.fitIntercept = b
		case "random_state":
			n, ok := toInt(value)
			if !ok {
				return errors.NewValidationError("random_state", "must be an integer", value)
			}
			lr.randomState = int64(n)
			lr.resetRand()
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// extractClasses returns the unique integer labels of y, ascending.
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

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
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
