// Package neighbors implements a brute-force k-nearest-neighbors classifier.
package neighbors

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/reopenlab/reopenml/core/model"
	"github.com/reopenlab/reopenml/pkg/errors"
)

// Supported distance metrics.
const (
	MetricEuclidean = "euclidean"
	MetricManhattan = "manhattan"
)

// KNeighborsClassifier predicts by majority vote among the k nearest training
// samples. Fitting is a copy of the training data; all work happens at
// prediction time.
type KNeighborsClassifier struct {
	state *model.StateManager

	// Hyperparameters
	nNeighbors int
	metric     string

	// Fitted attributes
	xTrain_    *mat.Dense
	yTrain_    []int
	classes_   []int
	nFeatures_ int
}

// Option is a functional option for KNeighborsClassifier.
type Option func(*KNeighborsClassifier)

// NewKNeighborsClassifier creates a classifier with defaults n_neighbors=5
// and the euclidean metric.
func NewKNeighborsClassifier(opts ...Option) *KNeighborsClassifier {
	knn := &KNeighborsClassifier{
		state:      model.NewStateManager(),
		nNeighbors: 5,
		metric:     MetricEuclidean,
	}

	for _, opt := range opts {
		opt(knn)
	}

	return knn
}

// WithNNeighbors sets the number of neighbors consulted per prediction.
func WithNNeighbors(k int) Option {
	return func(knn *KNeighborsClassifier) {
		knn.nNeighbors = k
	}
}

// WithMetric sets the distance metric ("euclidean" or "manhattan").
func WithMetric(metric string) Option {
	return func(knn *KNeighborsClassifier) {
		knn.metric = metric
	}
}

// Fit stores the training data. Refitting starts from a clean state; a
// failed Fit leaves the model unfitted.
func (knn *KNeighborsClassifier) Fit(X, y mat.Matrix) error {
	knn.state.Reset()

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 {
		return errors.Wrap(errors.ErrEmptyData, "KNeighborsClassifier.Fit")
	}
	if nSamples != yRows {
		return errors.NewDimensionError("KNeighborsClassifier.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("KNeighborsClassifier.Fit", "y must be a column vector")
	}
	if knn.nNeighbors <= 0 {
		return errors.NewValidationError("n_neighbors", "must be a positive integer", knn.nNeighbors)
	}
	if knn.metric != MetricEuclidean && knn.metric != MetricManhattan {
		return errors.NewValidationError("metric", "must be euclidean or manhattan", knn.metric)
	}

	knn.xTrain_ = mat.DenseCopyOf(X)
	knn.yTrain_ = make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		knn.yTrain_[i] = int(y.At(i, 0))
	}

	knn.classes_ = extractClasses(knn.yTrain_)
	knn.nFeatures_ = nFeatures

	knn.state.SetDimensions(nFeatures, nSamples)
	knn.state.SetFitted()
	return nil
}

// neighbor pairs a training index with its distance to the query sample.
type neighbor struct {
	index    int
	distance float64
}

// nearest returns the indices of the k nearest training samples to row i of
// X, sorted nearest-first with the training index as tiebreaker.
func (knn *KNeighborsClassifier) nearest(X mat.Matrix, i int) []int {
	nTrain, _ := knn.xTrain_.Dims()
	neighbors := make([]neighbor, nTrain)

	for t := 0; t < nTrain; t++ {
		neighbors[t] = neighbor{index: t, distance: knn.distance(X, i, t)}
	}

	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].distance != neighbors[b].distance {
			return neighbors[a].distance < neighbors[b].distance
		}
		return neighbors[a].index < neighbors[b].index
	})

	k := knn.nNeighbors
	if k > nTrain {
		k = nTrain
	}

	indices := make([]int, k)
	for t := 0; t < k; t++ {
		indices[t] = neighbors[t].index
	}
	return indices
}

func (knn *KNeighborsClassifier) distance(X mat.Matrix, i, trainIdx int) float64 {
	sum := 0.0
	switch knn.metric {
	case MetricManhattan:
		for j := 0; j < knn.nFeatures_; j++ {
			sum += math.Abs(X.At(i, j) - knn.xTrain_.At(trainIdx, j))
		}
		return sum
	default:
		for j := 0; j < knn.nFeatures_; j++ {
			diff := X.At(i, j) - knn.xTrain_.At(trainIdx, j)
			sum += diff * diff
		}
		return math.Sqrt(sum)
	}
}

// vote returns the majority class among the given training indices. Ties go
// to the class that appears earliest in the nearest-first ordering.
func (knn *KNeighborsClassifier) vote(indices []int) int {
	votes := make(map[int]int)
	firstSeen := make(map[int]int)

	for rank, idx := range indices {
		class := knn.yTrain_[idx]
		votes[class]++
		if _, ok := firstSeen[class]; !ok {
			firstSeen[class] = rank
		}
	}

	best := knn.yTrain_[indices[0]]
	for _, class := range knn.classes_ {
		count, ok := votes[class]
		if !ok {
			continue
		}
		if count > votes[best] || (count == votes[best] && firstSeen[class] < firstSeen[best]) {
			best = class
		}
	}

	return best
}

// Predict returns the predicted class labels for X as an n×1 matrix.
func (knn *KNeighborsClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := knn.state.RequireFitted("KNeighborsClassifier", "Predict"); err != nil {
		return nil, err
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != knn.nFeatures_ {
		return nil, errors.NewDimensionError("KNeighborsClassifier.Predict", knn.nFeatures_, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		predictions.Set(i, 0, float64(knn.vote(knn.nearest(X, i))))
	}

	return predictions, nil
}

// PredictProba returns the vote fraction per class for X as an n×k matrix
// ordered by ascending class label.
func (knn *KNeighborsClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := knn.state.RequireFitted("KNeighborsClassifier", "PredictProba"); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	probas := mat.NewDense(nSamples, len(knn.classes_), nil)

	for i := 0; i < nSamples; i++ {
		indices := knn.nearest(X, i)
		votes := make(map[int]int)
		for _, idx := range indices {
			votes[knn.yTrain_[idx]]++
		}
		for c, class := range knn.classes_ {
			probas.Set(i, c, float64(votes[class])/float64(len(indices)))
		}
	}

	return probas, nil
}

// Score returns the mean accuracy of the predictions for X against y.
func (knn *KNeighborsClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := knn.Predict(X)
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
func (knn *KNeighborsClassifier) Classes() []int {
	return knn.classes_
}

// GetParams returns the model hyperparameters.
func (knn *KNeighborsClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": knn.nNeighbors,
		"metric":      knn.metric,
	}
}

// SetParams sets the model hyperparameters.
func (knn *KNeighborsClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_neighbors":
			k, ok := value.(int)
			if !ok || k <= 0 {
				return errors.NewValidationError("n_neighbors", "must be a positive integer", value)
			}
			knn.nNeighbors = k
		case "metric":
			m, ok := value.(string)
			if !ok || (m != MetricEuclidean && m != MetricManhattan) {
				return errors.NewValidationError("metric", "must be euclidean or manhattan", value)
			}
			knn.metric = m
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

func extractClasses(y []int) []int {
	classMap := make(map[int]bool)
	for _, label := range y {
		classMap[label] = true
	}

	classes := make([]int, 0, len(classMap))
	for class := range classMap {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	return classes
}
