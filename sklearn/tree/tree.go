// Package tree implements a CART-style decision tree classifier using gini
// impurity. It is the building block of the random forest but usable on its
// own.
package tree

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/reopenlab/reopenml/core/model"
	"github.com/reopenlab/reopenml/pkg/errors"
)

// node is one split or leaf of a fitted tree.
type node struct {
	isLeaf    bool
	class     int
	feature   int
	threshold float64
	left      *node
	right     *node
	samples   int
}

// DecisionTreeClassifier fits axis-aligned binary splits chosen greedily by
// gini impurity decrease.
type DecisionTreeClassifier struct {
	state *model.StateManager

	// Hyperparameters
	maxDepth        int
	minSamplesSplit int

	// Fitted attributes
	root_      *node
	classes_   []int
	nFeatures_ int
}

// Option is a functional option for DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

// NewDecisionTreeClassifier creates a tree with defaults max_depth=10 and
// min_samples_split=2.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		state:           model.NewStateManager(),
		maxDepth:        10,
		minSamplesSplit: 2,
	}

	for _, opt := range opts {
		opt(dt)
	}

	return dt
}

// WithMaxDepth sets the maximum tree depth.
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum number of samples required to split.
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.minSamplesSplit = n
	}
}

// Fit grows the tree on X (n×d) and integer labels y (n×1). Refitting
// starts from a clean state; a failed Fit leaves the model unfitted.
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	dt.state.Reset()

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 {
		return errors.Wrap(errors.ErrEmptyData, "DecisionTreeClassifier.Fit")
	}
	if nSamples != yRows {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "y must be a column vector")
	}
	if dt.maxDepth <= 0 {
		return errors.NewValidationError("max_depth", "must be a positive integer", dt.maxDepth)
	}
	if dt.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", dt.minSamplesSplit)
	}

	samples := make([][]float64, nSamples)
	labels := make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		samples[i] = make([]float64, nFeatures)
		for j := 0; j < nFeatures; j++ {
			samples[i][j] = X.At(i, j)
		}
		labels[i] = int(y.At(i, 0))
	}

	dt.classes_ = extractClasses(labels)
	dt.nFeatures_ = nFeatures
	dt.root_ = dt.build(samples, labels, 0)

	dt.state.SetDimensions(nFeatures, nSamples)
	dt.state.SetFitted()
	return nil
}

func (dt *DecisionTreeClassifier) build(X [][]float64, y []int, depth int) *node {
	n := &node{samples: len(y)}

	if depth >= dt.maxDepth || len(y) < dt.minSamplesSplit || isPure(y) {
		n.isLeaf = true
		n.class = majorityClass(y)
		return n
	}

	feature, threshold, decrease := bestSplit(X, y)
	if decrease <= 0 {
		n.isLeaf = true
		n.class = majorityClass(y)
		return n
	}

	leftIdx, rightIdx := partition(X, feature, threshold)
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		n.isLeaf = true
		n.class = majorityClass(y)
		return n
	}

	n.feature = feature
	n.threshold = threshold

	xLeft, yLeft := subset(X, y, leftIdx)
	xRight, yRight := subset(X, y, rightIdx)
	n.left = dt.build(xLeft, yLeft, depth+1)
	n.right = dt.build(xRight, yRight, depth+1)

	return n
}

// bestSplit scans every feature and every distinct value as a candidate
// threshold and returns the split with the largest gini decrease.
func bestSplit(X [][]float64, y []int) (feature int, threshold, decrease float64) {
	parent := gini(y)
	n := float64(len(y))

	for f := range X[0] {
		for _, t := range uniqueValues(X, f) {
			leftIdx, rightIdx := partition(X, f, t)
			if len(leftIdx) == 0 || len(rightIdx) == 0 {
				continue
			}

			yLeft := make([]int, len(leftIdx))
			for i, idx := range leftIdx {
				yLeft[i] = y[idx]
			}
			yRight := make([]int, len(rightIdx))
			for i, idx := range rightIdx {
				yRight[i] = y[idx]
			}

			weighted := (float64(len(leftIdx))/n)*gini(yLeft) + (float64(len(rightIdx))/n)*gini(yRight)
			if d := parent - weighted; d > decrease {
				decrease = d
				feature = f
				threshold = t
			}
		}
	}

	return feature, threshold, decrease
}

func partition(X [][]float64, feature int, threshold float64) (left, right []int) {
	for i, sample := range X {
		if sample[feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func subset(X [][]float64, y []int, indices []int) ([][]float64, []int) {
	xs := make([][]float64, len(indices))
	ys := make([]int, len(indices))
	for i, idx := range indices {
		xs[i] = X[idx]
		ys[i] = y[idx]
	}
	return xs, ys
}

func uniqueValues(X [][]float64, feature int) []float64 {
	seen := make(map[float64]bool)
	for _, sample := range X {
		seen[sample[feature]] = true
	}

	values := make([]float64, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Float64s(values)
	return values
}

func gini(y []int) float64 {
	if len(y) == 0 {
		return 0
	}

	counts := make(map[int]int)
	for _, class := range y {
		counts[class]++
	}

	impurity := 1.0
	n := float64(len(y))
	for _, count := range counts {
		p := float64(count) / n
		impurity -= p * p
	}
	return impurity
}

func isPure(y []int) bool {
	for _, class := range y {
		if class != y[0] {
			return false
		}
	}
	return true
}

// majorityClass returns the most frequent label, smallest label on ties.
func majorityClass(y []int) int {
	counts := make(map[int]int)
	for _, class := range y {
		counts[class]++
	}

	classes := make([]int, 0, len(counts))
	for class := range counts {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	best := classes[0]
	for _, class := range classes[1:] {
		if counts[class] > counts[best] {
			best = class
		}
	}
	return best
}

func (dt *DecisionTreeClassifier) predictOne(sample []float64, n *node) int {
	if n.isLeaf {
		return n.class
	}
	if sample[n.feature] < n.threshold {
		return dt.predictOne(sample, n.left)
	}
	return dt.predictOne(sample, n.right)
}

// Predict returns the predicted class labels for X as an n×1 matrix.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.state.RequireFitted("DecisionTreeClassifier", "Predict"); err != nil {
		return nil, err
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != dt.nFeatures_ {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.Predict", dt.nFeatures_, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	sample := make([]float64, nFeatures)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			sample[j] = X.At(i, j)
		}
		predictions.Set(i, 0, float64(dt.predictOne(sample, dt.root_)))
	}

	return predictions, nil
}

// PredictProba returns a one-hot probability matrix: the predicted leaf class
// gets probability 1.
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	predictions, err := dt.Predict(X)
	if err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	probas := mat.NewDense(nSamples, len(dt.classes_), nil)
	for i := 0; i < nSamples; i++ {
		for c, class := range dt.classes_ {
			if float64(class) == predictions.At(i, 0) {
				probas.Set(i, c, 1)
			}
		}
	}

	return probas, nil
}

// Score returns the mean accuracy of the predictions for X against y.
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := dt.Predict(X)
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
func (dt *DecisionTreeClassifier) Classes() []int {
	return dt.classes_
}

// GetParams returns the model hyperparameters.
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":         dt.maxDepth,
		"min_samples_split": dt.minSamplesSplit,
	}
}

// SetParams sets the model hyperparameters.
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "max_depth":
			d, ok := value.(int)
			if !ok || d <= 0 {
				return errors.NewValidationError("max_depth", "must be a positive integer", value)
			}
			dt.maxDepth = d
		case "min_samples_split":
			n, ok := value.(int)
			if !ok || n < 2 {
				return errors.NewValidationError("min_samples_split", "must be at least 2", value)
			}
			dt.minSamplesSplit = n
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
