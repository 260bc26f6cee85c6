// Package ensemble implements a random forest classifier over bootstrap
// samples of gini decision trees.
package ensemble

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/reopenlab/reopenml/core/model"
	"github.com/reopenlab/reopenml/core/parallel"
	"github.com/reopenlab/reopenml/pkg/errors"
	"github.com/reopenlab/reopenml/sklearn/tree"
)

// RandomForestClassifier trains n_estimators decision trees, each on a
// bootstrap sample restricted to a random sqrt(d)-sized feature subset, and
// predicts by majority vote. Trees are fitted in parallel across CPU cores.
type RandomForestClassifier struct {
	state *model.StateManager

	// Hyperparameters
	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int   // 0 means sqrt(nFeatures)
	randomState     int64 // negative means unseeded

	// Fitted attributes
	trees_      []*tree.DecisionTreeClassifier
	featureIdx_ [][]int
	classes_    []int
	nFeatures_  int
}

// Option is a functional option for RandomForestClassifier.
type Option func(*RandomForestClassifier)

// NewRandomForestClassifier creates a forest with defaults n_estimators=100,
// max_depth=10, min_samples_split=2, unseeded randomness.
func NewRandomForestClassifier(opts ...Option) *RandomForestClassifier {
	rf := &RandomForestClassifier{
		state:           model.NewStateManager(),
		nEstimators:     100,
		maxDepth:        10,
		minSamplesSplit: 2,
		randomState:     -1,
	}

	for _, opt := range opts {
		opt(rf)
	}

	return rf
}

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option {
	return func(rf *RandomForestClassifier) {
		rf.nEstimators = n
	}
}

// WithMaxDepth sets the maximum depth of each tree.
func WithMaxDepth(depth int) Option {
	return func(rf *RandomForestClassifier) {
		rf.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum number of samples required to split a
// tree node.
func WithMinSamplesSplit(n int) Option {
	return func(rf *RandomForestClassifier) {
		rf.minSamplesSplit = n
	}
}

// WithMaxFeatures sets the number of features sampled per tree; 0 selects
// sqrt(nFeatures).
func WithMaxFeatures(n int) Option {
	return func(rf *RandomForestClassifier) {
		rf.maxFeatures = n
	}
}

// WithRandomState seeds the bootstrap and feature sampling. Negative means
// unseeded: every Fit draws a fresh base seed, so repeated fits on identical
// data produce different forests.
func WithRandomState(seed int64) Option {
	return func(rf *RandomForestClassifier) {
		rf.randomState = seed
	}
}

// Fit trains the forest on X (n×d) and integer labels y (n×1). Refitting
// starts from a clean state; a failed Fit leaves the model unfitted.
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	rf.state.Reset()

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 {
		return errors.Wrap(errors.ErrEmptyData, "RandomForestClassifier.Fit")
	}
	if nSamples != yRows {
		return errors.NewDimensionError("RandomForestClassifier.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("RandomForestClassifier.Fit", "y must be a column vector")
	}
	if rf.nEstimators <= 0 {
		return errors.NewValidationError("n_estimators", "must be a positive integer", rf.nEstimators)
	}

	labels := make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		labels[i] = int(y.At(i, 0))
	}
	rf.classes_ = extractClasses(labels)
	rf.nFeatures_ = nFeatures

	maxFeatures := rf.maxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(nFeatures)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}
	if maxFeatures > nFeatures {
		maxFeatures = nFeatures
	}

	// Per-tree seeds derive from one base seed so a seeded forest is
	// reproducible while trees stay mutually independent.
	baseSeed := rf.randomState
	if baseSeed < 0 {
		baseSeed = rand.Int63()
	}

	rf.trees_ = make([]*tree.DecisionTreeClassifier, rf.nEstimators)
	rf.featureIdx_ = make([][]int, rf.nEstimators)
	treeErrs := make([]error, rf.nEstimators)

	parallel.Parallelize(rf.nEstimators, func(start, end int) {
		for t := start; t < end; t++ {
			rng := rand.New(rand.NewSource(baseSeed + int64(t)))
			tr, features, err := rf.fitTree(X, labels, maxFeatures, rng)
			rf.trees_[t] = tr
			rf.featureIdx_[t] = features
			treeErrs[t] = err
		}
	})

	for t, err := range treeErrs {
		if err != nil {
			return errors.Wrapf(err, "RandomForestClassifier.Fit: tree %d", t)
		}
	}

	rf.state.SetDimensions(nFeatures, nSamples)
	rf.state.SetFitted()
	return nil
}

// fitTree draws a bootstrap sample and a feature subset with rng, then fits
// one tree on the restricted sample.
func (rf *RandomForestClassifier) fitTree(X mat.Matrix, y []int, maxFeatures int, rng *rand.Rand) (*tree.DecisionTreeClassifier, []int, error) {
	nSamples, nFeatures := X.Dims()

	bootstrap := make([]int, nSamples)
	for i := range bootstrap {
		bootstrap[i] = rng.Intn(nSamples)
	}

	features := sampleFeatures(nFeatures, maxFeatures, rng)

	data := make([]float64, 0, nSamples*len(features))
	labels := mat.NewDense(nSamples, 1, nil)
	for i, idx := range bootstrap {
		for _, f := range features {
			data = append(data, X.At(idx, f))
		}
		labels.Set(i, 0, float64(y[idx]))
	}
	sample := mat.NewDense(nSamples, len(features), data)

	tr := tree.NewDecisionTreeClassifier(
		tree.WithMaxDepth(rf.maxDepth),
		tree.WithMinSamplesSplit(rf.minSamplesSplit),
	)
	if err := tr.Fit(sample, labels); err != nil {
		return nil, nil, err
	}

	return tr, features, nil
}

// sampleFeatures draws maxFeatures distinct feature indices by partial
// Fisher-Yates shuffle.
func sampleFeatures(nFeatures, maxFeatures int, rng *rand.Rand) []int {
	features := make([]int, nFeatures)
	for i := range features {
		features[i] = i
	}

	for i := 0; i < maxFeatures && i < nFeatures; i++ {
		j := i + rng.Intn(nFeatures-i)
		features[i], features[j] = features[j], features[i]
	}

	return features[:maxFeatures]
}

// project builds the single-row matrix of sample i of X restricted to the
// given feature subset.
func project(X mat.Matrix, i int, features []int) *mat.Dense {
	row := make([]float64, len(features))
	for k, f := range features {
		row[k] = X.At(i, f)
	}
	return mat.NewDense(1, len(features), row)
}

// Predict returns the majority-vote class labels for X as an n×1 matrix.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := rf.state.RequireFitted("RandomForestClassifier", "Predict"); err != nil {
		return nil, err
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != rf.nFeatures_ {
		return nil, errors.NewDimensionError("RandomForestClassifier.Predict", rf.nFeatures_, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		votes, err := rf.collectVotes(X, i)
		if err != nil {
			return nil, err
		}
		predictions.Set(i, 0, float64(argmaxVotes(votes, rf.classes_)))
	}

	return predictions, nil
}

// PredictProba returns the tree-vote fraction per class for X as an n×k
// matrix ordered by ascending class label.
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := rf.state.RequireFitted("RandomForestClassifier", "PredictProba"); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	probas := mat.NewDense(nSamples, len(rf.classes_), nil)

	for i := 0; i < nSamples; i++ {
		votes, err := rf.collectVotes(X, i)
		if err != nil {
			return nil, err
		}
		for c, class := range rf.classes_ {
			probas.Set(i, c, float64(votes[class])/float64(rf.nEstimators))
		}
	}

	return probas, nil
}

func (rf *RandomForestClassifier) collectVotes(X mat.Matrix, i int) (map[int]int, error) {
	votes := make(map[int]int)
	for t, tr := range rf.trees_ {
		pred, err := tr.Predict(project(X, i, rf.featureIdx_[t]))
		if err != nil {
			return nil, err
		}
		votes[int(pred.At(0, 0))]++
	}
	return votes, nil
}

// argmaxVotes returns the class with the most votes, smallest class on ties.
func argmaxVotes(votes map[int]int, classes []int) int {
	best := classes[0]
	for _, class := range classes[1:] {
		if votes[class] > votes[best] {
			best = class
		}
	}
	return best
}

// Score returns the mean accuracy of the predictions for X against y.
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := rf.Predict(X)
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
func (rf *RandomForestClassifier) Classes() []int {
	return rf.classes_
}

// GetParams returns the model hyperparameters.
func (rf *RandomForestClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      rf.nEstimators,
		"max_depth":         rf.maxDepth,
		"min_samples_split": rf.minSamplesSplit,
		"max_features":      rf.maxFeatures,
		"random_state":      rf.randomState,
	}
}

// SetParams sets the model hyperparameters.
func (rf *RandomForestClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_estimators":
			n, ok := value.(int)
			if !ok || n <= 0 {
				return errors.NewValidationError("n_estimators", "must be a positive integer", value)
			}
			rf.nEstimators = n
		case "max_depth":
			d, ok := value.(int)
			if !ok || d <= 0 {
				return errors.NewValidationError("max_depth", "must be a positive integer", value)
			}
			rf.maxDepth = d
		case "min_samples_split":
			n, ok := value.(int)
			if !ok || n < 2 {
				return errors.NewValidationError("min_samples_split", "must be at least 2", value)
			}
			rf.minSamplesSplit = n
		case "max_features":
			n, ok := value.(int)
			if !ok || n < 0 {
				return errors.NewValidationError("max_features", "must be a non-negative integer", value)
			}
			rf.maxFeatures = n
		case "random_state":
			switch s := value.(type) {
			case int:
				rf.randomState = int64(s)
			case int64:
				rf.randomState = s
			default:
				return errors.NewValidationError("random_state", "must be an integer", value)
			}
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
