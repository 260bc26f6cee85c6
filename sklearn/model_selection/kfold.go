package model_selection

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// CVFold represents a single fold in cross-validation.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold implements a k-fold cross-validation splitter.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int
}

// NewKFold creates a new k-fold splitter. Fewer than 2 splits falls back to
// the 5-fold default.
func NewKFold(nSplits int, shuffle bool, randomSeed int) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// Split generates train/test indices for each fold over the rows of X.
func (kf *KFold) Split(X mat.Matrix) []CVFold {
	nSamples, _ := X.Dims()

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}

	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.RandomSeed), uint64(kf.RandomSeed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	currentIdx := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		testIndices := make([]int, testSize)
		copy(testIndices, indices[currentIdx:currentIdx+testSize])

		testSet := make(map[int]bool, testSize)
		for _, idx := range testIndices {
			testSet[idx] = true
		}

		trainIndices := make([]int, 0, nSamples-testSize)
		for _, idx := range indices {
			if !testSet[idx] {
				trainIndices = append(trainIndices, idx)
			}
		}

		folds[i] = CVFold{
			TrainIndices: trainIndices,
			TestIndices:  testIndices,
		}

		currentIdx += testSize
	}

	return folds
}

// extractSubset builds the X and y sub-matrices selected by indices.
func extractSubset(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	rows := len(indices)
	_, xCols := X.Dims()

	xSubset := mat.NewDense(rows, xCols, nil)
	ySubset := mat.NewDense(rows, 1, nil)

	for i, idx := range indices {
		for j := 0; j < xCols; j++ {
			xSubset.Set(i, j, X.At(idx, j))
		}
		ySubset.Set(i, 0, y.At(idx, 0))
	}

	return xSubset, ySubset
}
