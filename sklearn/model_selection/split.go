// Package model_selection provides train/test splitting, k-fold
// cross-validation and exhaustive grid search over hyperparameter grids.
package model_selection

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/reopenlab/reopenml/pkg/errors"
)

// Split is the result of one shuffled train/test partition. IDTrain and
// IDTest are populated only when identifiers were supplied.
type Split struct {
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain *mat.Dense
	YTest  *mat.Dense

	IDTrain []string
	IDTest  []string
}

// TrainTestSplit shuffles row indices with the given seed and partitions X, y
// and the optional id slice into train and test halves. The same seed always
// produces the identical partition.
func TrainTestSplit(X, y mat.Matrix, ids []string, testSize float64, seed int64) (*Split, error) {
	nSamples, nFeatures := X.Dims()
	yRows, _ := y.Dims()

	if nSamples == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "TrainTestSplit")
	}
	if nSamples != yRows {
		return nil, errors.NewDimensionError("TrainTestSplit", nSamples, yRows, 0)
	}
	if ids != nil && len(ids) != nSamples {
		return nil, errors.NewDimensionError("TrainTestSplit", nSamples, len(ids), 0)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, errors.NewValueError("TrainTestSplit", "test size must be in (0, 1)")
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	testCount := int(float64(nSamples) * testSize)
	trainCount := nSamples - testCount
	if testCount == 0 || trainCount == 0 {
		return nil, errors.NewValueError("TrainTestSplit", "split leaves an empty partition")
	}

	split := &Split{
		XTrain: mat.NewDense(trainCount, nFeatures, nil),
		XTest:  mat.NewDense(testCount, nFeatures, nil),
		YTrain: mat.NewDense(trainCount, 1, nil),
		YTest:  mat.NewDense(testCount, 1, nil),
	}
	if ids != nil {
		split.IDTrain = make([]string, trainCount)
		split.IDTest = make([]string, testCount)
	}

	for i := 0; i < trainCount; i++ {
		idx := indices[i]
		for j := 0; j < nFeatures; j++ {
			split.XTrain.Set(i, j, X.At(idx, j))
		}
		split.YTrain.Set(i, 0, y.At(idx, 0))
		if ids != nil {
			split.IDTrain[i] = ids[idx]
		}
	}

	for i := 0; i < testCount; i++ {
		idx := indices[trainCount+i]
		for j := 0; j < nFeatures; j++ {
			split.XTest.Set(i, j, X.At(idx, j))
		}
		split.YTest.Set(i, 0, y.At(idx, 0))
		if ids != nil {
			split.IDTest[i] = ids[idx]
		}
	}

	return split, nil
}
