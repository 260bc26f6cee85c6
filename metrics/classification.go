// Package metrics implements the classification metrics used to score
// cross-validation folds and holdout iterations.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/reopenlab/reopenml/pkg/errors"
)

// Accuracy computes the fraction of exactly matching labels between yTrue and
// yPred.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}

	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}

	return float64(correct) / float64(n), nil
}

// AccuracyMatrix computes accuracy over the first column of n×1 matrices.
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, _ := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return 0, errors.NewValueError("AccuracyMatrix", "empty matrix")
	}

	if rTrue != rPred {
		return 0, errors.NewDimensionError("AccuracyMatrix", rTrue, rPred, 0)
	}

	yTrueVec := mat.NewVecDense(rTrue, nil)
	yPredVec := mat.NewVecDense(rPred, nil)

	for i := 0; i < rTrue; i++ {
		yTrueVec.SetVec(i, yTrue.At(i, 0))
		yPredVec.SetVec(i, yPred.At(i, 0))
	}

	return Accuracy(yTrueVec, yPredVec)
}

// Mean returns the arithmetic mean of scores, or 0 for an empty slice.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// Std returns the sample standard deviation of scores, or 0 when fewer than
// two scores are present.
func Std(scores []float64) float64 {
	if len(scores) <= 1 {
		return 0
	}

	mean := Mean(scores)
	sumSq := 0.0
	for _, s := range scores {
		diff := s - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(scores)-1))
}

// ConfusionCounts tallies binary classification outcomes, with yTrue labels
// and yPred labels restricted to {0, 1}.
type ConfusionCounts struct {
	TruePositive  int
	TrueNegative  int
	FalsePositive int
	FalseNegative int
}

// ConfusionBinary computes the binary confusion counts for n×1 matrices.
func ConfusionBinary(yTrue, yPred mat.Matrix) (ConfusionCounts, error) {
	rTrue, _ := yTrue.Dims()
	rPred, _ := yPred.Dims()

	var counts ConfusionCounts
	if rTrue == 0 {
		return counts, errors.NewValueError("ConfusionBinary", "empty matrix")
	}
	if rTrue != rPred {
		return counts, errors.NewDimensionError("ConfusionBinary", rTrue, rPred, 0)
	}

	for i := 0; i < rTrue; i++ {
		truth := yTrue.At(i, 0)
		pred := yPred.At(i, 0)
		switch {
		case truth == 1 && pred == 1:
			counts.TruePositive++
		case truth == 0 && pred == 0:
			counts.TrueNegative++
		case truth == 0 && pred == 1:
			counts.FalsePositive++
		case truth == 1 && pred == 0:
			counts.FalseNegative++
		default:
			return counts, errors.NewValueError("ConfusionBinary", "labels must be 0 or 1")
		}
	}

	return counts, nil
}
