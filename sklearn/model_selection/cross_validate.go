package model_selection

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/reopenlab/reopenml/core/model"
	"github.com/reopenlab/reopenml/metrics"
	"github.com/reopenlab/reopenml/pkg/errors"
)

// CrossValScore fits a fresh estimator per fold and returns the per-fold
// accuracy scores. params may be nil to score the factory's defaults.
func CrossValScore(factory model.Factory, params map[string]interface{}, X, y mat.Matrix, splitter *KFold) ([]float64, error) {
	nSamples, _ := X.Dims()
	if nSamples < splitter.NSplits {
		return nil, errors.NewValueError("CrossValScore",
			fmt.Sprintf("%d samples cannot fill %d folds", nSamples, splitter.NSplits))
	}

	folds := splitter.Split(X)
	scores := make([]float64, len(folds))

	for i, fold := range folds {
		clf := factory()
		if params != nil {
			if err := clf.SetParams(params); err != nil {
				return nil, errors.Wrapf(err, "fold %d", i)
			}
		}

		trainX, trainY := extractSubset(X, y, fold.TrainIndices)
		testX, testY := extractSubset(X, y, fold.TestIndices)

		if err := clf.Fit(trainX, trainY); err != nil {
			return nil, errors.Wrapf(err, "fold %d training failed", i)
		}

		pred, err := clf.Predict(testX)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d prediction failed", i)
		}

		score, err := metrics.AccuracyMatrix(testY, pred)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d scoring failed", i)
		}
		scores[i] = score
	}

	return scores, nil
}
