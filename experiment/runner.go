package experiment

import (
	"log/slog"

	"github.com/reopenlab/reopenml/core/model"
	"github.com/reopenlab/reopenml/dataset"
	"github.com/reopenlab/reopenml/metrics"
	"github.com/reopenlab/reopenml/pkg/errors"
	pkglog "github.com/reopenlab/reopenml/pkg/log"
	"github.com/reopenlab/reopenml/sklearn/model_selection"
)

// HoldoutSeed is the shuffle seed of the 50/50 holdout split. Every
// iteration uses this same seed, so the partition is identical across the
// whole loop and only model-internal randomness varies between iterations.
// This mirrors the original analysis and is intentional.
const HoldoutSeed = 42

// holdoutTestSize is the test fraction of the repeated holdout split.
const holdoutTestSize = 0.5

// Evaluate runs the repeated holdout loop for one model family: fit a fresh
// estimator built from params on the train half, predict the test half,
// record each test record's prediction and the iteration accuracy. It
// returns the finalized aggregation and the per-iteration accuracies
// (length == iterations, each in [0, 1]).
func Evaluate(factory model.Factory, params map[string]interface{}, iterations int, tbl *dataset.Table, modelName string) (*ResultsTable, []float64, error) {
	if iterations <= 0 {
		return nil, nil, errors.NewValueError("Evaluate", "iterations must be positive")
	}

	table := NewPredictionTable(modelName, iterations)
	accuracies := make([]float64, 0, iterations)

	for iter := 0; iter < iterations; iter++ {
		split, err := model_selection.TrainTestSplit(tbl.X, tbl.Y, tbl.IDs, holdoutTestSize, HoldoutSeed)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "iteration %d", iter)
		}

		clf := factory()
		if err := clf.SetParams(params); err != nil {
			return nil, nil, errors.Wrapf(err, "iteration %d", iter)
		}
		if err := clf.Fit(split.XTrain, split.YTrain); err != nil {
			return nil, nil, errors.Wrapf(err, "iteration %d: fitting failed", iter)
		}

		predictions, err := clf.Predict(split.XTest)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "iteration %d: prediction failed", iter)
		}

		accuracy, err := metrics.AccuracyMatrix(split.YTest, predictions)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "iteration %d: scoring failed", iter)
		}
		accuracies = append(accuracies, accuracy)

		counts, err := metrics.ConfusionBinary(split.YTest, predictions)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "iteration %d: scoring failed", iter)
		}

		for r, id := range split.IDTest {
			table.Record(id, iter, int(predictions.At(r, 0)))
		}

		slog.Debug("holdout iteration complete",
			slog.String(pkglog.ModelNameKey, modelName),
			slog.Int(pkglog.IterationKey, iter),
			slog.Float64(pkglog.AccuracyKey, accuracy),
			slog.Int("confusion.tp", counts.TruePositive),
			slog.Int("confusion.tn", counts.TrueNegative),
			slog.Int("confusion.fp", counts.FalsePositive),
			slog.Int("confusion.fn", counts.FalseNegative),
		)
	}

	return table.Finalize(), accuracies, nil
}
