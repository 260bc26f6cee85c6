package experiment

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"github.com/reopenlab/reopenml/core/model"
	"github.com/reopenlab/reopenml/dataset"
	"github.com/reopenlab/reopenml/metrics"
	"github.com/reopenlab/reopenml/pkg/errors"
	pkglog "github.com/reopenlab/reopenml/pkg/log"
	"github.com/reopenlab/reopenml/sklearn/ensemble"
	"github.com/reopenlab/reopenml/sklearn/linear_model"
	"github.com/reopenlab/reopenml/sklearn/model_selection"
	"github.com/reopenlab/reopenml/sklearn/neighbors"
	"github.com/reopenlab/reopenml/sklearn/svm"
)

// ModelSpec declares one model family: its display tag, hyperparameter grid
// and estimator factory.
type ModelSpec struct {
	Name    string
	Tag     string
	Grid    model_selection.ParamGrid
	Factory model.Factory
}

// DefaultModels returns the four model families in their fixed run order.
func DefaultModels() []ModelSpec {
	return []ModelSpec{
		{
			Name: "RandomForest",
			Tag:  "RF",
			Grid: model_selection.ParamGrid{
				"n_estimators": {100, 200, 300},
				"max_depth":    {4, 8, 12},
			},
			Factory: func() model.Classifier { return ensemble.NewRandomForestClassifier() },
		},
		{
			Name: "SVC",
			Tag:  "SVM",
			Grid: model_selection.ParamGrid{
				"C":        {0.1, 1.0, 10.0},
				"max_iter": {500, 1000},
			},
			Factory: func() model.Classifier { return svm.NewSVC() },
		},
		{
			Name: "KNN",
			Tag:  "KNN",
			Grid: model_selection.ParamGrid{
				"n_neighbors": {3, 5, 7, 9},
				"metric":      {"euclidean", "manhattan"},
			},
			Factory: func() model.Classifier { return neighbors.NewKNeighborsClassifier() },
		},
		{
			Name: "LogisticRegression",
			Tag:  "LR",
			Grid: model_selection.ParamGrid{
				"C":        {0.01, 0.1, 1.0, 10.0},
				"max_iter": {200, 500},
			},
			Factory: func() model.Classifier { return linear_model.NewLogisticRegression() },
		},
	}
}

// Config holds the run settings.
type Config struct {
	DataPath   string
	OutDir     string
	Iterations int
}

// Run executes the whole pipeline: load once, then for each model family in
// order run the grid search, the repeated holdout evaluation, and write that
// family's results CSV and accuracy chart. Families run strictly
// sequentially; the first failure aborts the run.
func Run(cfg Config) error {
	return run(cfg, DefaultModels())
}

func run(cfg Config, specs []ModelSpec) error {
	start := time.Now()

	tbl, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return err
	}

	slog.Info("dataset loaded",
		slog.String(pkglog.OperationKey, "load"),
		slog.Int(pkglog.SamplesKey, tbl.NumRows()),
		slog.Int(pkglog.FeaturesKey, tbl.NumFeatures()),
	)

	summary := color.New(color.FgGreen, color.Bold)

	for _, spec := range specs {
		gs := model_selection.NewGridSearchCV(spec.Factory, spec.Grid)
		if err := gs.Fit(tbl.X, tbl.Y); err != nil {
			return errors.Wrapf(err, "%s: grid search failed", spec.Name)
		}

		best, err := gs.BestParams()
		if err != nil {
			return err
		}
		cvScore, err := gs.BestScore()
		if err != nil {
			return err
		}

		slog.Info("grid search complete",
			slog.String(pkglog.ModelNameKey, spec.Name),
			slog.String(pkglog.OperationKey, "grid_search"),
			slog.Float64(pkglog.AccuracyKey, cvScore),
			slog.Any("best_params", best),
		)

		results, accuracies, err := Evaluate(spec.Factory, best, cfg.Iterations, tbl, spec.Name)
		if err != nil {
			return errors.Wrapf(err, "%s: evaluation failed", spec.Name)
		}

		slog.Info("holdout evaluation complete",
			slog.String(pkglog.ModelNameKey, spec.Name),
			slog.String(pkglog.OperationKey, "evaluate"),
			slog.Float64(pkglog.AccuracyKey, metrics.Mean(accuracies)),
			slog.Float64(pkglog.AccuracyStdKey, metrics.Std(accuracies)),
		)

		csvPath := filepath.Join(cfg.OutDir, spec.Tag+"Results.csv")
		if err := results.WriteCSV(csvPath); err != nil {
			return err
		}

		plotPath := filepath.Join(cfg.OutDir, spec.Tag+"Accuracy.png")
		if err := WriteAccuracyPlot(plotPath, spec.Name, accuracies); err != nil {
			return err
		}

		slog.Info("results written",
			slog.String(pkglog.ModelNameKey, spec.Name),
			slog.String(pkglog.OperationKey, "write_results"),
			slog.String("path", csvPath),
		)

		summary.Printf("%s Accuracy: %.2f\n", spec.Tag, metrics.Mean(accuracies))
	}

	slog.Info("run complete",
		slog.Int64(pkglog.DurationMsKey, time.Since(start).Milliseconds()),
	)
	return nil
}
