package model_selection

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/reopenlab/reopenml/core/model"
	"github.com/reopenlab/reopenml/core/parallel"
	"github.com/reopenlab/reopenml/metrics"
	"github.com/reopenlab/reopenml/pkg/errors"
)

// ParamGrid maps a hyperparameter name to its ordered candidate values.
type ParamGrid map[string][]interface{}

// GridSearchCV exhaustively scores every combination of a parameter grid by
// k-fold cross-validated accuracy and keeps the best one. Candidates are
// evaluated in parallel; the selected combination is deterministic
// regardless of evaluation order.
type GridSearchCV struct {
	factory model.Factory
	grid    ParamGrid
	cv      int

	bestParams_ map[string]interface{}
	bestScore_  float64
	fitted      bool
}

// GridSearchOption is a functional option for GridSearchCV.
type GridSearchOption func(*GridSearchCV)

// NewGridSearchCV creates a grid search over factory's model family with
// 5-fold cross-validation by default.
func NewGridSearchCV(factory model.Factory, grid ParamGrid, opts ...GridSearchOption) *GridSearchCV {
	gs := &GridSearchCV{
		factory: factory,
		grid:    grid,
		cv:      5,
	}

	for _, opt := range opts {
		opt(gs)
	}

	return gs
}

// WithCV sets the number of cross-validation folds.
func WithCV(folds int) GridSearchOption {
	return func(gs *GridSearchCV) {
		gs.cv = folds
	}
}

// Candidates enumerates the Cartesian product of the grid in deterministic
// order: parameter names sorted, candidate values in declared order.
func (gs *GridSearchCV) Candidates() ([]map[string]interface{}, error) {
	if len(gs.grid) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyGrid)
	}

	keys := make([]string, 0, len(gs.grid))
	for key := range gs.grid {
		if len(gs.grid[key]) == 0 {
			return nil, errors.Wrapf(errors.ErrEmptyGrid, "parameter %q has no candidates", key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	candidates := []map[string]interface{}{{}}
	for _, key := range keys {
		next := make([]map[string]interface{}, 0, len(candidates)*len(gs.grid[key]))
		for _, base := range candidates {
			for _, value := range gs.grid[key] {
				combo := make(map[string]interface{}, len(base)+1)
				for k, v := range base {
					combo[k] = v
				}
				combo[key] = value
				next = append(next, combo)
			}
		}
		candidates = next
	}

	return candidates, nil
}

// Fit scores every candidate combination against X and y and records the
// best. The best is the highest mean cross-validation accuracy; ties resolve
// to the first-enumerated candidate.
func (gs *GridSearchCV) Fit(X, y mat.Matrix) error {
	candidates, err := gs.Candidates()
	if err != nil {
		return err
	}

	splitter := NewKFold(gs.cv, false, 0)

	meanScores := make([]float64, len(candidates))
	candidateErrs := make([]error, len(candidates))

	// A single-combination grid is scored inline; fanning out one candidate
	// buys nothing.
	parallel.ParallelizeWithThreshold(len(candidates), 1, func(start, end int) {
		for c := start; c < end; c++ {
			scores, err := CrossValScore(gs.factory, candidates[c], X, y, splitter)
			if err != nil {
				candidateErrs[c] = err
				continue
			}
			meanScores[c] = metrics.Mean(scores)
		}
	})

	for c, err := range candidateErrs {
		if err != nil {
			return errors.Wrapf(err, "grid search candidate %d", c)
		}
	}

	bestIdx := 0
	for c := 1; c < len(candidates); c++ {
		if meanScores[c] > meanScores[bestIdx] {
			bestIdx = c
		}
	}

	gs.bestParams_ = candidates[bestIdx]
	gs.bestScore_ = meanScores[bestIdx]
	gs.fitted = true
	return nil
}

// BestParams returns the winning parameter combination.
func (gs *GridSearchCV) BestParams() (map[string]interface{}, error) {
	if !gs.fitted {
		return nil, errors.NewNotFittedError("GridSearchCV", "BestParams")
	}
	return gs.bestParams_, nil
}

// BestScore returns the mean cross-validation accuracy of the winning
// combination.
func (gs *GridSearchCV) BestScore() (float64, error) {
	if !gs.fitted {
		return 0, errors.NewNotFittedError("GridSearchCV", "BestScore")
	}
	return gs.bestScore_, nil
}
