package tree

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/reopenlab/reopenml/pkg/errors"
)

func TestDecisionTreeLearnsThreshold(t *testing.T) {
	// One feature fully determines the label: values below 2 are class 0.
	X := mat.NewDense(6, 2, []float64{
		0.5, 9.0,
		1.0, 3.0,
		1.5, 7.0,
		2.5, 1.0,
		3.0, 8.0,
		3.5, 2.0,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	dt := NewDecisionTreeClassifier()
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	queries := mat.NewDense(4, 2, []float64{
		0.0, 5.0,
		1.9, 0.0,
		2.6, 9.0,
		10.0, 5.0,
	})
	want := []float64{0, 0, 1, 1}

	pred, err := dt.Predict(queries)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i, w := range want {
		if got := pred.At(i, 0); got != w {
			t.Errorf("Predict() row %d = %v, want %v", i, got, w)
		}
	}
}

func TestDecisionTreeFitsTrainingDataExactly(t *testing.T) {
	X := mat.NewDense(8, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
		4, 4,
		4, 5,
		5, 4,
		5, 5,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	dt := NewDecisionTreeClassifier(WithMaxDepth(5))
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	score, err := dt.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score != 1.0 {
		t.Errorf("Score() on training data = %v, want 1.0", score)
	}
}

func TestDecisionTreeDepthLimit(t *testing.T) {
	// Three bands along one feature: 0 | 1 | 0. A single split cannot
	// separate them; depth two can.
	X := mat.NewDense(6, 1, []float64{0, 1, 4, 5, 8, 9})
	y := mat.NewDense(6, 1, []float64{0, 0, 1, 1, 0, 0})

	stump := NewDecisionTreeClassifier(WithMaxDepth(1))
	if err := stump.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	score, err := stump.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score == 1.0 {
		t.Errorf("Score() = 1.0, a depth-1 tree cannot separate three bands")
	}

	deep := NewDecisionTreeClassifier(WithMaxDepth(3))
	if err := deep.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	score, err = deep.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score != 1.0 {
		t.Errorf("Score() = %v, want 1.0 for a depth-3 tree on three bands", score)
	}
}

func TestDecisionTreePredictProba(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 10, 11})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	dt := NewDecisionTreeClassifier()
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	probas, err := dt.PredictProba(mat.NewDense(1, 1, []float64{0.5}))
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}

	rows, cols := probas.Dims()
	if rows != 1 || cols != 2 {
		t.Fatalf("PredictProba() dims = %dx%d, want 1x2", rows, cols)
	}
	if probas.At(0, 0) != 1.0 {
		t.Errorf("P(class 0) = %v, want 1.0 in a pure leaf", probas.At(0, 0))
	}
}

func TestDecisionTreeFitValidation(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	tests := []struct {
		name string
		opts []Option
	}{
		{name: "Non-positive max_depth", opts: []Option{WithMaxDepth(0)}},
		{name: "min_samples_split below two", opts: []Option{WithMinSamplesSplit(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewDecisionTreeClassifier(tt.opts...).Fit(X, y); err == nil {
				t.Error("Fit() expected error, got nil")
			}
		})
	}
}

func TestDecisionTreeNotFitted(t *testing.T) {
	dt := NewDecisionTreeClassifier()

	var nfe *errors.NotFittedError
	if _, err := dt.Predict(mat.NewDense(1, 1, nil)); !errors.As(err, &nfe) {
		t.Errorf("Predict() before Fit error = %v, want NotFittedError", err)
	}
}

func TestDecisionTreeSetParams(t *testing.T) {
	dt := NewDecisionTreeClassifier()

	if err := dt.SetParams(map[string]interface{}{"max_depth": 4, "min_samples_split": 3}); err != nil {
		t.Fatalf("SetParams() error = %v", err)
	}

	params := dt.GetParams()
	if params["max_depth"] != 4 {
		t.Errorf("max_depth = %v, want 4", params["max_depth"])
	}
	if params["min_samples_split"] != 3 {
		t.Errorf("min_samples_split = %v, want 3", params["min_samples_split"])
	}

	if err := dt.SetParams(map[string]interface{}{"criterion": "entropy"}); err == nil {
		t.Error("SetParams() with unknown parameter expected error")
	}
}
