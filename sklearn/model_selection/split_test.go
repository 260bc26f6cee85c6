package model_selection

import (
	"fmt"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func splitFixture(n int) (*mat.Dense, *mat.Dense, []string) {
	features := make([]float64, n*2)
	labels := make([]float64, n)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		features[i*2] = float64(i)
		features[i*2+1] = float64(i) * 10
		labels[i] = float64(i % 2)
		ids[i] = fmt.Sprintf("id-%02d", i)
	}
	return mat.NewDense(n, 2, features), mat.NewDense(n, 1, labels), ids
}

func TestTrainTestSplitSizes(t *testing.T) {
	X, y, ids := splitFixture(10)

	split, err := TrainTestSplit(X, y, ids, 0.5, 42)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	trainRows, _ := split.XTrain.Dims()
	testRows, _ := split.XTest.Dims()
	if trainRows != 5 || testRows != 5 {
		t.Errorf("train/test rows = %d/%d, want 5/5", trainRows, testRows)
	}
	if len(split.IDTrain) != 5 || len(split.IDTest) != 5 {
		t.Errorf("IDTrain/IDTest lengths = %d/%d, want 5/5", len(split.IDTrain), len(split.IDTest))
	}
}

func TestTrainTestSplitPartitionsAreDisjointAndComplete(t *testing.T) {
	X, y, ids := splitFixture(10)

	split, err := TrainTestSplit(X, y, ids, 0.3, 7)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	seen := make(map[string]int)
	for _, id := range split.IDTrain {
		seen[id]++
	}
	for _, id := range split.IDTest {
		seen[id]++
	}

	if len(seen) != 10 {
		t.Errorf("partitions cover %d identifiers, want 10", len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("identifier %q appears %d times across partitions, want 1", id, count)
		}
	}
}

func TestTrainTestSplitRowsStayAligned(t *testing.T) {
	X, y, ids := splitFixture(10)

	split, err := TrainTestSplit(X, y, ids, 0.5, 3)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	// Feature column 0 equals the original row index, so each test row can
	// be traced back to its identifier and label.
	for i, id := range split.IDTest {
		orig := int(split.XTest.At(i, 0))
		if want := fmt.Sprintf("id-%02d", orig); id != want {
			t.Errorf("IDTest[%d] = %q, want %q", i, id, want)
		}
		if got, want := split.YTest.At(i, 0), float64(orig%2); got != want {
			t.Errorf("YTest[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestTrainTestSplitSameSeedSamePartition(t *testing.T) {
	X, y, ids := splitFixture(12)

	first, err := TrainTestSplit(X, y, ids, 0.5, 42)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}
	second, err := TrainTestSplit(X, y, ids, 0.5, 42)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	for i := range first.IDTest {
		if first.IDTest[i] != second.IDTest[i] {
			t.Fatalf("IDTest[%d] differs across runs: %q vs %q", i, first.IDTest[i], second.IDTest[i])
		}
	}
	for i := range first.IDTrain {
		if first.IDTrain[i] != second.IDTrain[i] {
			t.Fatalf("IDTrain[%d] differs across runs: %q vs %q", i, first.IDTrain[i], second.IDTrain[i])
		}
	}
}

func TestTrainTestSplitWithoutIDs(t *testing.T) {
	X, y, _ := splitFixture(10)

	split, err := TrainTestSplit(X, y, nil, 0.5, 1)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}
	if split.IDTrain != nil || split.IDTest != nil {
		t.Error("identifier slices should be nil when none are supplied")
	}
}

func TestTrainTestSplitErrors(t *testing.T) {
	X, y, ids := splitFixture(10)

	tests := []struct {
		name     string
		X        mat.Matrix
		y        mat.Matrix
		ids      []string
		testSize float64
	}{
		{name: "Zero test size", X: X, y: y, ids: ids, testSize: 0},
		{name: "Test size of one", X: X, y: y, ids: ids, testSize: 1},
		{name: "Row mismatch", X: X, y: mat.NewDense(4, 1, nil), ids: ids, testSize: 0.5},
		{name: "ID length mismatch", X: X, y: y, ids: ids[:3], testSize: 0.5},
		{name: "Split too small for a test half", X: mat.NewDense(1, 2, nil), y: mat.NewDense(1, 1, nil), testSize: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := TrainTestSplit(tt.X, tt.y, tt.ids, tt.testSize, 0); err == nil {
				t.Error("TrainTestSplit() expected error, got nil")
			}
		})
	}
}
