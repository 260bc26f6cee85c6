package experiment

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/reopenlab/reopenml/sklearn/model_selection"
)

// writeFixtureCSV writes a 20-record table of two separated clusters with
// classes interleaved, so contiguous cross-validation folds keep both
// classes in their train sets.
func writeFixtureCSV(t *testing.T, dir string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("unique,Town,Revenue,Employees,ReopenedByMarch29_UR\n")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "b-%02d,Springfield,%0.1f,%0.1f,0\n", i*2, float64(i)*0.1, float64(i)*0.1)
		fmt.Fprintf(&b, "b-%02d,Shelbyville,%0.1f,%0.1f,1\n", i*2+1, 5+float64(i)*0.1, 5+float64(i)*0.1)
	}

	path := filepath.Join(dir, "table.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestRunWritesResultsAndChart(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		DataPath:   writeFixtureCSV(t, dir),
		OutDir:     dir,
		Iterations: 2,
	}

	specs := []ModelSpec{
		{
			Name:    "KNN",
			Tag:     "KNN",
			Grid:    model_selection.ParamGrid{"n_neighbors": {1, 3}},
			Factory: knnFactory,
		},
	}

	if err := run(cfg, specs); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	csvPath := filepath.Join(dir, "KNNResults.csv")
	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("results CSV not written: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading results CSV: %v", err)
	}
	if len(records) == 0 || records[0][0] != "unique" || records[0][1] != "predictionTotal" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	// Every iteration reuses the same holdout seed, so the full test half
	// (10 of 20 records) survives the presence filter.
	if got, want := len(records)-1, 10; got != want {
		t.Errorf("results CSV has %d data rows, want %d", got, want)
	}
	for _, rec := range records[1:] {
		total, err := strconv.Atoi(rec[1])
		if err != nil {
			t.Fatalf("non-numeric predictionTotal %q", rec[1])
		}
		if total < 0 || total > cfg.Iterations {
			t.Errorf("record %s has predictionTotal %d, want value in [0, %d]", rec[0], total, cfg.Iterations)
		}
	}

	chart, err := os.Stat(filepath.Join(dir, "KNNAccuracy.png"))
	if err != nil {
		t.Fatalf("accuracy chart not written: %v", err)
	}
	if chart.Size() == 0 {
		t.Error("accuracy chart is empty")
	}
}

func TestRunFailsOnMissingData(t *testing.T) {
	cfg := Config{
		DataPath:   filepath.Join(t.TempDir(), "missing.csv"),
		OutDir:     t.TempDir(),
		Iterations: 2,
	}
	if err := run(cfg, nil); err == nil {
		t.Error("run() with a missing data file expected error")
	}
}

func TestDefaultModels(t *testing.T) {
	specs := DefaultModels()

	wantTags := []string{"RF", "SVM", "KNN", "LR"}
	if len(specs) != len(wantTags) {
		t.Fatalf("got %d model families, want %d", len(specs), len(wantTags))
	}

	for i, spec := range specs {
		if spec.Tag != wantTags[i] {
			t.Errorf("specs[%d].Tag = %q, want %q", i, spec.Tag, wantTags[i])
		}
		if len(spec.Grid) == 0 {
			t.Errorf("%s has an empty hyperparameter grid", spec.Name)
		}
		if spec.Factory == nil {
			t.Errorf("%s has no estimator factory", spec.Name)
		}

		clf := spec.Factory()
		if clf == nil {
			t.Fatalf("%s factory returned nil", spec.Name)
		}
		// Every grid candidate must be settable on a fresh estimator.
		gs := model_selection.NewGridSearchCV(spec.Factory, spec.Grid)
		candidates, err := gs.Candidates()
		if err != nil {
			t.Fatalf("%s candidates: %v", spec.Name, err)
		}
		for _, candidate := range candidates {
			if err := spec.Factory().SetParams(candidate); err != nil {
				t.Errorf("%s rejects grid candidate %v: %v", spec.Name, candidate, err)
			}
		}
	}
}

func TestWriteAccuracyPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "RFAccuracy.png")

	if err := WriteAccuracyPlot(path, "RandomForest", []float64{0.8, 0.85, 0.9}); err != nil {
		t.Fatalf("WriteAccuracyPlot() error = %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("chart not written: err=%v", err)
	}

	if err := WriteAccuracyPlot(path, "RandomForest", nil); err == nil {
		t.Error("WriteAccuracyPlot() with no scores expected error")
	}
}
