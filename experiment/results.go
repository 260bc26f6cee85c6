// Package experiment drives the end-to-end run: repeated holdout evaluation
// of each tuned model family, per-record prediction aggregation, and the
// results files the analyst reads.
package experiment

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/reopenlab/reopenml/pkg/errors"
)

// Sentinel marks a missing prediction cell in the merged per-iteration view:
// a record that did not land in that iteration's test split. Valid predicted
// labels are 0 or 1, which the loader enforces, so the sentinel can never
// collide with a real prediction.
const Sentinel = 8

// iterPred is one prediction of one record in one holdout iteration.
type iterPred struct {
	iteration int
	label     int
}

// PredictionTable accumulates per-record predictions across holdout
// iterations for one model family. Records are keyed by identifier; each
// holds the ordered list of (iteration, label) pairs it received.
type PredictionTable struct {
	model      string
	iterations int
	order      []string
	entries    map[string][]iterPred
}

// NewPredictionTable creates an empty table for a model family evaluated
// over the given number of iterations.
func NewPredictionTable(model string, iterations int) *PredictionTable {
	return &PredictionTable{
		model:      model,
		iterations: iterations,
		entries:    make(map[string][]iterPred),
	}
}

// Record stores the prediction for one record in one iteration.
func (pt *PredictionTable) Record(id string, iteration, label int) {
	if _, ok := pt.entries[id]; !ok {
		pt.order = append(pt.order, id)
	}
	pt.entries[id] = append(pt.entries[id], iterPred{iteration: iteration, label: label})
}

// MergedRow returns the record's per-iteration prediction vector with
// Sentinel filling the iterations it was absent from. The second return is
// false for an unknown identifier.
func (pt *PredictionTable) MergedRow(id string) ([]int, bool) {
	preds, ok := pt.entries[id]
	if !ok {
		return nil, false
	}

	row := make([]int, pt.iterations)
	for i := range row {
		row[i] = Sentinel
	}
	for _, p := range preds {
		row[p.iteration] = p.label
	}
	return row, true
}

// IDs returns every recorded identifier in first-seen order.
func (pt *PredictionTable) IDs() []string {
	return pt.order
}

// ResultRow is one aggregated record: the identifier and the sum of its
// per-iteration predictions.
type ResultRow struct {
	ID    string
	Total int
}

// ResultsTable is the aggregated output for one model family.
type ResultsTable struct {
	Model string
	Rows  []ResultRow
}

// Finalize aggregates the table in a single pass: per identifier, sum the
// predictions and retain the row only when the record appeared in every
// iteration's test split. The presence check counts distinct iterations
// explicitly rather than inferring from the summed value.
func (pt *PredictionTable) Finalize() *ResultsTable {
	rt := &ResultsTable{Model: pt.model}

	for _, id := range pt.order {
		seen := make(map[int]bool)
		total := 0
		for _, p := range pt.entries[id] {
			seen[p.iteration] = true
			total += p.label
		}
		if len(seen) == pt.iterations {
			rt.Rows = append(rt.Rows, ResultRow{ID: id, Total: total})
		}
	}

	return rt
}

// WriteCSV writes the aggregated table to path, one row per retained
// identifier.
func (rt *ResultsTable) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "experiment: creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"unique", "predictionTotal"}); err != nil {
		return errors.Wrapf(err, "experiment: writing %s", path)
	}
	for _, row := range rt.Rows {
		if err := w.Write([]string{row.ID, strconv.Itoa(row.Total)}); err != nil {
			return errors.Wrapf(err, "experiment: writing %s", path)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "experiment: flushing %s", path)
	}
	return nil
}
