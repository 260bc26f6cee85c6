// Package dataset loads the source table and turns it into the cleaned,
// row-aligned structures the rest of the pipeline consumes: an identifier
// slice, a numeric feature matrix and a binary label vector.
package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/reopenlab/reopenml/pkg/errors"
)

// Table is the cleaned dataset. IDs, X and Y are row-aligned: IDs[i] is the
// identifier of the record whose features are row i of X and whose label is
// row i of Y. IDs never appear inside X.
type Table struct {
	IDs     []string
	X       *mat.Dense
	Y       *mat.Dense
	Columns []string
}

// NumRows returns the number of records in the table.
func (t *Table) NumRows() int {
	return len(t.IDs)
}

// NumFeatures returns the number of feature columns.
func (t *Table) NumFeatures() int {
	return len(t.Columns)
}

// Load reads the table at path (.xlsx or .csv), drops rows with missing
// values and the excluded geographic/administrative columns, validates the
// identifier and label columns, and returns the cleaned Table.
func Load(path string) (*Table, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: reading %s", path)
	}

	if len(rows) < 2 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "dataset: %s has no data rows", path)
	}

	return build(path, rows[0], rows[1:])
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return csv.NewReader(f).ReadAll()
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	return f.GetRows(sheets[0])
}

// build cleans the raw rows into a Table. Row cleaning happens before column
// dropping: a missing value in any column, dropped or not, removes the row.
func build(path string, header []string, raw [][]string) (*Table, error) {
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	uniqueIdx, ok := colIndex[UniqueColumn]
	if !ok {
		return nil, errors.NewMissingColumnError(UniqueColumn, path)
	}
	labelIdx, ok := colIndex[LabelColumn]
	if !ok {
		return nil, errors.NewMissingColumnError(LabelColumn, path)
	}

	dropped := make(map[int]bool)
	for _, name := range ExcludedColumns() {
		// Columns absent from this particular extract are skipped.
		if idx, ok := colIndex[name]; ok {
			dropped[idx] = true
		}
	}
	dropped[uniqueIdx] = true
	dropped[labelIdx] = true

	featureIdx := make([]int, 0, len(header))
	featureNames := make([]string, 0, len(header))
	for i, name := range header {
		if !dropped[i] {
			featureIdx = append(featureIdx, i)
			featureNames = append(featureNames, strings.TrimSpace(name))
		}
	}

	var (
		ids      []string
		features []float64
		labels   []float64
		seen     = make(map[string]bool)
	)

	for _, row := range raw {
		if len(row) < len(header) {
			// Spreadsheet readers drop trailing empty cells; a short row is a
			// row with missing values.
			continue
		}

		missing := false
		for _, cell := range row[:len(header)] {
			if strings.TrimSpace(cell) == "" {
				missing = true
				break
			}
		}
		if missing {
			continue
		}

		id := strings.TrimSpace(row[uniqueIdx])
		if seen[id] {
			return nil, errors.NewDuplicateIDError(id)
		}
		seen[id] = true

		label, err := strconv.ParseFloat(strings.TrimSpace(row[labelIdx]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "dataset: label for record %q", id)
		}
		if label != 0 && label != 1 {
			return nil, errors.NewLabelDomainError(len(ids), label)
		}

		for _, j := range featureIdx {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[j]), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "dataset: column %q for record %q", header[j], id)
			}
			features = append(features, v)
		}

		ids = append(ids, id)
		labels = append(labels, label)
	}

	if len(ids) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "dataset: %s has no usable rows after cleaning", path)
	}

	return &Table{
		IDs:     ids,
		X:       mat.NewDense(len(ids), len(featureIdx), features),
		Y:       mat.NewDense(len(ids), 1, labels),
		Columns: featureNames,
	}, nil
}
