package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reopenlab/reopenml/pkg/errors"
)

// writeCSV writes rows to a temp .csv file and returns its path.
func writeCSV(t *testing.T, rows []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "table.csv")
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadAlignsRowsAndDropsExcludedColumns(t *testing.T) {
	path := writeCSV(t, []string{
		"unique,Town,CA,Revenue,Employees,ReopenedByMarch29_UR",
		"b-001,Springfield,1,10.5,4,1",
		"b-002,Shelbyville,0,3.25,2,0",
		"b-003,Ogdenville,0,7,9,1",
	})

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, want := tbl.NumRows(), 3; got != want {
		t.Errorf("NumRows() = %d, want %d", got, want)
	}
	if got, want := tbl.NumFeatures(), 2; got != want {
		t.Errorf("NumFeatures() = %d, want %d", got, want)
	}

	wantCols := []string{"Revenue", "Employees"}
	for i, col := range wantCols {
		if tbl.Columns[i] != col {
			t.Errorf("Columns[%d] = %q, want %q", i, tbl.Columns[i], col)
		}
	}

	// Identifier, feature row and label must stay aligned.
	if tbl.IDs[1] != "b-002" {
		t.Errorf("IDs[1] = %q, want b-002", tbl.IDs[1])
	}
	if got := tbl.X.At(1, 0); got != 3.25 {
		t.Errorf("X.At(1, 0) = %v, want 3.25", got)
	}
	if got := tbl.Y.At(1, 0); got != 0 {
		t.Errorf("Y.At(1, 0) = %v, want 0", got)
	}
	if got := tbl.Y.At(2, 0); got != 1 {
		t.Errorf("Y.At(2, 0) = %v, want 1", got)
	}
}

func TestLoadDropsRowsWithMissingValues(t *testing.T) {
	// Row b-002 misses a feature value, b-003 misses a value in a column
	// that is later dropped; both are removed before column dropping.
	path := writeCSV(t, []string{
		"unique,Town,Revenue,ReopenedByMarch29_UR",
		"b-001,Springfield,10.5,1",
		"b-002,Shelbyville,,0",
		"b-003,,7,1",
		"b-004,Ogdenville,2,0",
	})

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, want := tbl.NumRows(), 2; got != want {
		t.Fatalf("NumRows() = %d, want %d", got, want)
	}
	if tbl.IDs[0] != "b-001" || tbl.IDs[1] != "b-004" {
		t.Errorf("IDs = %v, want [b-001 b-004]", tbl.IDs)
	}
}

func TestLoadKeepsAbsentExcludedColumnsOptional(t *testing.T) {
	// No excluded column is present at all; the extract is loadable as-is.
	path := writeCSV(t, []string{
		"unique,Revenue,ReopenedByMarch29_UR",
		"b-001,10.5,1",
		"b-002,3,0",
	})

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := tbl.NumFeatures(), 1; got != want {
		t.Errorf("NumFeatures() = %d, want %d", got, want)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want func(t *testing.T, err error)
	}{
		{
			name: "Missing identifier column",
			rows: []string{
				"Revenue,ReopenedByMarch29_UR",
				"10.5,1",
			},
			want: func(t *testing.T, err error) {
				var mce *errors.MissingColumnError
				if !errors.As(err, &mce) {
					t.Errorf("error = %v, want MissingColumnError", err)
				} else if mce.Column != UniqueColumn {
					t.Errorf("Column = %q, want %q", mce.Column, UniqueColumn)
				}
			},
		},
		{
			name: "Missing label column",
			rows: []string{
				"unique,Revenue",
				"b-001,10.5",
			},
			want: func(t *testing.T, err error) {
				var mce *errors.MissingColumnError
				if !errors.As(err, &mce) {
					t.Errorf("error = %v, want MissingColumnError", err)
				}
			},
		},
		{
			name: "Label outside binary domain",
			rows: []string{
				"unique,Revenue,ReopenedByMarch29_UR",
				"b-001,10.5,2",
			},
			want: func(t *testing.T, err error) {
				var lde *errors.LabelDomainError
				if !errors.As(err, &lde) {
					t.Errorf("error = %v, want LabelDomainError", err)
				}
			},
		},
		{
			name: "Duplicate identifier",
			rows: []string{
				"unique,Revenue,ReopenedByMarch29_UR",
				"b-001,10.5,1",
				"b-001,3,0",
			},
			want: func(t *testing.T, err error) {
				var dup *errors.DuplicateIDError
				if !errors.As(err, &dup) {
					t.Errorf("error = %v, want DuplicateIDError", err)
				}
			},
		},
		{
			name: "Non-numeric feature",
			rows: []string{
				"unique,Revenue,ReopenedByMarch29_UR",
				"b-001,lots,1",
			},
			want: func(t *testing.T, err error) {
				if err == nil {
					t.Error("expected error on non-numeric feature")
				}
			},
		},
		{
			name: "No data rows",
			rows: []string{
				"unique,Revenue,ReopenedByMarch29_UR",
			},
			want: func(t *testing.T, err error) {
				if !errors.Is(err, errors.ErrEmptyData) {
					t.Errorf("error = %v, want ErrEmptyData", err)
				}
			},
		},
		{
			name: "All rows have missing values",
			rows: []string{
				"unique,Revenue,ReopenedByMarch29_UR",
				"b-001,,1",
				"b-002,,0",
			},
			want: func(t *testing.T, err error) {
				if !errors.Is(err, errors.ErrEmptyData) {
					t.Errorf("error = %v, want ErrEmptyData", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCSV(t, tt.rows))
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			tt.want(t, err)
		})
	}
}

func TestExcludedColumns(t *testing.T) {
	excluded := make(map[string]bool)
	for _, col := range ExcludedColumns() {
		if excluded[col] {
			t.Errorf("column %q listed twice", col)
		}
		excluded[col] = true
	}

	for _, col := range []string{"Town", "County", "State", "Address", "PostalCode", "Region", "CA", "WY"} {
		if !excluded[col] {
			t.Errorf("column %q missing from exclusion list", col)
		}
	}

	if excluded[UniqueColumn] || excluded[LabelColumn] {
		t.Error("identifier and label columns must not be in the exclusion list")
	}
}
