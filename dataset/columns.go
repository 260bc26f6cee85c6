package dataset

// Column names with a fixed role in the source table.
const (
	// UniqueColumn is the per-record identifier. It is carried alongside the
	// features for tracking records across resampling iterations but never
	// enters a feature matrix.
	UniqueColumn = "unique"

	// LabelColumn is the binary outcome being predicted.
	LabelColumn = "ReopenedByMarch29_UR"
)

// adminColumns are geographic/administrative descriptors excluded from the
// feature set.
var adminColumns = []string{
	"Town",
	"County",
	"State",
	"Address",
	"PostalCode",
	"Region",
}

// stateIndicatorColumns are the one-hot state membership columns present in
// the source table, one per state abbreviation that occurs in it.
var stateIndicatorColumns = []string{
	"AL", "AR", "AZ", "CA", "CO", "CT", "FL", "GA", "IA", "ID",
	"IL", "IN", "KS", "KY", "LA", "MA", "MD", "ME", "MI", "MN",
	"MO", "MS", "MT", "NC", "ND", "NE", "NH", "NJ", "NM", "NV",
	"NY", "OH", "OK", "OR", "PA", "RI", "SC", "SD", "TN", "TX",
	"UT", "VA", "VT", "WA", "WI", "WV", "WY",
}

// ExcludedColumns returns the full list of columns dropped from the feature
// set: the administrative descriptors plus the state indicators.
func ExcludedColumns() []string {
	out := make([]string, 0, len(adminColumns)+len(stateIndicatorColumns))
	out = append(out, adminColumns...)
	out = append(out, stateIndicatorColumns...)
	return out
}
