package log

// Standard attribute keys for pipeline log records. Using a fixed vocabulary
// keeps the JSON logs of a whole run filterable by model family and step.
const (
	// ModelNameKey identifies the model family.
	// Examples: "RandomForest", "SVC", "KNN", "LogisticRegression"
	ModelNameKey = "model.name"

	// OperationKey specifies the pipeline operation being performed.
	// Standard values: "load", "grid_search", "evaluate", "write_results"
	OperationKey = "ml.operation"

	// IterationKey is the zero-based index within the repeated holdout loop.
	IterationKey = "ml.iteration"

	// SamplesKey is the number of rows in the data being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// AccuracyKey records classification accuracy, in [0, 1].
	AccuracyKey = "metrics.accuracy"

	// AccuracyStdKey records the sample standard deviation of an accuracy
	// series.
	AccuracyStdKey = "metrics.accuracy_std"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
