// Package reopenml is an offline batch pipeline that predicts whether a
// business reopened, from a tabular extract of administrative and survey
// features.
//
// The pipeline trains four classical classifiers (random forest, linear SVM,
// k-nearest neighbors, logistic regression), tunes each with 5-fold
// cross-validated grid search, then estimates per-record prediction totals
// and accuracy statistics with a repeated 50/50 holdout loop.
//
// Run it with:
//
//	go run ./cmd/reopenml -data ReopenedBusinesses.xlsx
//
// Each model family writes {tag}Results.csv (per-record prediction totals for
// records present in every holdout test split), {tag}Accuracy.png, and prints
// its mean holdout accuracy.
package reopenml
