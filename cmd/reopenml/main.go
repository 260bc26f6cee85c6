// Command reopenml trains and evaluates four classifiers on the business
// reopening table and writes one results CSV and one accuracy chart per
// model family.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/reopenlab/reopenml/experiment"
	pkglog "github.com/reopenlab/reopenml/pkg/log"
)

func main() {
	dataPath := flag.String("data", "ReopenedBusinesses.xlsx", "Path to the source table (.xlsx or .csv)")
	outDir := flag.String("out", ".", "Directory for results files")
	iterations := flag.Int("iterations", 20, "Number of repeated holdout iterations per model")
	loglevel := flag.String("loglevel", "info", "Log level (debug|info|warn|error)")
	flag.Parse()

	pkglog.SetupLogger(*loglevel)

	cfg := experiment.Config{
		DataPath:   *dataPath,
		OutDir:     *outDir,
		Iterations: *iterations,
	}

	if err := experiment.Run(cfg); err != nil {
		slog.Error("run failed", pkglog.ErrAttr(err))
		os.Exit(1)
	}
}
