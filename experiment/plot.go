package experiment

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/reopenlab/reopenml/pkg/errors"
)

// WriteAccuracyPlot renders the per-iteration accuracy series of one model
// family as a line chart PNG at path.
func WriteAccuracyPlot(path, modelName string, accuracies []float64) error {
	if len(accuracies) == 0 {
		return errors.NewValueError("WriteAccuracyPlot", "no accuracy scores to plot")
	}

	p := plot.New()
	p.Title.Text = modelName + " holdout accuracy"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "accuracy"
	p.Y.Min = 0
	p.Y.Max = 1

	pts := make(plotter.XYs, len(accuracies))
	for i, acc := range accuracies {
		pts[i].X = float64(i)
		pts[i].Y = acc
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return errors.Wrap(err, "experiment: building accuracy plot")
	}
	p.Add(line, points)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "experiment: saving %s", path)
	}
	return nil
}
