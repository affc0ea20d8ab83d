// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Chart file names written under the figures directory.
const (
	ModelChartFile  = "model_distribution.png"
	TaskChartFile   = "task_distribution.png"
	PCurveChartFile = "p-curve.png"
	FunnelChartFile = "funnel.png"
)

// BarChart renders counts as a 10x4 inch bar chart with rotated category labels.
func BarChart(path, title string, counts []Count) error {
	if len(counts) == 0 {
		return fmt.Errorf("bar chart %q: no data", title)
	}

	values := make(plotter.Values, len(counts))
	labels := make([]string, len(counts))
	for i, c := range counts {
		values[i] = float64(c.N)
		labels[i] = c.Label
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Number of Studies"
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("bar chart %q: %w", title, err)
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)

	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// PCurve renders a histogram of p-values.
func PCurve(path string, pvalues []float64) error {
	if len(pvalues) == 0 {
		return fmt.Errorf("p-curve: no p-values")
	}

	p := plot.New()
	p.Title.Text = "P-Curve: Distribution of Significant P-Values (p < 0.05)"
	p.X.Label.Text = "p-value"
	p.Y.Label.Text = "Frequency"
	p.Add(plotter.NewGrid())

	h, err := plotter.NewHist(plotter.Values(pvalues), sturges(len(pvalues)))
	if err != nil {
		return fmt.Errorf("p-curve: %w", err)
	}
	p.Add(h)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// sturges returns the Sturges bin count for n samples.
func sturges(n int) int {
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

// StandardError is the placeholder standard error 1/sqrt(n) used when
// per-study errors are unknown.
func StandardError(n int) float64 {
	if n <= 0 {
		n = DefaultSampleSize
	}
	return 1 / math.Sqrt(float64(n))
}

// Funnel renders effect sizes against a constant standard error on an
// inverted y axis.
func Funnel(path string, effects []float64, se float64) error {
	if len(effects) == 0 {
		return fmt.Errorf("funnel: no effect sizes")
	}

	pts := make(plotter.XYs, len(effects))
	for i, e := range effects {
		pts[i].X = e
		pts[i].Y = se
	}

	p := plot.New()
	p.Title.Text = "Funnel Plot: Effect Size vs. SE (Estimated)"
	p.X.Label.Text = "Effect Size"
	p.Y.Label.Text = "Standard Error (approx.)"
	p.Add(plotter.NewGrid())

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("funnel: %w", err)
	}
	p.Add(s)

	p.Y.Min = 0
	p.Y.Max = 2 * se
	p.Y.Scale = plot.InvertedScale{Normalizer: p.Y.Scale}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
