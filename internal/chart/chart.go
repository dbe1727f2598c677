// Package chart renders the pipeline's bar charts to image files with
// gonum/plot. Output format follows the file extension (.png, .svg, .pdf, ...).
package chart

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"worldpop/internal/report"
	"worldpop/internal/schema"
	"worldpop/internal/table"
)

// ErrNoData is returned when a chart has no bars to draw.
var ErrNoData = errors.New("chart: no data")

// Bar is one labelled bar.
type Bar struct {
	Label string
	Value float64
}

// Spec describes a bar chart.
type Spec struct {
	Title  string
	YLabel string
	Bars   []Bar

	// RotateLabels tilts category labels 45 degrees for long names.
	RotateLabels bool

	// Width and Height default to 10x5 inches.
	Width, Height vg.Length
}

// Render draws s and saves it to path.
func Render(s Spec, path string) error {
	if len(s.Bars) == 0 {
		return ErrNoData
	}

	labels := make([]string, len(s.Bars))
	vals := make(plotter.Values, len(s.Bars))
	for i, b := range s.Bars {
		labels[i] = b.Label
		vals[i] = b.Value
	}

	p := plot.New()
	p.Title.Text = s.Title
	p.Y.Label.Text = s.YLabel

	bars, err := plotter.NewBarChart(vals, vg.Points(24))
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(plotter.NewGrid(), bars)
	p.NominalX(labels...)

	if s.RotateLabels {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}

	w, h := s.Width, s.Height
	if w == 0 {
		w = 10 * vg.Inch
	}
	if h == 0 {
		h = 5 * vg.Inch
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("chart: save %s: %w", path, err)
	}
	return nil
}

// PopulationSpec charts Population_2023 in millions for the given rows,
// countries on the category axis, in row order.
func PopulationSpec(top *table.Table) Spec {
	s := Spec{
		Title:        fmt.Sprintf("Top %d countries by population (2023)", top.Len()),
		YLabel:       "Population, millions",
		RotateLabels: true,
	}
	for _, r := range top.Rows {
		pop, ok := r.Get(schema.Population).Float()
		if !ok {
			continue
		}
		s.Bars = append(s.Bars, Bar{Label: r.Get(schema.Country).String(), Value: pop / 1e6})
	}
	return s
}

// MedianAgeSpec charts a grouped mean of Median_Age per Region in the order
// given. Groups without a mean are skipped.
func MedianAgeSpec(groups []report.Group) Spec {
	s := Spec{
		Title:  "Mean median age by region",
		YLabel: "Median age, years",
		Width:  8 * vg.Inch,
		Height: 4 * vg.Inch,
	}
	for _, g := range groups {
		if f, ok := g.Mean.Float(); ok {
			s.Bars = append(s.Bars, Bar{Label: g.Key, Value: f})
		}
	}
	return s
}
