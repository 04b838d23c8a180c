// Package chart draws value series as PNG line charts.
package chart

import (
	"errors"
	"fmt"

	"github.com/etnz/folio"
	charts "github.com/vicanso/go-charts/v2"
)

// ErrNotEnoughData is returned for series with less than two points.
var ErrNotEnoughData = errors.New("not enough data points")

// Line renders s as a PNG line chart titled after name.
func Line(name string, s folio.Series) ([]byte, error) {
	if s.Len() < 2 {
		return nil, ErrNotEnoughData
	}

	labels := make([]string, 0, s.Len())
	values := make([]float64, 0, s.Len())
	layout := "2006-01-02"
	if s.Len() > 90 {
		layout = "Jan '06"
	}
	yMin, yMax := 0.0, 0.0
	for on, v := range s.Values() {
		f := v.InexactFloat64()
		if len(values) == 0 || f < yMin {
			yMin = f
		}
		if len(values) == 0 || f > yMax {
			yMax = f
		}
		labels = append(labels, on.Format(layout))
		values = append(values, f)
	}

	pad := (yMax - yMin) * 0.05
	if pad == 0 {
		pad = yMax * 0.05
	}
	if pad == 0 {
		pad = 1
	}
	yMin -= pad
	yMax += pad
	if yMin < 0 && values[0] >= 0 {
		yMin = 0
	}

	split := 6
	if len(labels) <= 30 {
		split = max(len(labels)/3, 3)
	}

	title := fmt.Sprintf("%s (%s)", name, s.Currency())
	subtitle := fmt.Sprintf("%s • last %s", s.Range(), s.LastMoney())

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: split,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}
