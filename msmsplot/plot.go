/*
 * plot.go, part of msms-wrapper.
 *
 * Copyright 2026 The msms-wrapper authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package msmsplot plots the results of msms density scans.
package msmsplot

import (
	"fmt"
	"image/color"
	"sort"

	msms "github.com/rinikerlab/msms-wrapper"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Quantity selects what is plotted against the density.
type Quantity int

const (
	Volume Quantity = iota
	SES
	SAS
	Vertices
)

func (q Quantity) String() string {
	switch q {
	case Volume:
		return "Volume (A^3)"
	case SES:
		return "SES area (A^2)"
	case SAS:
		return "SAS area (A^2)"
	case Vertices:
		return "Vertices"
	}
	return "Unknown"
}

func (q Quantity) value(p msms.ScanPoint) float64 {
	switch q {
	case SES:
		return p.SES
	case SAS:
		return p.SAS
	case Vertices:
		return float64(p.Vertices)
	}
	return p.Volume
}

// Convergence plots the quantity q against the triangulation density for
// the points of a scan, and saves the plot to filename. The format is taken
// from the extension (png, svg, pdf...). If reference is not zero, it is drawn
// as a horizontal line, for instance the exact volume of a test sphere.
func Convergence(points []msms.ScanPoint, q Quantity, reference float64, title, filename string) error {
	if len(points) == 0 {
		return fmt.Errorf("msmsplot: no points to plot")
	}
	sorted := make([]msms.ScanPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Density < sorted[j].Density })
	pts := make(plotter.XYs, len(sorted))
	for i, v := range sorted {
		pts[i].X = v.Density
		pts[i].Y = q.value(v)
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "Density (vertices/A^2)"
	p.Y.Label.Text = q.String()
	p.Add(plotter.NewGrid())
	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("msmsplot: %w", err)
	}
	l.Color = color.RGBA{B: 200, A: 255}
	s.Shape = draw.CircleGlyph{}
	s.Color = color.RGBA{B: 200, A: 255}
	p.Add(l, s)
	p.Legend.Add("msms", l, s)
	if reference != 0 {
		ref := plotter.NewFunction(func(float64) float64 { return reference })
		ref.Color = color.RGBA{R: 255, A: 255}
		ref.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(ref)
		p.Legend.Add("reference", ref)
		//so the reference line is always visible.
		if reference > p.Y.Max {
			p.Y.Max = reference
		}
		if reference < p.Y.Min {
			p.Y.Min = reference
		}
	}
	p.Legend.Top = false
	p.Legend.Left = false
	if err := p.Save(5*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("msmsplot: can't save plot: %w", err)
	}
	return nil
}

// VolumeConvergence plots the volume against the density for the points of a scan. See Convergence.
func VolumeConvergence(points []msms.ScanPoint, reference float64, title, filename string) error {
	return Convergence(points, Volume, reference, title, filename)
}
