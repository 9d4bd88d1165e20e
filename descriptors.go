/*
 * descriptors.go, part of msms-wrapper.
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

package msms

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Descriptors are the size descriptors of a molecular surface.
type Descriptors struct {
	SES    float64 //solvent-excluded surface area, A^2
	SAS    float64 //solvent-accessible surface area, A^2
	Volume float64 //volume enclosed by the triangulated SES, A^3
}

// Extract obtains the size descriptors for the surface S. The areas are the
// analytical ones reported by msms, unchanged. The volume is integrated
// numerically over all the faces of S, see MeshVolume. This is only meaningful if
// S contains a single closed component. If it doesn't, select one with
// S.Component and use MeshVolume directly.
// A surface computed with the no_area option carries no areas, and Extract
// returns an ErrInvalidInput error for it. Other surfaces without areas give
// an ErrMalformedOutput error.
func Extract(S *Surface) (Descriptors, error) {
	errid := "Extract"
	if !S.Analytical.Found() {
		if S.Analytical.NoArea {
			return Descriptors{}, newError(ErrInvalidInput, "no analytical areas: the surface was computed with -no_area", errid)
		}
		return Descriptors{}, newError(ErrMalformedOutput, "msms reported no analytical areas for the surface", errid)
	}
	if err := S.Validate(); err != nil {
		return Descriptors{}, errDecorate(err, errid)
	}
	return Descriptors{
		SES:    S.Analytical.SES,
		SAS:    S.Analytical.SAS,
		Volume: MeshVolume(S.Vertices, S.Indices()),
	}, nil
}

// MeshVolume returns the volume enclosed by the triangles given in faces,
// which index vertices. Each triangle, together with the origin, spans a
// tetrahedron with signed volume a.(b x c)/6, and the sum over a closed, consistently
// oriented surface is the enclosed volume (divergence theorem). The vertex order
// of each face is used as given. For a triangulated sphere the result
// is always a bit smaller than the real volume, and it grows toward it as the
// density increases.
// It panics if a face refers to a vertex not in vertices.
func MeshVolume(vertices []Vertex, faces [][3]int) float64 {
	var vol float64
	for _, f := range faces {
		a := vertices[f[0]].Pos
		b := vertices[f[1]].Pos
		c := vertices[f[2]].Pos
		vol += r3.Dot(a, r3.Cross(b, c))
	}
	return vol / 6
}

// MeshArea returns the total area of the triangles in faces.
// It panics if a face refers to a vertex not in vertices.
func MeshArea(vertices []Vertex, faces [][3]int) float64 {
	var area float64
	for _, f := range faces {
		a := vertices[f[0]].Pos
		ab := r3.Sub(vertices[f[1]].Pos, a)
		ac := r3.Sub(vertices[f[2]].Pos, a)
		area += r3.Norm(r3.Cross(ab, ac)) / 2
	}
	return area
}

// ScanPoint is the result of one run in a density scan.
type ScanPoint struct {
	Density  float64
	Vertices int
	Faces    int
	Descriptors
}

// Monotonic returns true if the volume in points never decreases as
// the density increases.
func Monotonic(points []ScanPoint) bool {
	p := make([]ScanPoint, len(points))
	copy(p, points)
	sort.SliceStable(p, func(i, j int) bool { return p[i].Density < p[j].Density })
	for i := 1; i < len(p); i++ {
		if p[i].Volume < p[i-1].Volume {
			return false
		}
	}
	return true
}
