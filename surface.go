/*
 * surface.go, part of msms-wrapper.
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
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vertex is one vertex of the triangulated surface.
type Vertex struct {
	Pos       r3.Vec
	Normal    r3.Vec
	Curvature float64 //the 7th msms column. 0 if not present.
	Atom      int     //0-based index of the closest atom in the AtomSet, -1 if not present.
	Type      int     //msms vertex type, 0 if not present.
}

// Face is one triangle of the surface. V contains 0-based indexes
// in the vertex table.
type Face struct {
	V         [3]int
	Type      int
	Component int //analytical surface component (or face) the triangle belongs to.
}

// ComponentArea holds the figures msms reports for one surface component.
type ComponentArea struct {
	ID        int
	Probe     float64
	SESVolume float64 //numerical, as reported by msms. 0 if not reported.
	SESArea   float64
	SASArea   float64
}

// Header contains the information in the header lines of an msms output file.
type Header struct {
	Comment  string //the comment lines, without the leading '#'
	Count    int    //number of records declared, -1 if the file has no header
	Spheres  int
	Density  float64
	Probe    float64
	HasAreas bool //true if SES, SAS and Volume were given in the header
	SES      float64
	SAS      float64
	Volume   float64
}

// Analytical contains the analytical surface figures computed by msms for
// one run.
type Analytical struct {
	SES           float64
	SAS           float64
	Components    []ComponentArea
	AllComponents bool //whether all components were requested
	NoArea        bool //whether msms was asked not to compute areas
	found         bool
}

// Found returns true if msms reported analytical areas for the run.
func (A Analytical) Found() bool { return A.found }

// Params are the parameters msms reports to have used in a run.
type Params struct {
	Probe    float64
	Density  float64
	HDensity float64
}

// AtomArea contains the areas msms assigns to one atom (only
// available if an area file was requested).
type AtomArea struct {
	Atom int //0-based
	SES  float64
	SAS  float64
}

// Surface is the result of one msms run. It is owned by the caller.
type Surface struct {
	Vertices   []Vertex
	Faces      []Face
	VertHeader Header
	FaceHeader Header
	Analytical Analytical
	Params     Params
	AtomAreas  []AtomArea
	Log        []string //msms standard output and error, line by line
}

// Positions returns the vertex positions as an Nx3 matrix.
func (S *Surface) Positions() *mat.Dense {
	return vecs2Dense(len(S.Vertices), func(i int) r3.Vec { return S.Vertices[i].Pos })
}

// Normals returns the vertex normals as an Nx3 matrix.
func (S *Surface) Normals() *mat.Dense {
	return vecs2Dense(len(S.Vertices), func(i int) r3.Vec { return S.Vertices[i].Normal })
}

func vecs2Dense(n int, vec func(int) r3.Vec) *mat.Dense {
	if n == 0 {
		return &mat.Dense{}
	}
	data := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		v := vec(i)
		data = append(data, v.X, v.Y, v.Z)
	}
	return mat.NewDense(n, 3, data)
}

// AtomIndices returns the index of the closest atom for each vertex.
func (S *Surface) AtomIndices() []int {
	ret := make([]int, len(S.Vertices))
	for i, v := range S.Vertices {
		ret[i] = v.Atom
	}
	return ret
}

// Indices returns the vertex indexes of each face.
func (S *Surface) Indices() [][3]int {
	ret := make([][3]int, len(S.Faces))
	for i, f := range S.Faces {
		ret[i] = f.V
	}
	return ret
}

// ComponentIDs returns the sorted, unique component ids present in the face table.
func (S *Surface) ComponentIDs() []int {
	ids := make([]int, 0, 2)
	for _, f := range S.Faces {
		if !slices.Contains(ids, f.Component) {
			ids = append(ids, f.Component)
		}
	}
	slices.Sort(ids)
	return ids
}

// Component returns the faces that belong to the component id.
func (S *Surface) Component(id int) []Face {
	ret := make([]Face, 0, len(S.Faces))
	for _, f := range S.Faces {
		if f.Component == id {
			ret = append(ret, f)
		}
	}
	return ret
}

// Validate returns an ErrMalformedOutput error if any face refers to
// a vertex that is not in the vertex table.
func (S *Surface) Validate() error {
	n := len(S.Vertices)
	for i, f := range S.Faces {
		for _, v := range f.V {
			if v < 0 || v >= n {
				return newError(ErrMalformedOutput, fmt.Sprintf("face %d refers to vertex %d, but there are %d vertices", i, v, n), "Validate")
			}
		}
	}
	return nil
}
