/*
 * atoms.go, part of msms-wrapper.
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
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// AtomSet is the set of spheres msms builds the surface for: one position
// and one radius per atom. An AtomSet is never modified by this package.
type AtomSet struct {
	Coords []r3.Vec
	Radii  []float64
}

// NewAtomSet builds an AtomSet from a flat slice of coordinates (x1,y1,z1,x2...)
// and a slice of radii, and validates it.
func NewAtomSet(coords []float64, radii []float64) (*AtomSet, error) {
	if len(coords)%3 != 0 {
		return nil, newError(ErrInvalidInput, fmt.Sprintf("coordinate slice length %d not divisible by 3", len(coords)), "NewAtomSet")
	}
	A := &AtomSet{Coords: make([]r3.Vec, len(coords)/3), Radii: make([]float64, len(radii))}
	for i := range A.Coords {
		A.Coords[i] = r3.Vec{X: coords[3*i], Y: coords[3*i+1], Z: coords[3*i+2]}
	}
	copy(A.Radii, radii)
	if err := A.Check(); err != nil {
		return nil, errDecorate(err, "NewAtomSet")
	}
	return A, nil
}

// Len returns the number of atoms in the set.
func (A *AtomSet) Len() int {
	if A == nil {
		return 0
	}
	return len(A.Coords)
}

// Check returns an ErrInvalidInput error if the set is empty, if
// the number of coordinates and radii differ, or if any value is not
// a finite number (radii must also be positive).
func (A *AtomSet) Check() error {
	if A.Len() == 0 {
		return newError(ErrInvalidInput, "empty atom set", "Check")
	}
	if len(A.Coords) != len(A.Radii) {
		return newError(ErrInvalidInput, fmt.Sprintf("%d coordinates but %d radii", len(A.Coords), len(A.Radii)), "Check")
	}
	for i, c := range A.Coords {
		if !finite(c.X) || !finite(c.Y) || !finite(c.Z) {
			return newError(ErrInvalidInput, fmt.Sprintf("atom %d has non-finite coordinates %v", i, c), "Check")
		}
		if r := A.Radii[i]; !finite(r) || r <= 0 {
			return newError(ErrInvalidInput, fmt.Sprintf("atom %d has invalid radius %g", i, r), "Check")
		}
	}
	return nil
}

// Matrix returns the coordinates as a new Nx3 matrix.
func (A *AtomSet) Matrix() *mat.Dense {
	data := make([]float64, 0, 3*A.Len())
	for _, c := range A.Coords {
		data = append(data, c.X, c.Y, c.Z)
	}
	return mat.NewDense(A.Len(), 3, data)
}

// WriteXYZR writes the atom set as an msms input file (one "x y z r" line per atom)
// in the directory dir, and returns the path to the file.
// Numbers are written in the shortest form that reads back to the exact same
// float64, so no precision is lost on the way to msms.
func WriteXYZR(dir string, A *AtomSet) (string, error) {
	if err := A.Check(); err != nil {
		return "", errDecorate(err, "WriteXYZR")
	}
	name := filepath.Join(dir, "input.xyzr")
	out, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("WriteXYZR: can't create input file: %w", err)
	}
	defer out.Close()
	if err = writeXYZR(out, A); err != nil {
		return "", fmt.Errorf("WriteXYZR: %w", err)
	}
	return name, out.Close()
}

func writeXYZR(w io.Writer, A *AtomSet) error {
	b := bufio.NewWriter(w)
	buf := make([]byte, 0, 96)
	for i, c := range A.Coords {
		buf = buf[:0]
		for j, v := range [4]float64{c.X, c.Y, c.Z, A.Radii[i]} {
			if j > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err := b.Write(buf); err != nil {
			return err
		}
	}
	return b.Flush()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
