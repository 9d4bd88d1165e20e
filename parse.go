/*
 * parse.go, part of msms-wrapper.
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
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/spatial/r3"
)

// Minimum number of fields per record. msms writes the full layout for
// triangulated surfaces; other modes may omit trailing columns.
const (
	minVertFields     = 6
	minFaceFields     = 3
	fullVertFields    = 9
	fullFaceFields    = 5
	maxScanTokenBytes = 1024 * 1024
)

// ParseFiles reads the vertex and face files written by msms and returns
// the corresponding Surface. If the surface kind is given and it is "tses",
// records must have all the columns msms writes for triangulated surfaces.
// Otherwise the column layout is taken from the first record of each file.
// File names ending in .zst are decompressed on the fly.
func ParseFiles(vert, face string, kind ...string) (*Surface, error) {
	errid := "ParseFiles"
	minv, minf := minVertFields, minFaceFields
	if len(kind) > 0 && kind[0] == "tses" {
		minv, minf = fullVertFields, fullFaceFields
	}
	S := new(Surface)
	err := withOutput(vert, func(r io.Reader) error {
		var err error
		S.Vertices, S.VertHeader, err = readVert(r, vert, minv)
		return err
	})
	if err != nil {
		return nil, errDecorate(err, errid)
	}
	err = withOutput(face, func(r io.Reader) error {
		var err error
		S.Faces, S.FaceHeader, err = readFace(r, face, minf)
		return err
	})
	if err != nil {
		return nil, errDecorate(err, errid)
	}
	if err = S.Validate(); err != nil {
		err.(*Error).filename = face
		return nil, errDecorate(err, errid)
	}
	S.Analytical = newAnalytical(S.VertHeader, nil, false)
	return S, nil
}

// ReadVert reads an msms vertex file from r.
func ReadVert(r io.Reader) ([]Vertex, Header, error) {
	return readVert(r, "", minVertFields)
}

// ReadFace reads an msms face file from r. The vertex indexes are
// returned 0-based.
func ReadFace(r io.Reader) ([]Face, Header, error) {
	return readFace(r, "", minFaceFields)
}

func readVert(r io.Reader, name string, minfields int) ([]Vertex, Header, error) {
	verts := make([]Vertex, 0, 1024)
	f := make([]float64, 6)
	h, err := readRecords(r, name, minfields, func(fields []string, layout, line int) error {
		for i := range f {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return malformed(name, line, "field %d: %q is not a number", i+1, fields[i])
			}
			f[i] = v
		}
		vert := Vertex{Pos: r3.Vec{X: f[0], Y: f[1], Z: f[2]}, Normal: r3.Vec{X: f[3], Y: f[4], Z: f[5]}, Atom: -1}
		var atomcol, typecol int
		switch {
		case layout >= fullVertFields:
			c, err := strconv.ParseFloat(fields[6], 64)
			if err != nil {
				return malformed(name, line, "field 7: %q is not a number", fields[6])
			}
			vert.Curvature = c
			atomcol, typecol = 7, 8
		case layout == 8:
			atomcol, typecol = 6, 7
		case layout == 7:
			atomcol, typecol = 6, -1
		default:
			atomcol, typecol = -1, -1
		}
		if atomcol > 0 {
			a, err := strconv.Atoi(fields[atomcol])
			if err != nil {
				return malformed(name, line, "field %d: %q is not an atom index", atomcol+1, fields[atomcol])
			}
			vert.Atom = a - 1 //msms counts spheres from 1
		}
		if typecol > 0 {
			t, err := strconv.Atoi(fields[typecol])
			if err != nil {
				return malformed(name, line, "field %d: %q is not a vertex type", typecol+1, fields[typecol])
			}
			vert.Type = t
		}
		verts = append(verts, vert)
		return nil
	})
	return verts, h, err
}

func readFace(r io.Reader, name string, minfields int) ([]Face, Header, error) {
	faces := make([]Face, 0, 2048)
	h, err := readRecords(r, name, minfields, func(fields []string, layout, line int) error {
		var face Face
		for i := 0; i < 3; i++ {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				return malformed(name, line, "field %d: %q is not a vertex index", i+1, fields[i])
			}
			if v < 1 {
				return malformed(name, line, "vertex index %d out of range, msms indexes start at 1", v)
			}
			face.V[i] = v - 1
		}
		var err error
		if layout >= 4 {
			if face.Type, err = strconv.Atoi(fields[3]); err != nil {
				return malformed(name, line, "field 4: %q is not a face type", fields[3])
			}
		}
		if layout >= 5 {
			if face.Component, err = strconv.Atoi(fields[4]); err != nil {
				return malformed(name, line, "field 5: %q is not a component number", fields[4])
			}
		}
		faces = append(faces, face)
		return nil
	})
	return faces, h, err
}

// readRecords reads the header, if present, and then calls record on each
// data line, with the line split in fields. The layout (the number of fields
// of the first record, which all the following records must have) and the
// 1-based line number are also passed. It checks that the number of records
// matches the one declared in the header.
func readRecords(r io.Reader, name string, minfields int, record func(fields []string, layout, line int) error) (Header, error) {
	h := Header{Count: -1}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxScanTokenBytes)
	var comments []string
	lineno := 0
	layout := 0
	records := 0
	countline := false //whether we still expect the count line
	for sc.Scan() {
		lineno++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			if records > 0 || h.Count >= 0 {
				return h, malformed(name, lineno, "comment line after the header: %q", line)
			}
			comments = append(comments, strings.TrimSpace(strings.TrimPrefix(trimmed, "#")))
			countline = true
			continue
		}
		fields := strings.Fields(trimmed)
		if countline {
			if err := parseCountLine(&h, fields); err != nil {
				return h, malformed(name, lineno, "bad header line %q: %v", line, err)
			}
			countline = false
			continue
		}
		if layout == 0 {
			layout = len(fields)
			if layout < minfields {
				return h, malformed(name, lineno, "%d fields in record, at least %d needed: %q", layout, minfields, line)
			}
		}
		if len(fields) < layout {
			return h, malformed(name, lineno, "%d fields in record, %d expected: %q", len(fields), layout, line)
		}
		if err := record(fields, layout, lineno); err != nil {
			return h, err
		}
		records++
	}
	if err := sc.Err(); err != nil {
		e := malformed(name, lineno, "read error")
		e.cause = err
		return h, e
	}
	h.Comment = strings.Join(comments, "\n")
	if countline {
		return h, malformed(name, lineno, "header without the record count line")
	}
	if h.Count >= 0 && h.Count != records {
		return h, malformed(name, lineno, "header declares %d records, but %d were found", h.Count, records)
	}
	return h, nil
}

// parseCountLine parses the header line with the record count.
// msms writes the count, the number of spheres, the density and the probe radius.
// If 3 more figures are given they are taken as the analytical SES, SAS and volume.
func parseCountLine(h *Header, fields []string) error {
	var err error
	//a line cut short is what msms leaves behind when killed while writing.
	if len(fields) != 4 && len(fields) != 7 {
		return fmt.Errorf("%d fields, expected 4 or 7", len(fields))
	}
	if h.Count, err = strconv.Atoi(fields[0]); err != nil {
		return err
	}
	if h.Count < 0 {
		return fmt.Errorf("negative record count %d", h.Count)
	}
	if h.Spheres, err = strconv.Atoi(fields[1]); err != nil {
		return err
	}
	floats := []*float64{&h.Density, &h.Probe, &h.SES, &h.SAS, &h.Volume}
	for i, v := range fields[2:] {
		if i >= len(floats) {
			break
		}
		if *floats[i], err = strconv.ParseFloat(v, 64); err != nil {
			return err
		}
	}
	h.HasAreas = len(fields) == 7
	return nil
}

// ReadAreaFile reads the per-atom areas written by msms with the -af flag.
// Lines that don't start with an atom number are taken to be headers and skipped.
func ReadAreaFile(name string) ([]AtomArea, error) {
	ret := make([]AtomArea, 0, 64)
	err := withOutput(name, func(r io.Reader) error {
		sc := bufio.NewScanner(r)
		lineno := 0
		for sc.Scan() {
			lineno++
			fields := strings.Fields(sc.Text())
			if len(fields) == 0 {
				continue
			}
			at, err := strconv.Atoi(fields[0])
			if err != nil {
				continue
			}
			if len(fields) < 3 {
				return malformed(name, lineno, "%d fields in area record, at least 3 needed: %q", len(fields), sc.Text())
			}
			a := AtomArea{Atom: at - 1}
			if a.SES, err = strconv.ParseFloat(fields[1], 64); err != nil {
				return malformed(name, lineno, "SES %q is not a number", fields[1])
			}
			if a.SAS, err = strconv.ParseFloat(fields[2], 64); err != nil {
				return malformed(name, lineno, "SAS %q is not a number", fields[2])
			}
			ret = append(ret, a)
		}
		return sc.Err()
	})
	if err != nil {
		return nil, errDecorate(err, "ReadAreaFile")
	}
	return ret, nil
}

// withOutput opens the file name, decompressing it if the name ends in .zst,
// and passes the reader to read. The file is always closed.
func withOutput(name string, read func(io.Reader) error) error {
	f, err := os.Open(name)
	if err != nil {
		e := newError(ErrMalformedOutput, "can't open output file", "withOutput")
		e.filename = name
		e.cause = err
		return e
	}
	defer f.Close()
	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(strings.ToLower(name), ".zst") {
		d, err := zstd.NewReader(r)
		if err != nil {
			e := newError(ErrMalformedOutput, "can't decompress output file", "withOutput")
			e.filename = name
			e.cause = err
			return e
		}
		defer d.Close()
		r = d
	}
	return read(r)
}
