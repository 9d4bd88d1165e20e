/*
 * msmslog.go, part of msms-wrapper.
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
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ParseLog extracts, from the text msms prints while running, the parameters
// used in the calculation and the per-component areas and volumes.
// Components are returned in the order msms reports them.
func ParseLog(text string) (Params, []ComponentArea) {
	var p Params
	comps := make([]ComponentArea, 0, 1)
	lines := splitLines(text)
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(line, "PARAM"):
			//PARAM  Probe_radius  1.500 density  1.000 hdensity  3.000
			f := strings.Fields(line)
			if len(f) >= 7 {
				p.Probe, _ = strconv.ParseFloat(f[2], 64)
				p.Density, _ = strconv.ParseFloat(f[4], 64)
				p.HDensity, _ = strconv.ParseFloat(f[6], 64)
			}
		case strings.Contains(line, "ANALYTICAL SURFACE AREA"):
			//Comp. probe_radius reent, toric, contact SES SAS
			var rows [][]float64
			rows, i = tableRows(lines, i+1, 7)
			for _, r := range rows {
				c := component(&comps, int(r[0]))
				c.Probe, c.SESArea, c.SASArea = r[1], r[5], r[6]
			}
		case strings.Contains(line, "NUMERICAL VOLUMES AND AREA"):
			//Comp. probe_radius SES_volume SES_area
			var rows [][]float64
			rows, i = tableRows(lines, i+1, 4)
			for _, r := range rows {
				c := component(&comps, int(r[0]))
				c.Probe, c.SESVolume = r[1], r[2]
			}
		}
	}
	return p, comps
}

// component returns the component with the given id in comps, appending it if needed.
func component(comps *[]ComponentArea, id int) *ComponentArea {
	for i := range *comps {
		if (*comps)[i].ID == id {
			return &(*comps)[i]
		}
	}
	*comps = append(*comps, ComponentArea{ID: id})
	return &(*comps)[len(*comps)-1]
}

// tableRows reads the numeric rows of an msms table starting at line from.
// The column titles, if present, are skipped. It stops at the first line that
// doesn't start with a component number and returns the rows and the index
// of the last line read.
func tableRows(lines []string, from, minfields int) ([][]float64, int) {
	var rows [][]float64
	i := from
	for ; i < len(lines); i++ {
		f := strings.Fields(lines[i])
		if len(f) == 0 {
			continue
		}
		if strings.HasPrefix(f[0], "Comp") {
			continue
		}
		if _, err := strconv.Atoi(f[0]); err != nil || len(f) < minfields {
			break
		}
		row := make([]float64, len(f))
		ok := true
		for j, v := range f {
			var err error
			if row[j], err = strconv.ParseFloat(strings.TrimSuffix(v, ","), 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	return rows, i - 1
}

// newAnalytical builds the analytical figures for a run. Figures given in
// the vertex file header take precedence over those in the msms log. From the log,
// all components are summed if all were requested, otherwise the first
// component reported (the outer surface) is used.
func newAnalytical(h Header, comps []ComponentArea, all bool) Analytical {
	A := Analytical{Components: comps, AllComponents: all}
	if h.HasAreas {
		A.SES, A.SAS, A.found = h.SES, h.SAS, true
		return A
	}
	withAreas := slices.DeleteFunc(slices.Clone(comps), func(c ComponentArea) bool { return c.SESArea == 0 && c.SASArea == 0 })
	if len(withAreas) == 0 {
		return A
	}
	A.found = true
	if !all {
		A.SES, A.SAS = withAreas[0].SESArea, withAreas[0].SASArea
		return A
	}
	ses := make([]float64, len(withAreas))
	sas := make([]float64, len(withAreas))
	for i, c := range withAreas {
		ses[i], sas[i] = c.SESArea, c.SASArea
	}
	A.SES, A.SAS = floats.Sum(ses), floats.Sum(sas)
	return A
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
