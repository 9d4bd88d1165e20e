/*
 * options.go, part of msms-wrapper.
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
	"log"
	"slices"
	"strconv"
	"strings"
	"time"
)

// msms defaults.
const (
	defProbe    float64 = 1.5
	defDensity  float64 = 1.0
	defHDensity float64 = 3.0
	defSurface          = "tses"
)

// Named option keys, as accepted by Options.Set.
const (
	KeyProbeRadius   = "probe_radius"
	KeyDensity       = "density"
	KeyHDensity      = "hdensity"
	KeySurface       = "surface"
	KeyNoHeader      = "no_header"
	KeyFreeVertices  = "free_vertices"
	KeyAllComponents = "all_components"
	KeyNoArea        = "no_area"
	KeyAreaFile      = "area_file"
)

// The order in which named options are rendered.
var optionKeys = []string{KeyProbeRadius, KeyDensity, KeyHDensity, KeySurface,
	KeyNoHeader, KeyFreeVertices, KeyAllComponents, KeyNoArea, KeyAreaFile}

// msms switch for each named option. area_file maps to -af, which takes the
// output name, so it is handled with the other file switches.
var optionSwitch = map[string]string{
	KeyProbeRadius:   "-probe_radius",
	KeyDensity:       "-density",
	KeyHDensity:      "-hdensity",
	KeySurface:       "-surface",
	KeyNoHeader:      "-no_header",
	KeyFreeVertices:  "-free_vertices",
	KeyAllComponents: "-all_components",
	KeyNoArea:        "-no_area",
}

// switches that take a value on the command line.
var valuedSwitch = map[string]bool{"-probe_radius": true, "-density": true, "-hdensity": true, "-surface": true}

// file switches are always set by this package.
var reservedSwitch = []string{"-if", "-of", "-af"}

var surfaceKinds = []string{"tses", "ases"}

// Options contains the settings for an msms run. The zero value is not
// useful; use DefaultOptions. As in the rest of the package, each
// accessor returns the current value and sets a new one if given.
type Options struct {
	probe         float64
	density       float64
	hdensity      float64
	surface       string
	noHeader      bool
	freeVertices  bool
	allComponents bool
	noArea        bool
	areaFile      bool
	extra         []string
	timeout       time.Duration
	archive       string
	set           map[string]bool //named options set explicitly by the caller
}

// DefaultOptions returns an Options with the msms defaults.
func DefaultOptions() *Options {
	O := new(Options)
	O.SetDefaults()
	return O
}

// SetDefaults sets all options to the msms defaults, clears the
// extra flags and forgets which options were set explicitly.
func (O *Options) SetDefaults() {
	O.probe = defProbe
	O.density = defDensity
	O.hdensity = defHDensity
	O.surface = defSurface
	O.noHeader = false
	O.freeVertices = false
	O.allComponents = false
	O.noArea = false
	O.areaFile = false
	O.extra = nil
	O.timeout = 0
	O.archive = ""
	O.set = make(map[string]bool)
}

// Copy returns an independent copy of the options.
func (O *Options) Copy() *Options {
	r := *O
	r.extra = slices.Clone(O.extra)
	r.set = make(map[string]bool, len(O.set))
	for k, v := range O.set {
		r.set[k] = v
	}
	return &r
}

func (O *Options) mark(key string) {
	if O.set == nil {
		O.set = make(map[string]bool)
	}
	O.set[key] = true
}

// ProbeRadius returns the probe radius (A) and sets it, if a value is given.
func (O *Options) ProbeRadius(r ...float64) float64 {
	ret := O.probe
	if len(r) > 0 {
		O.probe = r[0]
		O.mark(KeyProbeRadius)
	}
	return ret
}

// Density returns the triangulation density (vertices per A^2) and sets it, if a value is given.
func (O *Options) Density(d ...float64) float64 {
	ret := O.density
	if len(d) > 0 {
		O.density = d[0]
		O.mark(KeyDensity)
	}
	return ret
}

// HDensity returns the high density used by msms for "-surface ases" and sets it, if a value is given.
func (O *Options) HDensity(d ...float64) float64 {
	ret := O.hdensity
	if len(d) > 0 {
		O.hdensity = d[0]
		O.mark(KeyHDensity)
	}
	return ret
}

// Surface returns the kind of surface, "tses" (triangulated) or "ases" (analytical)
// and sets it, if a value is given. Invalid kinds are reported by Args.
func (O *Options) Surface(kind ...string) string {
	ret := O.surface
	if len(kind) > 0 {
		O.surface = kind[0]
		O.mark(KeySurface)
	}
	return ret
}

// NoHeader returns whether msms is asked to omit the output file headers and sets it, if a value is given.
func (O *Options) NoHeader(b ...bool) bool {
	ret := O.noHeader
	if len(b) > 0 {
		O.noHeader = b[0]
		O.mark(KeyNoHeader)
	}
	return ret
}

// FreeVertices returns whether free vertices are computed and sets it, if a value is given.
func (O *Options) FreeVertices(b ...bool) bool {
	ret := O.freeVertices
	if len(b) > 0 {
		O.freeVertices = b[0]
		O.mark(KeyFreeVertices)
	}
	return ret
}

// AllComponents returns whether all surface components (including cavities) are computed
// and sets it, if a value is given.
func (O *Options) AllComponents(b ...bool) bool {
	ret := O.allComponents
	if len(b) > 0 {
		O.allComponents = b[0]
		O.mark(KeyAllComponents)
	}
	return ret
}

// NoArea returns whether msms is asked to skip the area calculation and sets it, if a value is given.
func (O *Options) NoArea(b ...bool) bool {
	ret := O.noArea
	if len(b) > 0 {
		O.noArea = b[0]
		O.mark(KeyNoArea)
	}
	return ret
}

// AreaFile returns whether msms writes the per-atom area file and sets it, if a value is given.
func (O *Options) AreaFile(b ...bool) bool {
	ret := O.areaFile
	if len(b) > 0 {
		O.areaFile = b[0]
		O.mark(KeyAreaFile)
	}
	return ret
}

// Extra returns the raw flags passed verbatim to msms after the named options,
// and appends tokens to them, if given.
func (O *Options) Extra(tokens ...string) []string {
	ret := O.extra
	if len(tokens) > 0 {
		O.extra = append(slices.Clone(O.extra), tokens...)
	}
	return ret
}

// Timeout returns the maximum time an msms run may take (0 means no limit)
// and sets it, if a valid value is given.
func (O *Options) Timeout(t ...time.Duration) time.Duration {
	ret := O.timeout
	if len(t) > 0 && t[0] >= 0 {
		O.timeout = t[0]
	}
	return ret
}

// Archive returns the directory where compressed copies of the msms output
// files are kept (empty means they are not kept) and sets it, if given.
func (O *Options) Archive(dir ...string) string {
	ret := O.archive
	if len(dir) > 0 {
		O.archive = dir[0]
	}
	return ret
}

// Set sets the named option key to value. Floating point options accept any
// Go number or a numeric string, boolean options accept a bool or a string
// understood by strconv.ParseBool. An unknown key is an ErrUnknownOption error,
// a value of the wrong type an ErrInvalidInput one.
func (O *Options) Set(key string, value any) error {
	errid := "Options/Set"
	bad := func(what string) error {
		return newError(ErrInvalidInput, fmt.Sprintf("option %s: %s %v (%T)", key, what, value, value), errid)
	}
	switch key {
	case KeyProbeRadius, KeyDensity, KeyHDensity:
		f, ok := toFloat(value)
		if !ok {
			return bad("not a number:")
		}
		switch key {
		case KeyProbeRadius:
			O.ProbeRadius(f)
		case KeyDensity:
			O.Density(f)
		default:
			O.HDensity(f)
		}
	case KeySurface:
		s, ok := value.(string)
		if !ok {
			return bad("not a string:")
		}
		if !slices.Contains(surfaceKinds, s) {
			return bad(fmt.Sprintf("not one of %v:", surfaceKinds))
		}
		O.Surface(s)
	case KeyNoHeader, KeyFreeVertices, KeyAllComponents, KeyNoArea, KeyAreaFile:
		b, ok := toBool(value)
		if !ok {
			return bad("not a boolean:")
		}
		switch key {
		case KeyNoHeader:
			O.NoHeader(b)
		case KeyFreeVertices:
			O.FreeVertices(b)
		case KeyAllComponents:
			O.AllComponents(b)
		case KeyNoArea:
			O.NoArea(b)
		default:
			O.AreaFile(b)
		}
	default:
		return newError(ErrUnknownOption, fmt.Sprintf("%q is not one of %v", key, optionKeys), errid)
	}
	return nil
}

// OptionsFromMap returns the default options, modified by the named options
// and with the extra flags appended.
func OptionsFromMap(named map[string]any, extra ...string) (*Options, error) {
	O := DefaultOptions()
	//sorted, so the error, if any, doesn't depend on map order.
	keys := make([]string, 0, len(named))
	for k := range named {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := O.Set(k, named[k]); err != nil {
			return nil, errDecorate(err, "OptionsFromMap")
		}
	}
	O.Extra(extra...)
	return O, nil
}

// Check returns an ErrInvalidInput error if any of the named options
// has a value msms would not accept.
func (O *Options) Check() error {
	errid := "Options/Check"
	for _, v := range []struct {
		key string
		val float64
	}{{KeyProbeRadius, O.probe}, {KeyDensity, O.density}, {KeyHDensity, O.hdensity}} {
		if !finite(v.val) || v.val <= 0 {
			return newError(ErrInvalidInput, fmt.Sprintf("option %s must be a positive number, not %g", v.key, v.val), errid)
		}
	}
	if !slices.Contains(surfaceKinds, O.surface) {
		return newError(ErrInvalidInput, fmt.Sprintf("option %s must be one of %v, not %q", KeySurface, surfaceKinds, O.surface), errid)
	}
	return nil
}

// Args returns the msms command line arguments (not including the program itself)
// for a run reading the input file input and writing the files with the prefix output.
// Named options come first, in canonical "-key value" form, then the extra flags.
// A switch never appears twice: an extra flag for a switch whose named option
// was set explicitly is dropped, otherwise the extra flag replaces the default.
func (O *Options) Args(input, output string) ([]string, error) {
	errid := "Options/Args"
	if err := O.Check(); err != nil {
		return nil, errDecorate(err, errid)
	}
	extra, fromExtra, err := O.filterExtra()
	if err != nil {
		return nil, errDecorate(err, errid)
	}
	args := []string{"-if", input, "-of", output}
	for _, key := range optionKeys {
		sw := optionSwitch[key]
		if sw == "" || fromExtra[sw] {
			continue
		}
		switch key {
		case KeyProbeRadius:
			args = append(args, sw, formatFloat(O.probe))
		case KeyDensity:
			args = append(args, sw, formatFloat(O.density))
		case KeyHDensity:
			args = append(args, sw, formatFloat(O.hdensity))
		case KeySurface:
			args = append(args, sw, O.surface)
		case KeyNoHeader:
			args = appendFlag(args, sw, O.noHeader)
		case KeyFreeVertices:
			args = appendFlag(args, sw, O.freeVertices)
		case KeyAllComponents:
			args = appendFlag(args, sw, O.allComponents)
		case KeyNoArea:
			args = appendFlag(args, sw, O.noArea)
		}
	}
	if O.areaFile {
		args = append(args, "-af", output)
	}
	return append(args, extra...), nil
}

// filterExtra returns the extra flags that survive the precedence rules, and
// the set of modeled switches the extra flags take over from the defaults.
func (O *Options) filterExtra() ([]string, map[string]bool, error) {
	keyOf := make(map[string]string, len(optionSwitch))
	for k, sw := range optionSwitch {
		keyOf[sw] = k
	}
	ret := make([]string, 0, len(O.extra))
	taken := make(map[string]bool)
	for i := 0; i < len(O.extra); i++ {
		tok := O.extra[i]
		if slices.Contains(reservedSwitch, tok) {
			return nil, nil, newError(ErrInvalidInput, fmt.Sprintf("%s is managed by msms-wrapper and can't be given as an extra flag", tok), "filterExtra")
		}
		key, modeled := keyOf[tok]
		if !modeled {
			ret = append(ret, tok)
			continue
		}
		if O.set[key] {
			dropped := tok
			if valuedSwitch[tok] && i+1 < len(O.extra) {
				i++
				dropped += " " + O.extra[i]
			}
			log.Printf("msms: extra flag %q ignored, option %s was set to %s", dropped, key, O.render(key))
			continue
		}
		taken[tok] = true
		ret = append(ret, tok)
		if valuedSwitch[tok] && i+1 < len(O.extra) {
			i++
			ret = append(ret, O.extra[i])
		}
	}
	return ret, taken, nil
}

// rendered holds the settings that reach msms through a command line,
// whether they come from named options or from extra flags.
type rendered struct {
	surface       string
	allComponents bool
	noArea        bool
}

// renderedArgs reads the settings that matter for parsing from args,
// as built by Args.
func renderedArgs(args []string) rendered {
	r := rendered{surface: defSurface}
	for i := 4; i < len(args); i++ { //skip -if and -of
		switch args[i] {
		case "-surface":
			if i+1 < len(args) {
				r.surface = args[i+1]
				i++
			}
		case "-all_components":
			r.allComponents = true
		case "-no_area":
			r.noArea = true
		}
	}
	return r
}

// render returns the value of a named option as it would be passed to msms.
func (O *Options) render(key string) string {
	switch key {
	case KeyProbeRadius:
		return formatFloat(O.probe)
	case KeyDensity:
		return formatFloat(O.density)
	case KeyHDensity:
		return formatFloat(O.hdensity)
	case KeySurface:
		return O.surface
	case KeyNoHeader:
		return strconv.FormatBool(O.noHeader)
	case KeyFreeVertices:
		return strconv.FormatBool(O.freeVertices)
	case KeyAllComponents:
		return strconv.FormatBool(O.allComponents)
	case KeyNoArea:
		return strconv.FormatBool(O.noArea)
	case KeyAreaFile:
		return strconv.FormatBool(O.areaFile)
	}
	return ""
}

// formatFloat renders f in plain decimal notation, with as many digits as
// needed to read back the same float64.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func appendFlag(args []string, sw string, on bool) []string {
	if on {
		return append(args, sw)
	}
	return args
}

func toFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case int:
		return float64(f), true
	case int32:
		return float64(f), true
	case int64:
		return float64(f), true
	case string:
		r, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		return r, err == nil
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		r, err := strconv.ParseBool(strings.TrimSpace(b))
		return r, err == nil
	}
	return false, false
}
