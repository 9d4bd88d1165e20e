package msms

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// icosphere returns a triangulated sphere of radius r centered at center, obtained by
// subdividing an icosahedron level times. All vertices lie on the sphere
// and all faces are oriented outwards.
func icosphere(center r3.Vec, r float64, level int) ([]Vertex, [][3]int) {
	t := (1 + math.Sqrt(5)) / 2
	base := []r3.Vec{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	pts := make([]r3.Vec, 0, len(base))
	for _, v := range base {
		pts = append(pts, r3.Unit(v))
	}
	for l := 0; l < level; l++ {
		mid := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{min(a, b), max(a, b)}
			if i, ok := mid[key]; ok {
				return i
			}
			pts = append(pts, r3.Unit(r3.Add(pts[a], pts[b])))
			mid[key] = len(pts) - 1
			return len(pts) - 1
		}
		next := make([][3]int, 0, 4*len(faces))
		for _, f := range faces {
			ab := midpoint(f[0], f[1])
			bc := midpoint(f[1], f[2])
			ca := midpoint(f[2], f[0])
			next = append(next, [3]int{f[0], ab, ca}, [3]int{f[1], bc, ab}, [3]int{f[2], ca, bc}, [3]int{ab, bc, ca})
		}
		faces = next
	}
	for i, f := range faces {
		a, b, c := pts[f[0]], pts[f[1]], pts[f[2]]
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		if r3.Dot(n, r3.Add(r3.Add(a, b), c)) < 0 {
			faces[i] = [3]int{f[0], f[2], f[1]}
		}
	}
	verts := make([]Vertex, len(pts))
	for i, p := range pts {
		verts[i] = Vertex{Pos: r3.Add(center, r3.Scale(r, p)), Normal: p, Atom: 0, Type: 3}
	}
	return verts, faces
}

// msmsFiles contains what is needed to write a pair of msms output files.
type msmsFiles struct {
	verts     []Vertex
	faces     [][3]int
	component []int //per face, optional
	areas     []float64
	noHeader  bool
	vertCols  int //9 if 0
	faceCols  int //5 if 0
}

// write writes prefix.vert and prefix.face in msms format.
func (m msmsFiles) write(t *testing.T, prefix string) (string, string) {
	t.Helper()
	vcols, fcols := m.vertCols, m.faceCols
	if vcols == 0 {
		vcols = 9
	}
	if fcols == 0 {
		fcols = 5
	}
	var vb, fb strings.Builder
	if !m.noHeader {
		fmt.Fprintf(&vb, "# MSMS solvent excluded surface vertices for %s\n", filepath.Base(prefix))
		fmt.Fprintf(&vb, "#vertex #sphere density probe_r\n")
		fmt.Fprintf(&vb, "%7d %7d %6.2f %6.2f", len(m.verts), 1, 1.0, 1.5)
		for _, a := range m.areas {
			fmt.Fprintf(&vb, " %.6f", a)
		}
		vb.WriteString("\n")
		fmt.Fprintf(&fb, "# MSMS solvent excluded surface faces for %s\n", filepath.Base(prefix))
		fmt.Fprintf(&fb, "#faces  #sphere density probe_r\n")
		fmt.Fprintf(&fb, "%7d %7d %6.2f %6.2f\n", len(m.faces), 1, 1.0, 1.5)
	}
	for _, v := range m.verts {
		cols := []string{
			fmt.Sprintf("%.9f", v.Pos.X), fmt.Sprintf("%.9f", v.Pos.Y), fmt.Sprintf("%.9f", v.Pos.Z),
			fmt.Sprintf("%.6f", v.Normal.X), fmt.Sprintf("%.6f", v.Normal.Y), fmt.Sprintf("%.6f", v.Normal.Z),
		}
		switch vcols {
		case 9:
			cols = append(cols, "0", fmt.Sprint(v.Atom+1), fmt.Sprint(v.Type))
		case 8:
			cols = append(cols, fmt.Sprint(v.Atom+1), fmt.Sprint(v.Type))
		case 7:
			cols = append(cols, fmt.Sprint(v.Atom+1))
		}
		fmt.Fprintf(&vb, "%s\n", strings.Join(cols, " "))
	}
	for i, f := range m.faces {
		cols := []string{fmt.Sprint(f[0] + 1), fmt.Sprint(f[1] + 1), fmt.Sprint(f[2] + 1)}
		comp := 1
		if m.component != nil {
			comp = m.component[i]
		}
		switch fcols {
		case 5:
			cols = append(cols, "1", fmt.Sprint(comp))
		case 4:
			cols = append(cols, "1")
		}
		fmt.Fprintf(&fb, "%s\n", strings.Join(cols, " "))
	}
	vert, face := prefix+".vert", prefix+".face"
	writeFile(t, vert, vb.String())
	writeFile(t, face, fb.String())
	return vert, face
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const fakeMSMS = `#!/bin/sh
[ -n "$FAKE_MSMS_ARGS" ] && echo "$@" > "$FAKE_MSMS_ARGS"
in=""
out=""
af=""
density="1.000"
while [ $# -gt 0 ]; do
	case "$1" in
	-if) in="$2"; shift ;;
	-of) out="$2"; shift ;;
	-density) density="$2"; shift ;;
	-af) af="$2"; shift ;;
	-h) echo "usage: msms -if <file> -of <file> [-probe_radius r] [-density d]"; exit 1 ;;
	esac
	shift
done
echo "MSMS 2.6.1 started"
echo "PARAM  Probe_radius  1.500 density  $density hdensity  3.000"
[ -n "$FAKE_MSMS_INPUT" ] && cp "$in" "$FAKE_MSMS_INPUT"
if [ -n "$FAKE_MSMS_BACKGROUND" ]; then
	sleep "$FAKE_MSMS_BACKGROUND" &
	echo $! > "$FAKE_MSMS_PIDFILE"
	wait
fi
if [ -n "$FAKE_MSMS_FAIL" ]; then
	echo "ERROR: atoms 1 and 2 collide"
	exit 3
fi
if [ -n "$FAKE_MSMS_SLEEP" ]; then
	exec sleep "$FAKE_MSMS_SLEEP"
fi
fixture="$FAKE_MSMS_FIXTURE"
[ -f "$fixture-$density.vert" ] && fixture="$fixture-$density"
cp "$fixture.vert" "$out.vert" || exit 1
cp "$fixture.face" "$out.face" || exit 1
[ -f "$fixture.log" ] && cat "$fixture.log"
[ -n "$af" ] && cp "$FAKE_MSMS_FIXTURE.area" "$af.area"
echo "MSMS terminated normally"
`

// installFakeMSMS puts a fake msms script in front of the PATH. The script
// copies the files fixture.vert and fixture.face as its output, or
// fixture-<density>.vert and fixture-<density>.face if they exist, and prints
// fixture.log, if it exists.
func installFakeMSMS(t *testing.T, fixture string) {
	t.Helper()
	bin := t.TempDir()
	if err := os.WriteFile(filepath.Join(bin, "msms"), []byte(fakeMSMS), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("MSMS_COMMAND", "")
	t.Setenv("FAKE_MSMS_FIXTURE", fixture)
	t.Setenv("FAKE_MSMS_FAIL", "")
	t.Setenv("FAKE_MSMS_SLEEP", "")
	t.Setenv("FAKE_MSMS_BACKGROUND", "")
	t.Setenv("FAKE_MSMS_PIDFILE", "")
	t.Setenv("FAKE_MSMS_ARGS", "")
	t.Setenv("FAKE_MSMS_INPUT", "")
}

func sphereArea(r float64) float64   { return 4 * math.Pi * r * r }
func sphereVolume(r float64) float64 { return 4.0 / 3.0 * math.Pi * r * r * r }
