package msms

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func sphereSurface(center r3.Vec, r float64, level int, ses, sas float64) *Surface {
	verts, faces := icosphere(center, r, level)
	S := &Surface{Vertices: verts, Faces: make([]Face, len(faces))}
	for i, f := range faces {
		S.Faces[i] = Face{V: f, Type: 1, Component: 1}
	}
	S.Analytical = newAnalytical(Header{Count: -1}, []ComponentArea{{ID: 0, Probe: 1.5, SESArea: ses, SASArea: sas}}, false)
	return S
}

// A single sphere of radius r, seen by a probe of radius p, is a sphere of
// radius r+p, for which SES and SAS coincide.
func TestExtractSphere(Te *testing.T) {
	for _, v := range []struct{ r, p float64 }{{1.7, 1.5}, {1.2, 1.4}, {2.0, 0}} {
		R := v.r + v.p
		area := sphereArea(R)
		exact := sphereVolume(R)
		prev := 0.0
		for level := 1; level <= 4; level++ {
			S := sphereSurface(r3.Vec{X: 3, Y: -1, Z: 12}, R, level, area, area)
			D, err := Extract(S)
			if err != nil {
				Te.Fatal(err)
			}
			//the areas come from msms unchanged
			if D.SES != area || D.SAS != area {
				Te.Errorf("areas changed: %+v, expected %v", D, area)
			}
			if D.Volume <= prev || D.Volume > exact {
				Te.Errorf("r=%v p=%v level %d: volume %v, previous %v, exact %v", v.r, v.p, level, D.Volume, prev, exact)
			}
			prev = D.Volume
		}
		if prev < 0.99*exact {
			Te.Errorf("r=%v p=%v: volume %v, expected slightly less than %v", v.r, v.p, prev, exact)
		}
	}
}

func TestVolumeConvergence(Te *testing.T) {
	const r = 2.0
	exact := sphereVolume(r)
	prev := 0.0
	for level := 0; level <= 4; level++ {
		verts, faces := icosphere(r3.Vec{X: -5, Y: 2}, r, level)
		v := MeshVolume(verts, faces)
		if v <= prev || v >= exact {
			Te.Errorf("level %d: volume %v, previous %v, exact %v", level, v, prev, exact)
		}
		prev = v
		a := MeshArea(verts, faces)
		if a >= sphereArea(r) || a < 0.5*sphereArea(r) {
			Te.Errorf("level %d: area %v, sphere area %v", level, a, sphereArea(r))
		}
	}
	if (exact-prev)/exact > 0.01 {
		Te.Errorf("volume %v not within 1%% of %v", prev, exact)
	}
}

func TestVolumeOrientation(Te *testing.T) {
	verts, faces := icosphere(r3.Vec{X: 10}, 1, 2)
	v := MeshVolume(verts, faces)
	for i := range faces {
		faces[i][1], faces[i][2] = faces[i][2], faces[i][1]
	}
	if inv := MeshVolume(verts, faces); math.Abs(inv+v) > 1e-9 {
		Te.Errorf("reversing all faces gives %v, expected %v", inv, -v)
	}
	if MeshVolume(verts, nil) != 0 {
		Te.Errorf("no faces, non-zero volume")
	}
}

func TestExtractErrors(Te *testing.T) {
	S := sphereSurface(r3.Vec{}, 1, 1, 10, 20)
	S.Analytical = Analytical{}
	if _, err := Extract(S); !errors.Is(err, ErrMalformedOutput) {
		Te.Errorf("expected ErrMalformedOutput without areas, got %v", err)
	}
	S.Analytical.NoArea = true
	_, err := Extract(S)
	if !errors.Is(err, ErrInvalidInput) || !strings.Contains(err.Error(), "-no_area") {
		Te.Errorf("expected ErrInvalidInput mentioning -no_area, got %v", err)
	}
	S = sphereSurface(r3.Vec{}, 1, 1, 10, 20)
	S.Faces[7].V[2] = len(S.Vertices)
	if _, err := Extract(S); !errors.Is(err, ErrMalformedOutput) {
		Te.Errorf("expected ErrMalformedOutput for a bad index, got %v", err)
	}
}

// Two separate spheres, as msms gives with all_components. Each component
// encloses its own volume.
func TestComponents(Te *testing.T) {
	v1, f1 := icosphere(r3.Vec{}, 2, 3)
	v2, f2 := icosphere(r3.Vec{X: 20}, 1, 3)
	S := &Surface{Vertices: append(append([]Vertex{}, v1...), v2...)}
	for _, f := range f1 {
		S.Faces = append(S.Faces, Face{V: f, Component: 0})
	}
	for _, f := range f2 {
		S.Faces = append(S.Faces, Face{V: [3]int{f[0] + len(v1), f[1] + len(v1), f[2] + len(v1)}, Component: 1})
	}
	if err := S.Validate(); err != nil {
		Te.Fatal(err)
	}
	ids := S.ComponentIDs()
	if len(ids) != 2 || ids[0] != 0 || ids[1] != 1 {
		Te.Fatalf("component ids %v", ids)
	}
	all := MeshVolume(S.Vertices, S.Indices())
	vols := make([]float64, 2)
	for i, id := range ids {
		comp := S.Component(id)
		idx := make([][3]int, len(comp))
		for j, f := range comp {
			idx[j] = f.V
		}
		vols[i] = MeshVolume(S.Vertices, idx)
	}
	if math.Abs(vols[0]-MeshVolume(v1, f1)) > 1e-9 || math.Abs(vols[1]+vols[0]-all) > 1e-9 {
		Te.Errorf("component volumes %v, total %v", vols, all)
	}
	if vols[1] >= sphereVolume(1) || vols[1] < 0.95*sphereVolume(1) {
		Te.Errorf("second component volume %v, expected about %v", vols[1], sphereVolume(1))
	}
}

func TestMonotonic(Te *testing.T) {
	points := []ScanPoint{
		{Density: 3, Descriptors: Descriptors{Volume: 31}},
		{Density: 1, Descriptors: Descriptors{Volume: 29}},
		{Density: 2, Descriptors: Descriptors{Volume: 30.5}},
	}
	if !Monotonic(points) {
		Te.Errorf("%v should be monotonic", points)
	}
	if points[0].Density != 3 {
		Te.Errorf("Monotonic reordered its argument")
	}
	points[2].Volume = 28
	if Monotonic(points) {
		Te.Errorf("%v should not be monotonic", points)
	}
}
