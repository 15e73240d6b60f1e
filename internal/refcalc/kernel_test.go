package refcalc

import (
	"math"
	"testing"
)

func siliconStack() []slab {
	return []slab{
		{real: 0, imag: 0},                            // air fronting
		{real: 4.186, imag: 0, thick: 80, rough: 3.5}, // a nickel film
		{real: 2.074, imag: 0, rough: 2},              // silicon backing
	}
}

func TestAbelesTotalReflectionBelowCriticalEdge(t *testing.T) {
	slabs := []slab{
		{real: 0, imag: 0},
		{real: 2.074, imag: 0},
	}
	// qc for bare silicon is about 0.0102 inverse angstrom.
	r := abelesPoint(0.005, slabs)
	if math.Abs(r-1) > 1e-6 {
		t.Fatalf("expected total reflection below the critical edge, got %g", r)
	}
}

func TestAbelesDecaysAtHighQ(t *testing.T) {
	r := abelesPoint(0.3, siliconStack())
	if r >= 1e-4 {
		t.Fatalf("expected strong decay at high q, got %g", r)
	}
	if r < 0 {
		t.Fatalf("reflectivity must be non-negative, got %g", r)
	}
}

func TestAbelesKernelAppliesScaleAndBackground(t *testing.T) {
	slabs := siliconStack()
	q := []float64{0.05, 0.1, 0.2}
	plain, err := abelesKernel(q, slabs, 1, 0, 0)
	if err != nil {
		t.Fatalf("kernel: %v", err)
	}
	scaled, err := abelesKernel(q, slabs, 0.5, 1e-7, 0)
	if err != nil {
		t.Fatalf("kernel: %v", err)
	}
	for n := range q {
		want := 0.5*plain[n] + 1e-7
		if math.Abs(scaled[n]-want) > 1e-15 {
			t.Fatalf("q=%g: got %g want %g", q[n], scaled[n], want)
		}
	}
}

func TestKernelRejectsTooFewSlabs(t *testing.T) {
	if _, err := abelesKernel([]float64{0.1}, []slab{{real: 1}}, 1, 0, 0); err == nil {
		t.Fatal("expected error for a single slab")
	}
	if _, err := kinematicKernel([]float64{0.1}, nil, 1, 0, 0); err == nil {
		t.Fatal("expected error for an empty structure")
	}
}

func TestKinematicClampedToUnity(t *testing.T) {
	slabs := []slab{
		{real: 0},
		{real: 6.335},
	}
	r := kinematicPoint(0.001, slabs)
	if r > 1 {
		t.Fatalf("kinematic reflectivity must be clamped at 1, got %g", r)
	}
}

func TestKinematicMatchesAbelesAtHighQ(t *testing.T) {
	// Far above the critical edge the Born approximation converges on the
	// dynamical result for a sharp single interface.
	slabs := []slab{
		{real: 0},
		{real: 2.074},
	}
	q := 0.25
	dynamical := abelesPoint(q, slabs)
	born := kinematicPoint(q, slabs)
	if dynamical == 0 {
		t.Fatal("dynamical reflectivity unexpectedly zero")
	}
	ratio := born / dynamical
	if ratio < 0.9 || ratio > 1.1 {
		t.Fatalf("born/dynamical ratio %g outside tolerance at q=%g", ratio, q)
	}
}

func TestSmearingDisabledForNonPositiveDQ(t *testing.T) {
	slabs := siliconStack()
	point := func(q float64) float64 { return abelesPoint(q, slabs) }
	if got, want := smeared(0.1, 0, point), point(0.1); got != want {
		t.Fatalf("dq=0 must bypass smearing: got %g want %g", got, want)
	}
}

func TestSmearingBroadensFringes(t *testing.T) {
	slabs := siliconStack()
	point := func(q float64) float64 { return abelesPoint(q, slabs) }

	// Find a Kiessig minimum by scanning; smearing must lift it.
	minQ, minR := 0.0, math.Inf(1)
	for q := 0.03; q < 0.12; q += 1e-4 {
		if r := point(q); r < minR {
			minQ, minR = q, r
		}
	}
	smearedR := smeared(minQ, 0.05, point)
	if smearedR <= minR {
		t.Fatalf("smearing should lift the fringe minimum: sharp %g smeared %g", minR, smearedR)
	}
}

func TestSLDProfileEndpoints(t *testing.T) {
	slabs := siliconStack()
	z, sld, err := sldProfile(slabs)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(z) != len(sld) || len(z) == 0 {
		t.Fatalf("mismatched profile lengths: %d vs %d", len(z), len(sld))
	}
	if math.Abs(sld[0]-0) > 1e-3 {
		t.Fatalf("profile must start at the fronting SLD, got %g", sld[0])
	}
	if math.Abs(sld[len(sld)-1]-2.074) > 1e-3 {
		t.Fatalf("profile must end at the backing SLD, got %g", sld[len(sld)-1])
	}
	// The film plateau must be visible somewhere in the middle.
	sawFilm := false
	for _, v := range sld {
		if math.Abs(v-4.186) < 0.05 {
			sawFilm = true
			break
		}
	}
	if !sawFilm {
		t.Fatal("film plateau missing from the profile")
	}
}

func TestSLDProfileRejectsTooFewSlabs(t *testing.T) {
	if _, _, err := sldProfile([]slab{{real: 1}}); err == nil {
		t.Fatal("expected error for a single slab")
	}
}
