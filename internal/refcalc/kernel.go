// Package refcalc implements the built-in calculator backends: slab storage
// engines (in-memory and SQLite-backed) combined with reflectivity kernels
// (Abeles transfer matrices and the kinematic approximation).
//
// Scattering length densities are stored in 1e-6 angstrom^-2, thicknesses
// and roughnesses in angstrom, and probe coordinates are momentum transfer
// in inverse angstrom. The first slab is the fronting (incident) medium and
// the last is the backing (substrate); their thicknesses are ignored.
package refcalc

import (
	"errors"
	"math"
	"math/cmplx"
)

// slab is one resolved layer of the bound structure. rough is the roughness
// of the interface between this slab and the one above it.
type slab struct {
	real  float64
	imag  float64
	thick float64
	rough float64
}

const sldScale = 1e-6

var errTooFewSlabs = errors.New("structure needs at least a fronting and a backing medium")

type kernelFunc func(q []float64, slabs []slab, scale, bkg, dq float64) ([]float64, error)

// abelesKernel evaluates specular reflectivity with the Parratt recursion
// and Nevot-Croce roughness factors, then applies scale, background, and
// optional Gaussian resolution smearing (dq is the FWHM fraction dq/q).
func abelesKernel(q []float64, slabs []slab, scale, bkg, dq float64) ([]float64, error) {
	if len(slabs) < 2 {
		return nil, errTooFewSlabs
	}
	out := make([]float64, len(q))
	for n, qn := range q {
		r := smeared(qn, dq, func(qq float64) float64 { return abelesPoint(qq, slabs) })
		out[n] = scale*r + bkg
	}
	return out, nil
}

// kinematicKernel evaluates the Born-approximation reflectivity, clamped to
// the physical ceiling of 1 near the critical edge.
func kinematicKernel(q []float64, slabs []slab, scale, bkg, dq float64) ([]float64, error) {
	if len(slabs) < 2 {
		return nil, errTooFewSlabs
	}
	out := make([]float64, len(q))
	for n, qn := range q {
		r := smeared(qn, dq, func(qq float64) float64 { return kinematicPoint(qq, slabs) })
		out[n] = scale*r + bkg
	}
	return out, nil
}

// abelesPoint computes unsmeared reflectivity at a single q.
func abelesPoint(q float64, slabs []slab) float64 {
	if q < 1e-10 {
		q = 1e-10
	}
	k0 := complex(q/2, 0)
	rho0 := rho(slabs[0])

	// Perpendicular wavevector inside each medium.
	k := make([]complex128, len(slabs))
	for j := range slabs {
		k[j] = cmplx.Sqrt(k0*k0 - complex(4*math.Pi, 0)*(rho(slabs[j])-rho0))
	}

	// Parratt recursion from the backing medium upwards.
	var rj complex128
	for j := len(slabs) - 2; j >= 0; j-- {
		den := k[j] + k[j+1]
		var fresnel complex128
		if den != 0 {
			sigma := slabs[j+1].rough
			fresnel = (k[j] - k[j+1]) / den * cmplx.Exp(-2*k[j]*k[j+1]*complex(sigma*sigma, 0))
		}
		if j == len(slabs)-2 {
			rj = fresnel
			continue
		}
		beta := cmplx.Exp(complex(0, 2) * k[j+1] * complex(slabs[j+1].thick, 0))
		rj = (fresnel + rj*beta) / (1 + fresnel*rj*beta)
	}
	r := cmplx.Abs(rj)
	return r * r
}

// kinematicPoint computes the Born-approximation reflectivity at a single q.
func kinematicPoint(q float64, slabs []slab) float64 {
	if q < 1e-10 {
		q = 1e-10
	}
	var amp complex128
	z := 0.0
	for j := 0; j < len(slabs)-1; j++ {
		if j > 0 {
			z += slabs[j].thick
		}
		contrast := real(rho(slabs[j+1])) - real(rho(slabs[j]))
		sigma := slabs[j+1].rough
		damp := math.Exp(-q * q * sigma * sigma / 2)
		amp += complex(contrast*damp, 0) * cmplx.Exp(complex(0, q*z))
	}
	r := 16 * math.Pi * math.Pi / (q * q * q * q) * (real(amp)*real(amp) + imag(amp)*imag(amp))
	if r > 1 {
		r = 1
	}
	return r
}

func rho(s slab) complex128 {
	return complex(s.real*sldScale, s.imag*sldScale)
}

// smeared applies Gaussian resolution smearing with FWHM fraction dq using
// fixed 17-point quadrature over ±3.5 sigma. dq <= 0 disables smearing.
func smeared(q, dq float64, point func(float64) float64) float64 {
	if dq <= 0 {
		return point(q)
	}
	const nPoints = 17
	const span = 3.5
	sigma := dq * q / 2.3548200450309493
	var total, weight float64
	for n := 0; n < nPoints; n++ {
		x := -span + 2*span*float64(n)/float64(nPoints-1)
		w := math.Exp(-x * x / 2)
		qq := q + x*sigma
		if qq <= 0 {
			continue
		}
		total += w * point(qq)
		weight += w
	}
	if weight == 0 {
		return point(q)
	}
	return total / weight
}

// sldProfile renders the depth profile of the real scattering length
// density with error-function interfacial smoothing. It returns depth
// coordinates and the SLD (1e-6 angstrom^-2) at each.
func sldProfile(slabs []slab) ([]float64, []float64, error) {
	if len(slabs) < 2 {
		return nil, nil, errTooFewSlabs
	}
	total := 0.0
	maxSigma := 0.0
	for j := 1; j < len(slabs)-1; j++ {
		total += slabs[j].thick
	}
	for j := 1; j < len(slabs); j++ {
		if slabs[j].rough > maxSigma {
			maxSigma = slabs[j].rough
		}
	}
	pad := 4*maxSigma + 10

	const step = 0.5
	count := int((total+2*pad)/step) + 1
	z := make([]float64, count)
	sld := make([]float64, count)

	// Interface positions measured from the top of the first finite layer.
	interfaces := make([]float64, len(slabs)-1)
	pos := 0.0
	for j := 1; j < len(slabs); j++ {
		interfaces[j-1] = pos
		if j < len(slabs)-1 {
			pos += slabs[j].thick
		}
	}

	for n := 0; n < count; n++ {
		depth := -pad + float64(n)*step
		value := real(rho(slabs[0]))
		for j := 1; j < len(slabs); j++ {
			sigma := slabs[j].rough
			if sigma < 1e-8 {
				sigma = 1e-8
			}
			contrast := real(rho(slabs[j])) - real(rho(slabs[j-1]))
			value += contrast * 0.5 * (1 + math.Erf((depth-interfaces[j-1])/(sigma*math.Sqrt2)))
		}
		z[n] = depth
		sld[n] = value / sldScale
	}
	return z, sld, nil
}
