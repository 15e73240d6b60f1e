// Package scattering provides the chemical formula handling and the small
// library of pure calculation functions that functional constraints draw
// from: coherent neutron scattering lengths, area-per-molecule to
// scattering-length-density conversion, and solvent mixing.
//
// Units convention across the module: scattering lengths are expressed in
// angstrom, thicknesses in angstrom, areas per molecule in angstrom squared,
// and scattering length densities in 1e-6 angstrom^-2 (so D2O is 6.36).
package scattering

// femtometreToAngstrom converts tabulated coherent scattering lengths (fm)
// into the angstrom convention used by the parameter tree.
const femtometreToAngstrom = 1e-5

// coherentLengths maps element symbols to bound coherent neutron scattering
// lengths in fm (NIST tabulation). D is deuterium; the imaginary part is
// only significant for strong absorbers.
var coherentLengths = map[string]complex128{
	"H":  complex(-3.7390, 0),
	"D":  complex(6.671, 0),
	"Li": complex(-1.90, 0),
	"B":  complex(5.30, -0.213),
	"C":  complex(6.6460, 0),
	"N":  complex(9.36, 0),
	"O":  complex(5.803, 0),
	"F":  complex(5.654, 0),
	"Na": complex(3.63, 0),
	"Mg": complex(5.375, 0),
	"Al": complex(3.449, 0),
	"Si": complex(4.1491, 0),
	"P":  complex(5.13, 0),
	"S":  complex(2.847, 0),
	"Cl": complex(9.5770, 0),
	"K":  complex(3.67, 0),
	"Ca": complex(4.70, 0),
	"Ti": complex(-3.438, 0),
	"Cr": complex(3.635, 0),
	"Mn": complex(-3.73, 0),
	"Fe": complex(9.45, 0),
	"Ni": complex(10.3, 0),
	"Cu": complex(7.718, 0),
	"Zn": complex(5.680, 0),
	"Br": complex(6.795, 0),
	"Ag": complex(5.922, 0),
	"Cd": complex(4.87, -0.70),
	"I":  complex(5.28, 0),
	"Gd": complex(6.5, -13.82),
	"Au": complex(7.63, 0),
}

// NeutronScatteringLength returns the bound coherent scattering length of a
// molecular formula in angstrom. The formula accepts element symbols with
// optional integer counts and parenthesised groups, e.g. "C10H18NO8P" or
// "Ca(OH)2". "D" denotes deuterium.
func NeutronScatteringLength(formula string) (complex128, error) {
	counts, err := ParseFormula(formula)
	if err != nil {
		return 0, err
	}
	var total complex128
	for symbol, n := range counts {
		b, ok := coherentLengths[symbol]
		if !ok {
			return 0, FormulaError{Formula: formula, Reason: "no scattering length tabulated for " + symbol}
		}
		total += complex(float64(n), 0) * b
	}
	return total * femtometreToAngstrom, nil
}
