package sample

import (
	"math"

	"easyreflectometry/pkg/parameter"
	"easyreflectometry/pkg/scattering"
)

var areaPerMoleculeToSLD = parameter.Func{
	Name: "area_per_molecule_to_sld",
	Apply: func(values ...float64) float64 {
		return scattering.AreaPerMoleculeToSLD(values[0], values[1], values[2])
	},
}

// AreaPerMoleculeLayer is a layer whose SLD is derived from a molecular
// formula, the layer thickness, and the area each molecule occupies. The
// molecular material's sld/isld are functional constraints over the
// scattering length, thickness and area-per-molecule parameters; the layer is
// made of that material solvated by a solvent.
type AreaPerMoleculeLayer struct {
	*Layer

	formula         string
	scatteringReal  *parameter.Parameter
	scatteringImag  *parameter.Parameter
	areaPerMolecule *parameter.Parameter

	molecule *Material
	solvated *SolvatedMaterial
}

// NewAreaPerMoleculeLayer derives a layer from a molecular formula. Thickness
// and roughness are in angstrom, areaPerMolecule in angstrom^2, solvation is
// the solvent volume fraction in [0, 1].
func NewAreaPerMoleculeLayer(name, formula string, thickness, roughness, areaPerMolecule, solvation float64, solvent Substance) (*AreaPerMoleculeLayer, error) {
	b, err := scattering.NeutronScatteringLength(formula)
	if err != nil {
		return nil, err
	}
	apm, err := parameter.New(name+".area_per_molecule", areaPerMolecule, "angstrom^2", 0, math.Inf(1), false)
	if err != nil {
		return nil, err
	}
	molecule := NewMaterial(name+" molecule", 0, 0)
	solvated, err := NewSolvatedMaterial(name+" solvated", molecule, solvent, solvation)
	if err != nil {
		return nil, err
	}
	layer, err := NewLayer(name, solvated, thickness, roughness)
	if err != nil {
		return nil, err
	}
	l := &AreaPerMoleculeLayer{
		Layer:           layer,
		formula:         formula,
		scatteringReal:  parameter.Unbounded(name+".scattering_length_real", real(b), "angstrom", false),
		scatteringImag:  parameter.Unbounded(name+".scattering_length_imag", imag(b), "angstrom", false),
		areaPerMolecule: apm,
		molecule:        molecule,
		solvated:        solvated,
	}
	sldRule := parameter.NewFunctional(molecule.sld, areaPerMoleculeToSLD, l.scatteringReal, layer.thickness, apm)
	if err := parameter.Attach("apm_sld_"+molecule.uid, sldRule); err != nil {
		return nil, err
	}
	isldRule := parameter.NewFunctional(molecule.isld, areaPerMoleculeToSLD, l.scatteringImag, layer.thickness, apm)
	if err := parameter.Attach("apm_isld_"+molecule.uid, isldRule); err != nil {
		return nil, err
	}
	return l, nil
}

// Formula returns the current molecular formula.
func (l *AreaPerMoleculeLayer) Formula() string { return l.formula }

// SetFormula replaces the molecular formula. The scattering length
// parameters are updated and the derived SLDs follow through the constraint
// graph. An unparseable formula leaves the layer unchanged.
func (l *AreaPerMoleculeLayer) SetFormula(formula string) error {
	b, err := scattering.NeutronScatteringLength(formula)
	if err != nil {
		return err
	}
	if err := l.scatteringReal.SetValue(real(b)); err != nil {
		return err
	}
	if err := l.scatteringImag.SetValue(imag(b)); err != nil {
		return err
	}
	l.formula = formula
	return nil
}

// AreaPerMolecule returns the area-per-molecule parameter.
func (l *AreaPerMoleculeLayer) AreaPerMolecule() *parameter.Parameter { return l.areaPerMolecule }

// Solvation returns the solvent-fraction parameter of the solvated material.
func (l *AreaPerMoleculeLayer) Solvation() *parameter.Parameter { return l.solvated.Solvation() }

// Molecule returns the un-solvated molecular material.
func (l *AreaPerMoleculeLayer) Molecule() *Material { return l.molecule }

// Solvated returns the solvated material the layer is made of.
func (l *AreaPerMoleculeLayer) Solvated() *SolvatedMaterial { return l.solvated }

// SetSolvent swaps the solvent of the solvated material.
func (l *AreaPerMoleculeLayer) SetSolvent(solvent Substance) error {
	return l.solvated.SetSolvent(solvent)
}

// Release detaches every constraint referencing the layer's parameters,
// including the derived materials.
func (l *AreaPerMoleculeLayer) Release() {
	l.Layer.Release()
	parameter.Release(l.scatteringReal)
	parameter.Release(l.scatteringImag)
	parameter.Release(l.areaPerMolecule)
	l.molecule.Release()
	l.solvated.Release()
}
