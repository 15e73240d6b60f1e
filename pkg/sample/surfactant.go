package sample

import "easyreflectometry/pkg/parameter"

// Surfactant is a two-layer assembly (head and tail groups of an amphiphile)
// with optional constraints tying the two layers together: a shared area per
// molecule, conformal roughness, and mirrors onto another contrast of the
// same surfactant.
type Surfactant struct {
	*Assembly
	layer1 *AreaPerMoleculeLayer
	layer2 *AreaPerMoleculeLayer

	apmRule       *parameter.Constraint
	roughnessRule *parameter.Constraint
}

// NewSurfactant builds a surfactant assembly from its two layers, in
// physical order.
func NewSurfactant(name string, layer1, layer2 *AreaPerMoleculeLayer) *Surfactant {
	return &Surfactant{
		Assembly: NewMultilayer(name, layer1.Layer, layer2.Layer),
		layer1:   layer1,
		layer2:   layer2,
	}
}

// NewDefaultSurfactant builds a DPPC-like surfactant against the given
// subphase solvent: a deuterated tail layer in air and a phosphocholine head
// layer partially solvated by the subphase.
func NewDefaultSurfactant(solvent Substance) (*Surfactant, error) {
	tail, err := NewAreaPerMoleculeLayer("DPPC tail", "C32D64", 16, 3, 48.2, 0, NewAir())
	if err != nil {
		return nil, err
	}
	head, err := NewAreaPerMoleculeLayer("DPPC head", "C10H18NO8P", 10, 3, 48.2, 0.2, solvent)
	if err != nil {
		return nil, err
	}
	return NewSurfactant("DPPC", tail, head), nil
}

// Layer1 returns the first (beam-side) layer.
func (s *Surfactant) Layer1() *AreaPerMoleculeLayer { return s.layer1 }

// Layer2 returns the second layer.
func (s *Surfactant) Layer2() *AreaPerMoleculeLayer { return s.layer2 }

// AreaPerMoleculeConstrained reports whether the two layers share an area
// per molecule.
func (s *Surfactant) AreaPerMoleculeConstrained() bool {
	return s.apmRule != nil && s.apmRule.Enabled()
}

// SetAreaPerMoleculeConstrained ties layer2's area per molecule to layer1's.
// Enabling snaps layer2 to layer1's current value; disabling freezes layer2
// and makes it writable again.
func (s *Surfactant) SetAreaPerMoleculeConstrained(constrained bool) error {
	if s.apmRule == nil {
		if !constrained {
			return nil
		}
		rule := parameter.NewMirror(s.layer2.areaPerMolecule, s.layer1.areaPerMolecule)
		if err := parameter.Attach("area_per_molecule_"+s.uid, rule); err != nil {
			return err
		}
		s.apmRule = rule
		return nil
	}
	return s.apmRule.SetEnabled(constrained)
}

// ConformalRoughness reports whether the two layers share a roughness.
func (s *Surfactant) ConformalRoughness() bool {
	return s.roughnessRule != nil && s.roughnessRule.Enabled()
}

// SetConformalRoughness ties layer2's roughness to layer1's.
func (s *Surfactant) SetConformalRoughness(conformal bool) error {
	if s.roughnessRule == nil {
		if !conformal {
			return nil
		}
		rule := parameter.NewMirror(s.layer2.roughness, s.layer1.roughness)
		if err := parameter.Attach("conformal_roughness_"+s.uid, rule); err != nil {
			return err
		}
		s.roughnessRule = rule
		return nil
	}
	return s.roughnessRule.SetEnabled(conformal)
}

// ConstrainSolventRoughness extends the conformal roughness onto a solvent
// layer, so the subphase interface follows the surfactant's roughness.
// Requesting it before the roughness is conformal fails with
// PreconditionError and creates no constraint.
func (s *Surfactant) ConstrainSolventRoughness(solvent *Layer) error {
	if !s.ConformalRoughness() {
		return PreconditionError{
			Operation: "constrain_solvent_roughness",
			Requires:  "conformal roughness between the surfactant layers",
		}
	}
	rule := parameter.NewMirror(solvent.roughness, s.layer1.roughness)
	return parameter.Attach("solvent_roughness_"+s.uid, rule)
}

// ConstrainMultipleContrast mirrors the chosen per-layer parameters of
// another contrast of the same surfactant onto this one, so both contrasts
// stay described by one set of physical values. A layer2 parameter already
// driven by an intra-surfactant constraint is skipped; it follows layer1
// through that constraint instead.
func (s *Surfactant) ConstrainMultipleContrast(src *Surfactant, thickness, areaPerMolecule, solvation bool) error {
	type pair struct {
		name       string
		dep, indep *parameter.Parameter
	}
	var pairs []pair
	if thickness {
		pairs = append(pairs,
			pair{"contrast_thickness_1_", s.layer1.thickness, src.layer1.thickness},
			pair{"contrast_thickness_2_", s.layer2.thickness, src.layer2.thickness})
	}
	if areaPerMolecule {
		pairs = append(pairs,
			pair{"contrast_area_per_molecule_1_", s.layer1.areaPerMolecule, src.layer1.areaPerMolecule},
			pair{"contrast_area_per_molecule_2_", s.layer2.areaPerMolecule, src.layer2.areaPerMolecule})
	}
	if solvation {
		pairs = append(pairs,
			pair{"contrast_solvation_1_", s.layer1.Solvation(), src.layer1.Solvation()},
			pair{"contrast_solvation_2_", s.layer2.Solvation(), src.layer2.Solvation()})
	}
	var attached []*parameter.Constraint
	for _, p := range pairs {
		if p.dep.Constrained() {
			continue
		}
		rule := parameter.NewMirror(p.dep, p.indep)
		if err := parameter.Attach(p.name+s.uid, rule); err != nil {
			for _, c := range attached {
				parameter.Detach(c)
			}
			return err
		}
		attached = append(attached, rule)
	}
	return nil
}
