package sample

import (
	"easyreflectometry/pkg/calculator"
	"easyreflectometry/pkg/parameter"
	"easyreflectometry/pkg/scattering"
)

var weightedAverage = parameter.Func{
	Name: "weighted_average",
	Apply: func(values ...float64) float64 {
		return scattering.WeightedAverage(values[0], values[1], values[2])
	},
}

// MaterialMixture is a substance whose SLD is the volume-weighted average of
// two component substances. Its sld and isld parameters are driven by
// functional constraints over the components and the mixing fraction, so any
// change to a component propagates immediately.
type MaterialMixture struct {
	uid  string
	name string
	a    Substance
	b    Substance

	fraction *parameter.Parameter
	sld      *parameter.Parameter
	isld     *parameter.Parameter

	sldRule  *parameter.Constraint
	isldRule *parameter.Constraint
}

// NewMaterialMixture mixes two substances by the volume fraction of the
// second. The fraction lies in [0, 1].
func NewMaterialMixture(name string, a, b Substance, fraction float64) (*MaterialMixture, error) {
	frac, err := parameter.New(name+".fraction", fraction, "", 0, 1, false)
	if err != nil {
		return nil, err
	}
	m := &MaterialMixture{
		uid:      newUID(),
		name:     name,
		a:        a,
		b:        b,
		fraction: frac,
		sld:      parameter.Unbounded(name+".sld", 0, sldUnit, false),
		isld:     parameter.Unbounded(name+".isld", 0, sldUnit, false),
	}
	if err := m.attachRules(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MaterialMixture) attachRules() error {
	m.sldRule = parameter.NewFunctional(m.sld, weightedAverage, m.a.SLD(), m.b.SLD(), m.fraction)
	if err := parameter.Attach("mixture_sld_"+m.uid, m.sldRule); err != nil {
		return err
	}
	m.isldRule = parameter.NewFunctional(m.isld, weightedAverage, m.a.ISLD(), m.b.ISLD(), m.fraction)
	if err := parameter.Attach("mixture_isld_"+m.uid, m.isldRule); err != nil {
		parameter.Detach(m.sldRule)
		return err
	}
	return nil
}

func (m *MaterialMixture) UID() string                    { return m.uid }
func (m *MaterialMixture) Kind() calculator.Kind          { return calculator.KindMaterial }
func (m *MaterialMixture) Name() string                   { return m.name }
func (m *MaterialMixture) SLD() *parameter.Parameter      { return m.sld }
func (m *MaterialMixture) ISLD() *parameter.Parameter     { return m.isld }
func (m *MaterialMixture) Fraction() *parameter.Parameter { return m.fraction }

// Components returns the two mixed substances.
func (m *MaterialMixture) Components() (Substance, Substance) { return m.a, m.b }

// BoundParameters lists the backend-synchronised parameters. Only the
// resolved sld/isld pair is pushed; the components stay tree-side.
func (m *MaterialMixture) BoundParameters() []calculator.BoundParameter {
	return []calculator.BoundParameter{
		{Attr: "sld", Param: m.sld},
		{Attr: "isld", Param: m.isld},
	}
}

// Release detaches every constraint referencing the mixture's parameters.
func (m *MaterialMixture) Release() {
	parameter.Release(m.sld)
	parameter.Release(m.isld)
	parameter.Release(m.fraction)
}

// setSecond swaps the second component and rebuilds the mixing rules. On
// failure the previous component and rules are restored.
func (m *MaterialMixture) setSecond(b Substance) error {
	parameter.Detach(m.sldRule)
	parameter.Detach(m.isldRule)
	old := m.b
	m.b = b
	if err := m.attachRules(); err != nil {
		m.b = old
		if restoreErr := m.attachRules(); restoreErr != nil {
			return restoreErr
		}
		return err
	}
	return nil
}

// SolvatedMaterial is a material mixed with a solvent. The externally
// settable solvation parameter is kept distinct from the mixing fraction and
// synchronised into it by a mirror constraint.
type SolvatedMaterial struct {
	*MaterialMixture
	solvation *parameter.Parameter
	sync      *parameter.Constraint
}

// NewSolvatedMaterial mixes a material with a solvent at the given solvation
// (solvent volume fraction, in [0, 1]).
func NewSolvatedMaterial(name string, material, solvent Substance, solvation float64) (*SolvatedMaterial, error) {
	mix, err := NewMaterialMixture(name, material, solvent, solvation)
	if err != nil {
		return nil, err
	}
	solv, err := parameter.New(name+".solvation", solvation, "", 0, 1, false)
	if err != nil {
		return nil, err
	}
	s := &SolvatedMaterial{MaterialMixture: mix, solvation: solv}
	s.sync = parameter.NewMirror(mix.fraction, solv)
	if err := parameter.Attach("solvation_"+mix.uid, s.sync); err != nil {
		return nil, err
	}
	return s, nil
}

// Solvation returns the externally settable solvent fraction parameter.
func (s *SolvatedMaterial) Solvation() *parameter.Parameter { return s.solvation }

// SetSolvation writes the solvation; the mixing fraction and the resolved
// SLD follow through the constraint graph.
func (s *SolvatedMaterial) SetSolvation(value float64) error {
	return s.solvation.SetValue(value)
}

// Material returns the solvated component.
func (s *SolvatedMaterial) Material() Substance { return s.a }

// Solvent returns the current solvent.
func (s *SolvatedMaterial) Solvent() Substance { return s.b }

// SetSolvent swaps the solvent, preserving the solvation value.
func (s *SolvatedMaterial) SetSolvent(solvent Substance) error {
	return s.setSecond(solvent)
}

// Release detaches every constraint referencing the material's parameters.
func (s *SolvatedMaterial) Release() {
	s.MaterialMixture.Release()
	parameter.Release(s.solvation)
}
