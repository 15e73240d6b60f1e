// Package sample implements the entity tree: materials, layers, assemblies
// and samples, each node carrying a stable uid and the parameters the
// calculator binding layer keeps synchronised with the active backend.
// Derived quantities (mixture SLDs, area-per-molecule SLDs, conformal
// roughness) are expressed as constraints from pkg/parameter so they stay
// consistent with their sources without manual recomputation.
package sample

import (
	"easyreflectometry/pkg/calculator"
	"easyreflectometry/pkg/parameter"
)

const sldUnit = "1e-6 angstrom^-2"

// Substance is any material-like node a layer can be made of: a plain
// material, a mixture, or a solvated material.
type Substance interface {
	calculator.Entity
	Name() string
	SLD() *parameter.Parameter
	ISLD() *parameter.Parameter
}

// Material is a homogeneous substance described by the real and imaginary
// parts of its scattering length density.
type Material struct {
	uid  string
	name string
	sld  *parameter.Parameter
	isld *parameter.Parameter
}

// NewMaterial constructs a material with the given SLD parts, both in
// 1e-6 angstrom^-2.
func NewMaterial(name string, sld, isld float64) *Material {
	return &Material{
		uid:  newUID(),
		name: name,
		sld:  parameter.Unbounded(name+".sld", sld, sldUnit, false),
		isld: parameter.Unbounded(name+".isld", isld, sldUnit, false),
	}
}

// NewD2O returns heavy water at its usual contrast value.
func NewD2O() *Material {
	return NewMaterial("D2O", 6.36, 0)
}

// NewAir returns a zero-SLD fronting medium.
func NewAir() *Material {
	return NewMaterial("Air", 0, 0)
}

// NewSilicon returns a crystalline silicon substrate.
func NewSilicon() *Material {
	return NewMaterial("Si", 2.074, 0)
}

func (m *Material) UID() string                { return m.uid }
func (m *Material) Kind() calculator.Kind      { return calculator.KindMaterial }
func (m *Material) Name() string               { return m.name }
func (m *Material) SLD() *parameter.Parameter  { return m.sld }
func (m *Material) ISLD() *parameter.Parameter { return m.isld }

// BoundParameters lists the parameters the binding layer synchronises.
func (m *Material) BoundParameters() []calculator.BoundParameter {
	return []calculator.BoundParameter{
		{Attr: "sld", Param: m.sld},
		{Attr: "isld", Param: m.isld},
	}
}

// Release detaches every constraint referencing the material's parameters.
// Call it when the material is destroyed.
func (m *Material) Release() {
	parameter.Release(m.sld)
	parameter.Release(m.isld)
}
