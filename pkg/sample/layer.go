package sample

import (
	"math"

	"easyreflectometry/pkg/calculator"
	"easyreflectometry/pkg/parameter"
)

// Layer is a slab of one substance with a thickness and an upper-interface
// roughness, both in angstrom.
type Layer struct {
	uid      string
	name     string
	material Substance

	thickness *parameter.Parameter
	roughness *parameter.Parameter

	iface *calculator.Interface
}

// NewLayer constructs a layer of the given substance.
func NewLayer(name string, material Substance, thickness, roughness float64) (*Layer, error) {
	th, err := parameter.New(name+".thickness", thickness, "angstrom", 0, math.Inf(1), false)
	if err != nil {
		return nil, err
	}
	ro, err := parameter.New(name+".roughness", roughness, "angstrom", 0, math.Inf(1), false)
	if err != nil {
		return nil, err
	}
	return &Layer{
		uid:       newUID(),
		name:      name,
		material:  material,
		thickness: th,
		roughness: ro,
	}, nil
}

func (l *Layer) UID() string                     { return l.uid }
func (l *Layer) Kind() calculator.Kind           { return calculator.KindLayer }
func (l *Layer) Name() string                    { return l.name }
func (l *Layer) Material() Substance             { return l.material }
func (l *Layer) MaterialUID() string             { return l.material.UID() }
func (l *Layer) Thickness() *parameter.Parameter { return l.thickness }
func (l *Layer) Roughness() *parameter.Parameter { return l.roughness }

// BoundParameters lists the backend-synchronised parameters.
func (l *Layer) BoundParameters() []calculator.BoundParameter {
	return []calculator.BoundParameter{
		{Attr: "thickness", Param: l.thickness},
		{Attr: "roughness", Param: l.roughness},
	}
}

// Release detaches every constraint referencing the layer's parameters.
// Call it when the layer is destroyed.
func (l *Layer) Release() {
	parameter.Release(l.thickness)
	parameter.Release(l.roughness)
}

// UseInterface hands the layer the interface its bindings live on, so later
// material swaps are pushed to the backend.
func (l *Layer) UseInterface(i *calculator.Interface) { l.iface = i }

// SetMaterial replaces the layer's substance. When the layer is bound, the
// new substance is bound too and the backend assignment is updated before
// the tree changes; a backend failure leaves the layer on its old material.
func (l *Layer) SetMaterial(material Substance) error {
	if l.iface != nil && l.iface.Bound(l.uid) {
		if err := l.iface.Bind(material); err != nil {
			return err
		}
		if err := l.iface.AssignMaterialToLayer(material.UID(), l.uid); err != nil {
			return err
		}
	}
	l.material = material
	return nil
}
