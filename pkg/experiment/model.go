// Package experiment defines the Model: a sample plus the instrumental
// scale, background and resolution parameters, bound as one tree to a
// calculator Interface.
package experiment

import (
	"math"

	"easyreflectometry/pkg/calculator"
	"easyreflectometry/pkg/parameter"
	"easyreflectometry/pkg/sample"

	"github.com/google/uuid"
)

// Model owns a sample and the whole-curve parameters. Once an Interface is
// set, parameter edits anywhere in the tree reach the active backend and
// structural edits are kept synchronised.
type Model struct {
	uid  string
	name string

	sample *sample.Sample

	scale      *parameter.Parameter
	background *parameter.Parameter
	resolution *parameter.Parameter

	iface *calculator.Interface
}

// New constructs a model over the given sample with scale 1, zero background
// and no resolution smearing.
func New(name string, s *sample.Sample) *Model {
	scale, _ := parameter.New(name+".scale", 1, "", 0, math.Inf(1), false)
	bkg, _ := parameter.New(name+".background", 0, "", 0, math.Inf(1), false)
	dq, _ := parameter.New(name+".resolution", 0, "", 0, 1, false)
	return &Model{
		uid:        uuid.NewString(),
		name:       name,
		sample:     s,
		scale:      scale,
		background: bkg,
		resolution: dq,
	}
}

func (m *Model) UID() string           { return m.uid }
func (m *Model) Kind() calculator.Kind { return calculator.KindModel }
func (m *Model) Name() string          { return m.name }

// Sample returns the modelled sample.
func (m *Model) Sample() *sample.Sample { return m.sample }

// Scale returns the multiplicative scale parameter.
func (m *Model) Scale() *parameter.Parameter { return m.scale }

// Background returns the additive background parameter.
func (m *Model) Background() *parameter.Parameter { return m.background }

// Resolution returns the dq/q resolution parameter (FWHM fraction).
func (m *Model) Resolution() *parameter.Parameter { return m.resolution }

// AssemblyUIDs returns the sample's assembly uids in physical order.
func (m *Model) AssemblyUIDs() []string { return m.sample.AssemblyUIDs() }

// BoundParameters lists the backend-synchronised parameters.
func (m *Model) BoundParameters() []calculator.BoundParameter {
	return []calculator.BoundParameter{
		{Attr: "scale", Param: m.scale},
		{Attr: "background", Param: m.background},
		{Attr: "resolution", Param: m.resolution},
	}
}

// SetInterface binds the whole tree, bottom up: every layer's substance,
// every layer, every assembly, then the model itself. The interface must
// have an active backend. After a successful bind the tree nodes keep the
// interface so structural edits stay synchronised.
func (m *Model) SetInterface(i *calculator.Interface) error {
	if _, ok := i.Active(); !ok {
		return calculator.NoActiveBackendError{Operation: "set_interface"}
	}
	for _, a := range m.sample.Assemblies() {
		for _, l := range a.Layers() {
			if err := i.Bind(l.Material()); err != nil {
				return err
			}
			if err := i.Bind(l); err != nil {
				return err
			}
			l.UseInterface(i)
		}
		if err := i.Bind(a); err != nil {
			return err
		}
		a.UseInterface(i)
	}
	if err := i.Bind(m); err != nil {
		return err
	}
	m.iface = i
	return nil
}

// Interface returns the bound interface, or nil before SetInterface.
func (m *Model) Interface() *calculator.Interface { return m.iface }

// AddAssembly appends an assembly to the sample. When the model is bound,
// the assembly's subtree is bound and linked backend-side first; a backend
// failure leaves the tree unchanged.
func (m *Model) AddAssembly(a *sample.Assembly) error {
	if m.iface != nil {
		for _, l := range a.Layers() {
			if err := m.iface.Bind(l.Material()); err != nil {
				return err
			}
			if err := m.iface.Bind(l); err != nil {
				return err
			}
			l.UseInterface(m.iface)
		}
		if err := m.iface.Bind(a); err != nil {
			return err
		}
		if err := m.iface.AddItemToModel(a.UID()); err != nil {
			return err
		}
		a.UseInterface(m.iface)
	}
	m.sample.Add(a)
	return nil
}

// RemoveAssembly drops an assembly from the sample. The backend unlink runs
// first; a backend failure leaves the tree unchanged.
func (m *Model) RemoveAssembly(uid string) error {
	present := false
	for _, u := range m.sample.AssemblyUIDs() {
		if u == uid {
			present = true
			break
		}
	}
	if !present {
		return calculator.UnboundEntityError{UID: uid}
	}
	if m.iface != nil {
		if err := m.iface.RemoveItemFromModel(uid); err != nil {
			return err
		}
	}
	m.sample.Remove(uid)
	return nil
}

// Compute evaluates the reflectivity at the given momentum transfer values
// on the active backend.
func (m *Model) Compute(x []float64) ([]float64, error) {
	if m.iface == nil {
		return nil, calculator.NoActiveBackendError{Operation: "compute"}
	}
	return m.iface.Compute(x)
}

// SLDProfile returns depth coordinates and the scattering length density of
// the bound model.
func (m *Model) SLDProfile() ([]float64, []float64, error) {
	if m.iface == nil {
		return nil, nil, calculator.NoActiveBackendError{Operation: "sld_profile"}
	}
	return m.iface.SLDProfile(m.uid)
}
