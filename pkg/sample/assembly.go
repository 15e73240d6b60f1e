package sample

import (
	"math"

	"easyreflectometry/pkg/calculator"
	"easyreflectometry/pkg/parameter"
)

// Assembly is an ordered run of layers. Slice order is physical order, from
// incident beam to substrate. A multilayer can be promoted in place to a
// repeating multilayer; the uid survives the retype so backend bindings and
// external references keep resolving.
type Assembly struct {
	uid    string
	name   string
	kind   calculator.Kind
	layers []*Layer

	// Set once the assembly becomes repeating.
	repetitions *parameter.Parameter

	iface *calculator.Interface
}

// NewMultilayer constructs a non-repeating assembly of the given layers.
func NewMultilayer(name string, layers ...*Layer) *Assembly {
	return &Assembly{
		uid:    newUID(),
		name:   name,
		kind:   calculator.KindMultiLayer,
		layers: append([]*Layer(nil), layers...),
	}
}

// NewRepeatingMultilayer constructs a repeating assembly.
func NewRepeatingMultilayer(name string, repetitions float64, layers ...*Layer) (*Assembly, error) {
	a := NewMultilayer(name, layers...)
	if err := a.PromoteToRepeating(repetitions); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Assembly) UID() string           { return a.uid }
func (a *Assembly) Kind() calculator.Kind { return a.kind }
func (a *Assembly) Name() string          { return a.name }

// Layers returns the layers in physical order.
func (a *Assembly) Layers() []*Layer { return a.layers }

// LayerUIDs returns the layer uids in physical order.
func (a *Assembly) LayerUIDs() []string {
	uids := make([]string, len(a.layers))
	for n, l := range a.layers {
		uids[n] = l.uid
	}
	return uids
}

// Repetitions returns the repetition-count parameter, or nil for a
// non-repeating assembly.
func (a *Assembly) Repetitions() *parameter.Parameter { return a.repetitions }

// BoundParameters lists the backend-synchronised parameters.
func (a *Assembly) BoundParameters() []calculator.BoundParameter {
	if a.kind == calculator.KindRepeatingMultiLayer {
		return []calculator.BoundParameter{{Attr: "repetitions", Param: a.repetitions}}
	}
	return nil
}

// UseInterface hands the assembly the interface its bindings live on, so
// structural edits are pushed to the backend.
func (a *Assembly) UseInterface(i *calculator.Interface) { a.iface = i }

func (a *Assembly) bound() bool {
	return a.iface != nil && a.iface.Bound(a.uid)
}

// AddLayer appends a layer. When the assembly is bound, the layer (and its
// substance) are bound and linked backend-side first; a backend failure
// leaves the tree unchanged.
func (a *Assembly) AddLayer(l *Layer) error {
	if a.bound() {
		if err := a.iface.Bind(l.material); err != nil {
			return err
		}
		if err := a.iface.Bind(l); err != nil {
			return err
		}
		if err := a.iface.AddLayerToItem(l.uid, a.uid); err != nil {
			return err
		}
		l.UseInterface(a.iface)
	}
	a.layers = append(a.layers, l)
	return nil
}

// RemoveLayer removes the last occurrence of the layer with the given uid.
// The backend unlink runs first; a backend failure leaves the tree unchanged.
func (a *Assembly) RemoveLayer(uid string) error {
	idx := -1
	for n := len(a.layers) - 1; n >= 0; n-- {
		if a.layers[n].uid == uid {
			idx = n
			break
		}
	}
	if idx < 0 {
		return calculator.UnboundEntityError{UID: uid}
	}
	if a.bound() {
		if err := a.iface.RemoveLayerFromItem(uid, a.uid); err != nil {
			return err
		}
	}
	a.layers = append(a.layers[:idx], a.layers[idx+1:]...)
	return nil
}

// PromoteToRepeating converts the assembly to a repeating multilayer in
// place, preserving the uid and the bound layers. The repetition count must
// be at least 1.
func (a *Assembly) PromoteToRepeating(repetitions float64) error {
	if a.kind == calculator.KindRepeatingMultiLayer {
		return a.repetitions.SetValue(repetitions)
	}
	reps, err := parameter.New(a.name+".repetitions", repetitions, "", 1, math.Inf(1), false)
	if err != nil {
		return err
	}
	a.kind = calculator.KindRepeatingMultiLayer
	a.repetitions = reps
	if a.bound() {
		if err := a.iface.ChangeToRepeatingMultiLayer(a); err != nil {
			a.kind = calculator.KindMultiLayer
			a.repetitions = nil
			return err
		}
	}
	return nil
}
