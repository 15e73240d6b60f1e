// Package parameter defines the bounded scalar value type shared by every
// entity in the sample tree, together with the constraint graph that keeps
// derived parameters consistent with their independent sources.
package parameter

import "math"

// Parameter is a named, unit-carrying scalar with inclusive bounds, a fixed
// flag and an enabled flag. Constraints attach to a parameter where it acts
// as an independent source; at most one constraint may resolve it as a
// dependent at any time.
type Parameter struct {
	name    string
	value   float64
	min     float64
	max     float64
	unit    string
	fixed   bool
	enabled bool

	// Constraints for which this parameter is an independent, in
	// registration order. Propagation walks order.
	order       []string
	constraints map[string]*Constraint

	// Constraint currently resolving this parameter as its dependent.
	writer *Constraint

	observers []func(float64) error
}

// New constructs a parameter. The initial value must lie within [min, max].
func New(name string, value float64, unit string, min, max float64, fixed bool) (*Parameter, error) {
	if math.IsNaN(value) || value < min || value > max {
		return nil, RangeError{Name: name, Value: value, Min: min, Max: max}
	}
	return &Parameter{
		name:        name,
		value:       value,
		min:         min,
		max:         max,
		unit:        unit,
		fixed:       fixed,
		enabled:     true,
		constraints: make(map[string]*Constraint),
	}, nil
}

// Unbounded is a convenience constructor for a parameter with (-inf, +inf)
// bounds, matching scattering-length style parameters.
func Unbounded(name string, value float64, unit string, fixed bool) *Parameter {
	p, _ := New(name, value, unit, math.Inf(-1), math.Inf(1), fixed)
	return p
}

// Name returns the parameter name.
func (p *Parameter) Name() string { return p.name }

// Value returns the current value.
func (p *Parameter) Value() float64 { return p.value }

// Unit returns the unit string.
func (p *Parameter) Unit() string { return p.unit }

// Bounds returns the inclusive minimum and maximum.
func (p *Parameter) Bounds() (min, max float64) { return p.min, p.max }

// Fixed reports whether external writes are rejected.
func (p *Parameter) Fixed() bool { return p.fixed }

// SetFixed toggles the fixed flag.
func (p *Parameter) SetFixed(fixed bool) { p.fixed = fixed }

// Enabled reports whether the parameter accepts writes at all.
func (p *Parameter) Enabled() bool { return p.enabled }

// SetEnabled toggles the enabled flag.
func (p *Parameter) SetEnabled(enabled bool) { p.enabled = enabled }

// Constrained reports whether an enabled constraint currently resolves this
// parameter as its dependent.
func (p *Parameter) Constrained() bool {
	return p.writer != nil && p.writer.enabled
}

// Constraint returns the attached constraint with the given name, if this
// parameter is one of its independents.
func (p *Parameter) Constraint(name string) (*Constraint, bool) {
	c, ok := p.constraints[name]
	return c, ok
}

// SetBounds replaces the bounds. The current value must remain inside them.
func (p *Parameter) SetBounds(min, max float64) error {
	if p.value < min || p.value > max {
		return RangeError{Name: p.name, Value: p.value, Min: min, Max: max}
	}
	p.min = min
	p.max = max
	return nil
}

// Observe registers a callback invoked synchronously after every accepted
// value change, including changes applied by constraint resolution. The
// calculator binding layer uses this to push values into the active backend.
//
// A failing observer surfaces its error from the triggering write, but the
// stored value stands, the same way an independent write stands when a
// downstream constraint fails to resolve. The parameter tree is the source
// of truth; an observer that missed a value receives the current one on the
// next accepted write or backend replay.
func (p *Parameter) Observe(fn func(value float64) error) {
	p.observers = append(p.observers, fn)
}

// SetValue performs an external write. It rejects writes to fixed, disabled,
// or constraint-driven parameters, validates bounds, and then propagates
// synchronously through every enabled constraint for which this parameter is
// an independent, in registration order. All dependent recomputation
// completes before SetValue returns.
func (p *Parameter) SetValue(value float64) error {
	if p.fixed {
		return ImmutableParameterError{Name: p.name, Reason: "parameter is fixed"}
	}
	if !p.enabled {
		return ImmutableParameterError{Name: p.name, Reason: "parameter is disabled"}
	}
	if p.Constrained() {
		return ImmutableParameterError{Name: p.name, Reason: "parameter is driven by constraint " + p.writer.name}
	}
	return p.apply(value)
}

// apply validates bounds, stores the value, notifies observers and triggers
// forward propagation. It is shared by external writes and constraint writes.
// Once bounds pass, the store is committed; observer and propagation failures
// abort the remaining downstream work but never roll the value back.
func (p *Parameter) apply(value float64) error {
	if math.IsNaN(value) || value < p.min || value > p.max {
		return RangeError{Name: p.name, Value: value, Min: p.min, Max: p.max}
	}
	p.value = value
	for _, fn := range p.observers {
		if err := fn(value); err != nil {
			return err
		}
	}
	return p.propagate()
}

// propagate resolves every enabled attached constraint in registration
// order. A failing resolution aborts the remaining propagation and leaves
// the failing constraint's dependent at its pre-propagation value.
func (p *Parameter) propagate() error {
	for _, name := range p.order {
		c := p.constraints[name]
		if !c.enabled {
			continue
		}
		if err := c.resolve(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parameter) register(name string, c *Constraint) {
	if _, ok := p.constraints[name]; !ok {
		p.order = append(p.order, name)
	}
	p.constraints[name] = c
}

func (p *Parameter) unregister(name string) {
	if _, ok := p.constraints[name]; !ok {
		return
	}
	delete(p.constraints, name)
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}
