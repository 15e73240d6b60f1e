package parameter

// Func is a named pure function drawn from a fixed library (for example
// scattering.AreaPerMoleculeToSLD). Naming the rule keeps the dependency
// graph analyzable; arbitrary anonymous closures are deliberately not part
// of the contract.
type Func struct {
	Name  string
	Apply func(values ...float64) float64
}

// Constraint links one dependent parameter to one or more independent
// parameters. Two rule kinds exist: an object mirror, where the dependent
// copies the single independent through an optional affine transform, and a
// functional rule, where the dependent is recomputed from a pure function of
// all independents. A disabled constraint freezes its dependent at the last
// resolved value.
type Constraint struct {
	name         string
	dependent    *Parameter
	independents []*Parameter

	// Mirror transform; identity by default. Ignored when fn is set.
	factor float64
	offset float64

	fn *Func

	enabled bool
}

// NewMirror builds an object constraint: dependent mirrors independent.
func NewMirror(dependent, independent *Parameter) *Constraint {
	return NewScaledMirror(dependent, independent, 1, 0)
}

// NewScaledMirror builds an object constraint with an affine transform:
// dependent = factor*independent + offset.
func NewScaledMirror(dependent, independent *Parameter, factor, offset float64) *Constraint {
	return &Constraint{
		dependent:    dependent,
		independents: []*Parameter{independent},
		factor:       factor,
		offset:       offset,
		enabled:      true,
	}
}

// NewFunctional builds a functional constraint: dependent = fn(independents...).
func NewFunctional(dependent *Parameter, fn Func, independents ...*Parameter) *Constraint {
	return &Constraint{
		dependent:    dependent,
		independents: independents,
		fn:           &fn,
		enabled:      true,
	}
}

// Name returns the name the constraint was attached under, or "" before
// attachment.
func (c *Constraint) Name() string { return c.name }

// Dependent returns the parameter this constraint resolves.
func (c *Constraint) Dependent() *Parameter { return c.dependent }

// Independents returns the source parameters in declaration order.
func (c *Constraint) Independents() []*Parameter { return c.independents }

// Enabled reports whether propagation through this constraint is active.
func (c *Constraint) Enabled() bool { return c.enabled }

// SetEnabled toggles propagation. Enabling immediately pushes the dependent
// to the value implied by the current independents; disabling freezes the
// dependent at its last value and makes it externally writable again.
func (c *Constraint) SetEnabled(enabled bool) error {
	c.enabled = enabled
	if enabled {
		return c.resolve()
	}
	return nil
}

// output computes the rule result from the current independent values.
func (c *Constraint) output() float64 {
	if c.fn != nil {
		values := make([]float64, len(c.independents))
		for i, p := range c.independents {
			values[i] = p.Value()
		}
		return c.fn.Apply(values...)
	}
	return c.factor*c.independents[0].Value() + c.offset
}

// resolve writes the rule output into the dependent. The write bypasses the
// fixed and writer checks (a constraint may drive a fixed dependent) but
// still validates bounds; a bounds failure leaves the dependent unchanged.
func (c *Constraint) resolve() error {
	return c.dependent.apply(c.output())
}

// Attach registers the constraint under the given name on every independent
// parameter and claims the dependent. It rejects attachments that would make
// the dependency graph cyclic (CycleError), give the dependent a second
// writer, or reuse a name already registered on one of the independents
// (ConstraintConflictError). On success the rule is applied once so the
// dependent immediately reflects its independents.
func Attach(name string, c *Constraint) error {
	if c.dependent.writer != nil {
		return ConstraintConflictError{
			Constraint: name,
			Parameter:  c.dependent.name,
			Reason:     "dependent already driven by constraint " + c.dependent.writer.name,
		}
	}
	for _, p := range c.independents {
		if p == c.dependent {
			return CycleError{Constraint: name, Dependent: c.dependent.name}
		}
		if _, ok := p.constraints[name]; ok {
			return ConstraintConflictError{
				Constraint: name,
				Parameter:  p.name,
				Reason:     "constraint name already registered",
			}
		}
	}
	if reaches(c.dependent, c.independents) {
		return CycleError{Constraint: name, Dependent: c.dependent.name}
	}
	c.name = name
	for _, p := range c.independents {
		p.register(name, c)
	}
	c.dependent.writer = c
	if c.enabled {
		return c.resolve()
	}
	return nil
}

// Detach removes the constraint from every independent and releases the
// dependent. The dependent keeps its last resolved value.
func Detach(c *Constraint) {
	for _, p := range c.independents {
		p.unregister(c.name)
	}
	if c.dependent.writer == c {
		c.dependent.writer = nil
	}
}

// Release detaches every constraint that references the parameter, as a
// dependent or as an independent. Call it when the owning entity is
// destroyed so no constraint holds a dangling reference.
func Release(p *Parameter) {
	if p.writer != nil {
		Detach(p.writer)
	}
	for _, name := range append([]string(nil), p.order...) {
		Detach(p.constraints[name])
	}
}

// reaches reports whether any of targets is reachable from start by walking
// dependency edges (independent → dependent) over attached constraints,
// enabled or not. Disabled constraints count so that enabling one can never
// introduce a cycle.
func reaches(start *Parameter, targets []*Parameter) bool {
	seen := map[*Parameter]bool{}
	stack := []*Parameter{start}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[p] {
			continue
		}
		seen[p] = true
		for _, t := range targets {
			if p == t {
				return true
			}
		}
		for _, name := range p.order {
			stack = append(stack, p.constraints[name].dependent)
		}
	}
	return false
}
