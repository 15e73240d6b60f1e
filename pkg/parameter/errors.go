package parameter

import "fmt"

// RangeError reports a value outside a parameter's declared bounds.
type RangeError struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
}

func (e RangeError) Error() string {
	return fmt.Sprintf("parameter %s: value %g outside bounds [%g, %g]", e.Name, e.Value, e.Min, e.Max)
}

// ImmutableParameterError reports an external write to a parameter that does
// not accept one: fixed, disabled, or driven by an enabled constraint.
type ImmutableParameterError struct {
	Name   string
	Reason string
}

func (e ImmutableParameterError) Error() string {
	return fmt.Sprintf("parameter %s is not writable: %s", e.Name, e.Reason)
}

// CycleError reports a constraint whose attachment would make the dependency
// graph cyclic.
type CycleError struct {
	Constraint string
	Dependent  string
}

func (e CycleError) Error() string {
	return fmt.Sprintf("constraint %s: dependent %s feeds back into its own independents", e.Constraint, e.Dependent)
}

// ConstraintConflictError reports an attachment that would give a dependent
// parameter more than one writer, or reuse a constraint name already
// registered on one of the independents.
type ConstraintConflictError struct {
	Constraint string
	Parameter  string
	Reason     string
}

func (e ConstraintConflictError) Error() string {
	return fmt.Sprintf("constraint %s on parameter %s: %s", e.Constraint, e.Parameter, e.Reason)
}
