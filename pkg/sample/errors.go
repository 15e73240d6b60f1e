package sample

import "fmt"

// PreconditionError reports an operation requested before the state it
// depends on was established, for example a shared solvent-roughness
// constraint before roughness has been made conformal.
type PreconditionError struct {
	Operation string
	Requires  string
}

func (e PreconditionError) Error() string {
	return fmt.Sprintf("%s requires %s", e.Operation, e.Requires)
}
