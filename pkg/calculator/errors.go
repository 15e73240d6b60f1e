package calculator

import "fmt"

// NoActiveBackendError reports an operation attempted before Select.
type NoActiveBackendError struct {
	Operation string
}

func (e NoActiveBackendError) Error() string {
	return fmt.Sprintf("no active backend for operation %s", e.Operation)
}

// UnknownBackendError reports a Select with an identifier absent from the
// registry.
type UnknownBackendError struct {
	Name string
}

func (e UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown backend %q", e.Name)
}

// UnboundParentError reports a binding attempt for an entity whose required
// parent or referenced child is not yet bound.
type UnboundParentError struct {
	UID      string
	Requires string
}

func (e UnboundParentError) Error() string {
	return fmt.Sprintf("entity %s requires %s to be bound first", e.UID, e.Requires)
}

// UnboundEntityError reports an attribute access on an entity with no
// binding record.
type UnboundEntityError struct {
	UID string
}

func (e UnboundEntityError) Error() string {
	return fmt.Sprintf("entity %s is not bound", e.UID)
}

// UnknownAttributeError reports an abstract attribute absent from an
// entity's translation table.
type UnknownAttributeError struct {
	UID  string
	Attr string
}

func (e UnknownAttributeError) Error() string {
	return fmt.Sprintf("entity %s has no attribute %q", e.UID, e.Attr)
}

// BackendError wraps a failure inside a backend call with the backend name
// and the failed call's arguments.
type BackendError struct {
	Backend string
	Call    string
	Args    []string
	Err     error
}

func (e BackendError) Error() string {
	return fmt.Sprintf("backend %s: %s(%v): %v", e.Backend, e.Call, e.Args, e.Err)
}

// Unwrap exposes the backend-side cause.
func (e BackendError) Unwrap() error { return e.Err }
