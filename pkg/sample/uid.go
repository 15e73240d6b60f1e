package sample

import "github.com/google/uuid"

// newUID returns a process-unique entity identifier. uids key all backend
// binding and are never reused within a process lifetime.
func newUID() string {
	return uuid.NewString()
}
