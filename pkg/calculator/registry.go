package calculator

import "easyreflectometry/internal/refcalc"

// builtinBackends returns the static registry of backend constructors. The
// set is fixed at compile time; out-of-tree backends join a single Interface
// through the WithBackend option rather than a mutable global.
//
//	native    - in-memory slab storage, Abeles transfer-matrix kernel
//	kinematic - in-memory slab storage, kinematic (Born) approximation
//	sqlite    - SQLite-backed slab storage, Abeles kernel
func builtinBackends() map[string]func() (Backend, error) {
	return map[string]func() (Backend, error){
		refcalc.NameNative:    func() (Backend, error) { return refcalc.NewNative(), nil },
		refcalc.NameKinematic: func() (Backend, error) { return refcalc.NewKinematic(), nil },
		refcalc.NameSQLite:    func() (Backend, error) { return refcalc.NewSQLite() },
	}
}

// AvailableBackends lists the built-in backend identifiers without
// constructing an Interface.
func AvailableBackends() []string {
	return New().AvailableBackends()
}
