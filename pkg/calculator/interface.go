package calculator

import (
	"fmt"
	"sort"
	"time"
)

// Interface projects the abstract entity tree onto the active calculator
// backend. It starts unselected; Select activates a backend from the
// registry and every other operation requires an active backend. The
// abstract tree is the single source of truth: switching backends replays
// every bound entity, with its current parameter values, into the new
// backend.
//
// An Interface serves exactly one entity tree. Callers that need parallel
// evaluation must build independent trees, each with its own Interface.
type Interface struct {
	backends map[string]func() (Backend, error)
	name     string
	backend  Backend

	containers map[string]*ItemContainer
	bound      []Entity
	observed   map[string]bool // uid+"/"+attr pairs with an installed observer

	metrics MetricsRecorder
}

// Option configures an Interface.
type Option func(*Interface)

// WithMetrics installs a recorder for operation timings and outcomes.
func WithMetrics(rec MetricsRecorder) Option {
	return func(i *Interface) { i.metrics = rec }
}

// WithBackend adds a backend constructor to this Interface's registry,
// shadowing a built-in of the same name. Used for test doubles and
// out-of-tree engines.
func WithBackend(name string, ctor func() (Backend, error)) Option {
	return func(i *Interface) { i.backends[name] = ctor }
}

// New returns an unselected Interface whose registry holds the built-in
// backends.
func New(opts ...Option) *Interface {
	i := &Interface{
		backends:   builtinBackends(),
		containers: make(map[string]*ItemContainer),
		observed:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// AvailableBackends returns the sorted identifiers this Interface can
// select.
func (i *Interface) AvailableBackends() []string {
	names := make([]string, 0, len(i.backends))
	for name := range i.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Active returns the active backend identifier, or false before Select.
func (i *Interface) Active() (string, bool) {
	return i.name, i.backend != nil
}

// Select switches the active backend. Every bound entity is replayed into
// the new backend using its current parameter values; on any failure the
// previous backend stays active and unchanged. The old backend's storage is
// cleared after a successful switch.
func (i *Interface) Select(name string) error {
	ctor, ok := i.backends[name]
	if !ok {
		return UnknownBackendError{Name: name}
	}
	start := time.Now()
	err := i.selectBackend(name, ctor)
	i.observe("select", err == nil, time.Since(start))
	return err
}

func (i *Interface) selectBackend(name string, ctor func() (Backend, error)) error {
	b, err := ctor()
	if err != nil {
		return BackendError{Backend: name, Call: "open", Err: err}
	}
	containers := make(map[string]*ItemContainer, len(i.bound))
	for _, e := range replayOrder(i.bound) {
		if err := bindInto(b, containers, e); err != nil {
			b.ResetStorage()
			return err
		}
	}
	if i.backend != nil {
		i.backend.ResetStorage()
	}
	i.backend = b
	i.name = name
	i.containers = containers
	return nil
}

// Bind registers an entity with the active backend and installs parameter
// observers so later value changes are pushed through. Binding an already
// bound entity is a no-op.
func (i *Interface) Bind(e Entity) error {
	if i.backend == nil {
		return NoActiveBackendError{Operation: "bind"}
	}
	if _, ok := i.containers[e.UID()]; ok {
		return nil
	}
	start := time.Now()
	err := bindInto(i.backend, i.containers, e)
	i.observe("bind", err == nil, time.Since(start))
	if err != nil {
		return err
	}
	i.bound = append(i.bound, e)
	i.installObservers(e)
	return nil
}

// Bound reports whether the entity uid has a binding record on the active
// backend.
func (i *Interface) Bound(uid string) bool {
	_, ok := i.containers[uid]
	return ok
}

// installObservers hooks every bound parameter of the entity so accepted
// value changes (external or constraint-driven) reach the backend. Each
// (uid, attr) pair is observed at most once per Interface lifetime; the
// hooks survive backend switches because they resolve the container at call
// time.
func (i *Interface) installObservers(e Entity) {
	uid := e.UID()
	for _, bp := range e.BoundParameters() {
		key := uid + "/" + bp.Attr
		if i.observed[key] {
			continue
		}
		i.observed[key] = true
		attr := bp.Attr
		bp.Param.Observe(func(v float64) error {
			return i.push(uid, attr, v)
		})
	}
}

// push writes a single attribute value through the entity's container. An
// unbound uid is a no-op so trees can be edited before binding.
func (i *Interface) push(uid, attr string, value float64) error {
	c, ok := i.containers[uid]
	if !ok {
		return nil
	}
	backendAttr, ok := c.NameMap[attr]
	if !ok {
		return nil
	}
	if err := c.Setter(uid, backendAttr, value); err != nil {
		return BackendError{Backend: i.name, Call: "update", Args: []string{uid, backendAttr, fmt.Sprint(value)}, Err: err}
	}
	return nil
}

// Read translates the abstract attribute through the entity's name map and
// returns the backend-side value.
func (i *Interface) Read(e Entity, attr string) (float64, error) {
	if i.backend == nil {
		return 0, NoActiveBackendError{Operation: "read"}
	}
	c, ok := i.containers[e.UID()]
	if !ok {
		return 0, UnboundEntityError{UID: e.UID()}
	}
	backendAttr, ok := c.NameMap[attr]
	if !ok {
		return 0, UnknownAttributeError{UID: e.UID(), Attr: attr}
	}
	v, err := c.Getter(e.UID(), backendAttr)
	if err != nil {
		return 0, BackendError{Backend: i.name, Call: "get", Args: []string{e.UID(), backendAttr}, Err: err}
	}
	return v, nil
}

// Write sets an abstract attribute. Parameter-backed attributes go through
// Parameter.SetValue so constraint propagation runs before the backend sees
// the value; the installed observer performs the backend write.
func (i *Interface) Write(e Entity, attr string, value float64) error {
	if i.backend == nil {
		return NoActiveBackendError{Operation: "write"}
	}
	c, ok := i.containers[e.UID()]
	if !ok {
		return UnboundEntityError{UID: e.UID()}
	}
	if _, ok := c.NameMap[attr]; !ok {
		return UnknownAttributeError{UID: e.UID(), Attr: attr}
	}
	for _, bp := range e.BoundParameters() {
		if bp.Attr == attr {
			return bp.Param.SetValue(value)
		}
	}
	return i.push(e.UID(), attr, value)
}

// AssignMaterialToLayer links a bound material to a bound layer.
func (i *Interface) AssignMaterialToLayer(materialUID, layerUID string) error {
	if err := i.requireBound("assign_material_to_layer", materialUID, layerUID); err != nil {
		return err
	}
	if err := i.backend.AssignMaterialToLayer(materialUID, layerUID); err != nil {
		return BackendError{Backend: i.name, Call: "assign_material_to_layer", Args: []string{materialUID, layerUID}, Err: err}
	}
	return nil
}

// AddLayerToItem appends a bound layer to a bound assembly, preserving the
// entity tree's ordering backend-side.
func (i *Interface) AddLayerToItem(layerUID, itemUID string) error {
	if err := i.requireBound("add_layer_to_item", layerUID, itemUID); err != nil {
		return err
	}
	if err := i.backend.AddLayerToItem(layerUID, itemUID); err != nil {
		return BackendError{Backend: i.name, Call: "add_layer_to_item", Args: []string{layerUID, itemUID}, Err: err}
	}
	return nil
}

// RemoveLayerFromItem removes a layer from an assembly backend-side.
func (i *Interface) RemoveLayerFromItem(layerUID, itemUID string) error {
	if err := i.requireBound("remove_layer_from_item", layerUID, itemUID); err != nil {
		return err
	}
	if err := i.backend.RemoveLayerFromItem(layerUID, itemUID); err != nil {
		return BackendError{Backend: i.name, Call: "remove_layer_from_item", Args: []string{layerUID, itemUID}, Err: err}
	}
	return nil
}

// AddItemToModel appends a bound assembly to the model structure.
func (i *Interface) AddItemToModel(itemUID string) error {
	if err := i.requireBound("add_item", itemUID); err != nil {
		return err
	}
	if err := i.backend.AddItem(itemUID); err != nil {
		return BackendError{Backend: i.name, Call: "add_item", Args: []string{itemUID}, Err: err}
	}
	return nil
}

// RemoveItemFromModel removes an assembly from the model structure.
func (i *Interface) RemoveItemFromModel(itemUID string) error {
	if err := i.requireBound("remove_item", itemUID); err != nil {
		return err
	}
	if err := i.backend.RemoveItem(itemUID); err != nil {
		return BackendError{Backend: i.name, Call: "remove_item", Args: []string{itemUID}, Err: err}
	}
	return nil
}

// ChangeToRepeatingMultiLayer converts a bound assembly to its repeating
// kind while preserving its uid and already-bound layers. The entity must
// already report its new kind so the refreshed name map and parameters
// (repetitions) can be pushed.
func (i *Interface) ChangeToRepeatingMultiLayer(e AssemblyEntity) error {
	if i.backend == nil {
		return NoActiveBackendError{Operation: "retype"}
	}
	uid := e.UID()
	c, ok := i.containers[uid]
	if !ok {
		return UnboundEntityError{UID: uid}
	}
	if err := i.backend.ChangeItemToRepeatingMultiLayer(uid, uid); err != nil {
		return BackendError{Backend: i.name, Call: "change_item_to_repeating_multi_layer", Args: []string{uid, uid}, Err: err}
	}
	c.NameMap = attrTable(e.Kind())
	if err := pushParameters(i.backend, c, e); err != nil {
		return err
	}
	i.installObservers(e)
	return nil
}

// Compute delegates the reflectivity calculation to the active backend. It
// is a pure function of the bound state and x.
func (i *Interface) Compute(x []float64) ([]float64, error) {
	if i.backend == nil {
		return nil, NoActiveBackendError{Operation: "compute"}
	}
	start := time.Now()
	y, err := i.backend.Calculate(x)
	i.observe("compute", err == nil, time.Since(start))
	if err != nil {
		return nil, BackendError{Backend: i.name, Call: "calculate", Args: []string{fmt.Sprintf("len=%d", len(x))}, Err: err}
	}
	return y, nil
}

// SLDProfile returns depth coordinates and scattering length density from
// the active backend for the bound model.
func (i *Interface) SLDProfile(modelUID string) ([]float64, []float64, error) {
	if i.backend == nil {
		return nil, nil, NoActiveBackendError{Operation: "sld_profile"}
	}
	start := time.Now()
	z, sld, err := i.backend.SLDProfile(modelUID)
	i.observe("sld_profile", err == nil, time.Since(start))
	if err != nil {
		return nil, nil, BackendError{Backend: i.name, Call: "sld_profile", Args: []string{modelUID}, Err: err}
	}
	return z, sld, nil
}

// ResetStorage clears all backend-side bound state and this Interface's
// binding records without touching the abstract entity tree. Entities must
// be re-bound afterwards.
func (i *Interface) ResetStorage() error {
	if i.backend == nil {
		return NoActiveBackendError{Operation: "reset_storage"}
	}
	i.backend.ResetStorage()
	i.containers = make(map[string]*ItemContainer)
	i.bound = nil
	return nil
}

func (i *Interface) requireBound(op string, uids ...string) error {
	if i.backend == nil {
		return NoActiveBackendError{Operation: op}
	}
	for _, uid := range uids {
		if _, ok := i.containers[uid]; !ok {
			return UnboundEntityError{UID: uid}
		}
	}
	return nil
}

func (i *Interface) observe(op string, success bool, d time.Duration) {
	if i.metrics != nil {
		i.metrics.Observe(op, success, d)
	}
}
