package refcalc

import "fmt"

// storage is the slab bookkeeping seam shared by the backends. Two engines
// implement it: an in-memory map store and a SQLite-backed store. All
// lookups are keyed by entity uid and ordering is insertion order, which
// fixes the physical layer order from incident beam to substrate.
type storage interface {
	createMaterial(uid string) error
	createLayer(uid string) error
	createItem(uid string) error
	createModel(uid string) error

	getMaterial(uid, attr string) (float64, error)
	setMaterial(uid, attr string, value float64) error
	getLayer(uid, attr string) (float64, error)
	setLayer(uid, attr string, value float64) error
	getItem(uid, attr string) (float64, error)
	setItem(uid, attr string, value float64) error
	getModel(uid, attr string) (float64, error)
	setModel(uid, attr string, value float64) error

	assignMaterial(materialUID, layerUID string) error
	addLayer(layerUID, itemUID string) error
	removeLayer(layerUID, itemUID string) error
	addItem(itemUID string) error
	removeItem(itemUID string) error
	promoteItem(itemUID, oldUID string) error

	// layerOrder reports the current layer uids of an item, in order.
	layerOrder(itemUID string) ([]string, error)
	// slabs flattens the bound model into resolved slabs, expanding
	// repeating items.
	slabs() ([]slab, error)
	// modelValues returns scale, background, and resolution of the bound
	// model, checking the uid.
	modelValues(uid string) (scale, bkg, dq float64, err error)
	// anyModelValues is modelValues without the uid check, for Calculate.
	anyModelValues() (scale, bkg, dq float64, err error)

	reset()
}

type materialRecord struct {
	real float64
	imag float64
}

type layerRecord struct {
	thick    float64
	rough    float64
	material string
}

type itemRecord struct {
	repeats   float64
	repeating bool
	layers    []string
}

type modelRecord struct {
	uid   string
	scale float64
	bkg   float64
	dq    float64
	items []string
}

// memStorage is the in-memory slab store.
type memStorage struct {
	materials map[string]*materialRecord
	layers    map[string]*layerRecord
	items     map[string]*itemRecord
	model     *modelRecord
}

func newMemStorage() *memStorage {
	s := &memStorage{}
	s.reset()
	return s
}

func (s *memStorage) reset() {
	s.materials = make(map[string]*materialRecord)
	s.layers = make(map[string]*layerRecord)
	s.items = make(map[string]*itemRecord)
	s.model = nil
}

func (s *memStorage) createMaterial(uid string) error {
	if _, ok := s.materials[uid]; ok {
		return fmt.Errorf("material %s already exists", uid)
	}
	s.materials[uid] = &materialRecord{}
	return nil
}

func (s *memStorage) createLayer(uid string) error {
	if _, ok := s.layers[uid]; ok {
		return fmt.Errorf("layer %s already exists", uid)
	}
	s.layers[uid] = &layerRecord{}
	return nil
}

func (s *memStorage) createItem(uid string) error {
	if _, ok := s.items[uid]; ok {
		return fmt.Errorf("item %s already exists", uid)
	}
	s.items[uid] = &itemRecord{repeats: 1}
	return nil
}

func (s *memStorage) createModel(uid string) error {
	if s.model != nil {
		return fmt.Errorf("model already exists")
	}
	s.model = &modelRecord{uid: uid, scale: 1}
	return nil
}

func (s *memStorage) getMaterial(uid, attr string) (float64, error) {
	m, ok := s.materials[uid]
	if !ok {
		return 0, fmt.Errorf("material %s not found", uid)
	}
	switch attr {
	case "real":
		return m.real, nil
	case "imag":
		return m.imag, nil
	}
	return 0, fmt.Errorf("material attribute %q not supported", attr)
}

func (s *memStorage) setMaterial(uid, attr string, value float64) error {
	m, ok := s.materials[uid]
	if !ok {
		return fmt.Errorf("material %s not found", uid)
	}
	switch attr {
	case "real":
		m.real = value
	case "imag":
		m.imag = value
	default:
		return fmt.Errorf("material attribute %q not supported", attr)
	}
	return nil
}

func (s *memStorage) getLayer(uid, attr string) (float64, error) {
	l, ok := s.layers[uid]
	if !ok {
		return 0, fmt.Errorf("layer %s not found", uid)
	}
	switch attr {
	case "thick":
		return l.thick, nil
	case "rough":
		return l.rough, nil
	}
	return 0, fmt.Errorf("layer attribute %q not supported", attr)
}

func (s *memStorage) setLayer(uid, attr string, value float64) error {
	l, ok := s.layers[uid]
	if !ok {
		return fmt.Errorf("layer %s not found", uid)
	}
	switch attr {
	case "thick":
		l.thick = value
	case "rough":
		l.rough = value
	default:
		return fmt.Errorf("layer attribute %q not supported", attr)
	}
	return nil
}

func (s *memStorage) getItem(uid, attr string) (float64, error) {
	it, ok := s.items[uid]
	if !ok {
		return 0, fmt.Errorf("item %s not found", uid)
	}
	if attr == "repeats" {
		return it.repeats, nil
	}
	return 0, fmt.Errorf("item attribute %q not supported", attr)
}

func (s *memStorage) setItem(uid, attr string, value float64) error {
	it, ok := s.items[uid]
	if !ok {
		return fmt.Errorf("item %s not found", uid)
	}
	if attr != "repeats" {
		return fmt.Errorf("item attribute %q not supported", attr)
	}
	if value < 1 {
		return fmt.Errorf("item %s: repeats %g below 1", uid, value)
	}
	it.repeats = value
	return nil
}

func (s *memStorage) getModel(uid, attr string) (float64, error) {
	if s.model == nil || s.model.uid != uid {
		return 0, fmt.Errorf("model %s not found", uid)
	}
	switch attr {
	case "scale":
		return s.model.scale, nil
	case "bkg":
		return s.model.bkg, nil
	case "dq":
		return s.model.dq, nil
	}
	return 0, fmt.Errorf("model attribute %q not supported", attr)
}

func (s *memStorage) setModel(uid, attr string, value float64) error {
	if s.model == nil || s.model.uid != uid {
		return fmt.Errorf("model %s not found", uid)
	}
	switch attr {
	case "scale":
		s.model.scale = value
	case "bkg":
		s.model.bkg = value
	case "dq":
		s.model.dq = value
	default:
		return fmt.Errorf("model attribute %q not supported", attr)
	}
	return nil
}

func (s *memStorage) assignMaterial(materialUID, layerUID string) error {
	if _, ok := s.materials[materialUID]; !ok {
		return fmt.Errorf("material %s not found", materialUID)
	}
	l, ok := s.layers[layerUID]
	if !ok {
		return fmt.Errorf("layer %s not found", layerUID)
	}
	l.material = materialUID
	return nil
}

func (s *memStorage) addLayer(layerUID, itemUID string) error {
	if _, ok := s.layers[layerUID]; !ok {
		return fmt.Errorf("layer %s not found", layerUID)
	}
	it, ok := s.items[itemUID]
	if !ok {
		return fmt.Errorf("item %s not found", itemUID)
	}
	it.layers = append(it.layers, layerUID)
	return nil
}

func (s *memStorage) removeLayer(layerUID, itemUID string) error {
	it, ok := s.items[itemUID]
	if !ok {
		return fmt.Errorf("item %s not found", itemUID)
	}
	for n := len(it.layers) - 1; n >= 0; n-- {
		if it.layers[n] == layerUID {
			it.layers = append(it.layers[:n], it.layers[n+1:]...)
			return nil
		}
	}
	return fmt.Errorf("layer %s not in item %s", layerUID, itemUID)
}

func (s *memStorage) addItem(itemUID string) error {
	if _, ok := s.items[itemUID]; !ok {
		return fmt.Errorf("item %s not found", itemUID)
	}
	if s.model == nil {
		return fmt.Errorf("no model created")
	}
	s.model.items = append(s.model.items, itemUID)
	return nil
}

func (s *memStorage) removeItem(itemUID string) error {
	if s.model == nil {
		return fmt.Errorf("no model created")
	}
	for n := len(s.model.items) - 1; n >= 0; n-- {
		if s.model.items[n] == itemUID {
			s.model.items = append(s.model.items[:n], s.model.items[n+1:]...)
			return nil
		}
	}
	return fmt.Errorf("item %s not in model", itemUID)
}

func (s *memStorage) promoteItem(itemUID, oldUID string) error {
	it, ok := s.items[oldUID]
	if !ok {
		return fmt.Errorf("item %s not found", oldUID)
	}
	if itemUID != oldUID {
		if _, exists := s.items[itemUID]; exists {
			return fmt.Errorf("item %s already exists", itemUID)
		}
		s.items[itemUID] = it
		delete(s.items, oldUID)
		for n, uid := range s.modelItems() {
			if uid == oldUID {
				s.model.items[n] = itemUID
			}
		}
	}
	it.repeating = true
	return nil
}

func (s *memStorage) modelItems() []string {
	if s.model == nil {
		return nil
	}
	return s.model.items
}

func (s *memStorage) layerOrder(itemUID string) ([]string, error) {
	it, ok := s.items[itemUID]
	if !ok {
		return nil, fmt.Errorf("item %s not found", itemUID)
	}
	return append([]string(nil), it.layers...), nil
}

func (s *memStorage) slabs() ([]slab, error) {
	if s.model == nil {
		return nil, fmt.Errorf("no model created")
	}
	var out []slab
	for _, itemUID := range s.model.items {
		it := s.items[itemUID]
		reps := 1
		if it.repeating {
			reps = int(it.repeats)
			if reps < 1 {
				reps = 1
			}
		}
		for rep := 0; rep < reps; rep++ {
			for _, layerUID := range it.layers {
				l := s.layers[layerUID]
				sl := slab{thick: l.thick, rough: l.rough}
				if l.material != "" {
					m := s.materials[l.material]
					sl.real = m.real
					sl.imag = m.imag
				}
				out = append(out, sl)
			}
		}
	}
	return out, nil
}

func (s *memStorage) modelValues(uid string) (float64, float64, float64, error) {
	if s.model == nil || s.model.uid != uid {
		return 0, 0, 0, fmt.Errorf("model %s not found", uid)
	}
	return s.model.scale, s.model.bkg, s.model.dq, nil
}

func (s *memStorage) anyModelValues() (float64, float64, float64, error) {
	if s.model == nil {
		return 0, 0, 0, fmt.Errorf("no model created")
	}
	return s.model.scale, s.model.bkg, s.model.dq, nil
}
