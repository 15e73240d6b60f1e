package refcalc

// Registry identifiers of the built-in backends.
const (
	NameNative    = "native"
	NameKinematic = "kinematic"
	NameSQLite    = "sqlite"
)

// Calculator pairs a storage engine with a reflectivity kernel. It satisfies
// the calculator backend contract; all entry points receive backend-side
// attribute names and entity uids.
type Calculator struct {
	name   string
	store  storage
	kernel kernelFunc
}

// NewNative returns the in-memory Abeles backend.
func NewNative() *Calculator {
	return &Calculator{name: NameNative, store: newMemStorage(), kernel: abelesKernel}
}

// NewKinematic returns the in-memory kinematic-approximation backend.
func NewKinematic() *Calculator {
	return &Calculator{name: NameKinematic, store: newMemStorage(), kernel: kinematicKernel}
}

// NewSQLite returns the Abeles backend over SQLite-backed storage.
func NewSQLite() (*Calculator, error) {
	store, err := newSQLStorage()
	if err != nil {
		return nil, err
	}
	return &Calculator{name: NameSQLite, store: store, kernel: abelesKernel}, nil
}

func (c *Calculator) Name() string { return c.name }

func (c *Calculator) CreateMaterial(uid string) error { return c.store.createMaterial(uid) }
func (c *Calculator) CreateLayer(uid string) error    { return c.store.createLayer(uid) }
func (c *Calculator) CreateItem(uid string) error     { return c.store.createItem(uid) }
func (c *Calculator) CreateModel(uid string) error    { return c.store.createModel(uid) }

func (c *Calculator) GetMaterialValue(uid, attr string) (float64, error) {
	return c.store.getMaterial(uid, attr)
}

func (c *Calculator) UpdateMaterial(uid, attr string, value float64) error {
	return c.store.setMaterial(uid, attr, value)
}

func (c *Calculator) GetLayerValue(uid, attr string) (float64, error) {
	return c.store.getLayer(uid, attr)
}

func (c *Calculator) UpdateLayer(uid, attr string, value float64) error {
	return c.store.setLayer(uid, attr, value)
}

func (c *Calculator) GetItemValue(uid, attr string) (float64, error) {
	return c.store.getItem(uid, attr)
}

func (c *Calculator) UpdateItem(uid, attr string, value float64) error {
	return c.store.setItem(uid, attr, value)
}

func (c *Calculator) GetModelValue(uid, attr string) (float64, error) {
	return c.store.getModel(uid, attr)
}

func (c *Calculator) UpdateModel(uid, attr string, value float64) error {
	return c.store.setModel(uid, attr, value)
}

func (c *Calculator) AssignMaterialToLayer(materialUID, layerUID string) error {
	return c.store.assignMaterial(materialUID, layerUID)
}

func (c *Calculator) AddLayerToItem(layerUID, itemUID string) error {
	return c.store.addLayer(layerUID, itemUID)
}

func (c *Calculator) RemoveLayerFromItem(layerUID, itemUID string) error {
	return c.store.removeLayer(layerUID, itemUID)
}

func (c *Calculator) AddItem(itemUID string) error {
	return c.store.addItem(itemUID)
}

func (c *Calculator) RemoveItem(itemUID string) error {
	return c.store.removeItem(itemUID)
}

func (c *Calculator) ChangeItemToRepeatingMultiLayer(itemUID, oldUID string) error {
	return c.store.promoteItem(itemUID, oldUID)
}

// Calculate evaluates the reflectivity of the bound model at the given
// momentum transfer values.
func (c *Calculator) Calculate(x []float64) ([]float64, error) {
	slabs, err := c.store.slabs()
	if err != nil {
		return nil, err
	}
	scale, bkg, dq, err := c.store.anyModelValues()
	if err != nil {
		return nil, err
	}
	return c.kernel(x, slabs, scale, bkg, dq)
}

// SLDProfile renders the depth profile of the model's scattering length
// density.
func (c *Calculator) SLDProfile(modelUID string) ([]float64, []float64, error) {
	if _, _, _, err := c.store.modelValues(modelUID); err != nil {
		return nil, nil, err
	}
	slabs, err := c.store.slabs()
	if err != nil {
		return nil, nil, err
	}
	return sldProfile(slabs)
}

// ResetStorage clears all bound state.
func (c *Calculator) ResetStorage() {
	c.store.reset()
}
