// Package calculator defines the calculator backend contract, the per-entity
// binding records, and the Interface type that projects the abstract sample
// tree onto whichever backend is currently active.
package calculator

// Backend is the plugin contract implemented once per calculation engine.
// Implementations own their internal storage, keyed exclusively by entity
// uid; they never see the abstract entity tree. All attribute names are the
// backend-side names (see the attribute tables in container.go).
type Backend interface {
	// Name returns the registry identifier of the backend.
	Name() string

	CreateMaterial(uid string) error
	CreateLayer(uid string) error
	CreateItem(uid string) error
	CreateModel(uid string) error

	GetMaterialValue(uid, attr string) (float64, error)
	UpdateMaterial(uid, attr string, value float64) error
	GetLayerValue(uid, attr string) (float64, error)
	UpdateLayer(uid, attr string, value float64) error
	GetItemValue(uid, attr string) (float64, error)
	UpdateItem(uid, attr string, value float64) error
	GetModelValue(uid, attr string) (float64, error)
	UpdateModel(uid, attr string, value float64) error

	AssignMaterialToLayer(materialUID, layerUID string) error
	AddLayerToItem(layerUID, itemUID string) error
	RemoveLayerFromItem(layerUID, itemUID string) error
	AddItem(itemUID string) error
	RemoveItem(itemUID string) error
	ChangeItemToRepeatingMultiLayer(itemUID, oldUID string) error

	// Calculate evaluates the reflectivity at the given probe coordinates.
	Calculate(x []float64) ([]float64, error)
	// SLDProfile returns depth coordinates and the scattering length
	// density at each, as two equal-length slices.
	SLDProfile(modelUID string) (z []float64, sld []float64, err error)
	// ResetStorage clears all backend-side bound state.
	ResetStorage()
}
