package calculator

// ItemContainer is the per-entity binding record: the entity uid, the
// abstract-to-backend attribute name translation table, and the getter and
// setter that reach the backend storage for that entity. Containers are
// created once per (uid, active backend) pair and rebuilt on backend switch.
type ItemContainer struct {
	UID     string
	NameMap map[string]string
	Getter  func(uid, attr string) (float64, error)
	Setter  func(uid, attr string, value float64) error
}

// Attribute translation tables per entity kind. The abstract names are the
// sample tree's vocabulary; the values are what backends store under.
var (
	materialAttrs = map[string]string{
		"sld":  "real",
		"isld": "imag",
	}
	layerAttrs = map[string]string{
		"thickness": "thick",
		"roughness": "rough",
	}
	multiLayerAttrs = map[string]string{}
	repeatingAttrs  = map[string]string{
		"repetitions": "repeats",
	}
	modelAttrs = map[string]string{
		"scale":      "scale",
		"background": "bkg",
		"resolution": "dq",
	}
)

// attrTable returns the translation table for an entity kind.
func attrTable(kind Kind) map[string]string {
	switch kind {
	case KindMaterial:
		return materialAttrs
	case KindLayer:
		return layerAttrs
	case KindMultiLayer:
		return multiLayerAttrs
	case KindRepeatingMultiLayer:
		return repeatingAttrs
	case KindModel:
		return modelAttrs
	}
	return nil
}
