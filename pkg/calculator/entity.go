package calculator

import "easyreflectometry/pkg/parameter"

// Kind identifies the structural kind of a bound entity.
type Kind string

// Entity kinds recognised by the binding layer.
const (
	KindMaterial            Kind = "material"
	KindLayer               Kind = "layer"
	KindMultiLayer          Kind = "multilayer"
	KindRepeatingMultiLayer Kind = "repeating_multilayer"
	KindModel               Kind = "model"
)

// BoundParameter pairs an abstract attribute name with the Parameter backing
// it on the entity.
type BoundParameter struct {
	Attr  string
	Param *parameter.Parameter
}

// Entity is the minimal surface the binding layer needs from a sample tree
// node: a stable uid, a structural kind, and the parameters to keep
// synchronised with the backend.
type Entity interface {
	UID() string
	Kind() Kind
	BoundParameters() []BoundParameter
}

// LayerEntity is an Entity holding a reference to a material.
type LayerEntity interface {
	Entity
	MaterialUID() string
}

// AssemblyEntity is an Entity holding an ordered run of layers.
type AssemblyEntity interface {
	Entity
	LayerUIDs() []string
}

// ModelEntity is an Entity holding an ordered run of assemblies.
type ModelEntity interface {
	Entity
	AssemblyUIDs() []string
}
