package sample

// Sample is an ordered run of assemblies, from incident beam to substrate.
// It is a pure tree node; backend synchronisation of assembly membership is
// handled by the owning model.
type Sample struct {
	name       string
	assemblies []*Assembly
}

// NewSample constructs a sample from the given assemblies.
func NewSample(name string, assemblies ...*Assembly) *Sample {
	return &Sample{
		name:       name,
		assemblies: append([]*Assembly(nil), assemblies...),
	}
}

func (s *Sample) Name() string { return s.name }

// Assemblies returns the assemblies in physical order.
func (s *Sample) Assemblies() []*Assembly { return s.assemblies }

// AssemblyUIDs returns the assembly uids in physical order.
func (s *Sample) AssemblyUIDs() []string {
	uids := make([]string, len(s.assemblies))
	for n, a := range s.assemblies {
		uids[n] = a.uid
	}
	return uids
}

// Add appends an assembly.
func (s *Sample) Add(a *Assembly) {
	s.assemblies = append(s.assemblies, a)
}

// Remove drops the last occurrence of the assembly with the given uid and
// reports whether one was found.
func (s *Sample) Remove(uid string) bool {
	for n := len(s.assemblies) - 1; n >= 0; n-- {
		if s.assemblies[n].uid == uid {
			s.assemblies = append(s.assemblies[:n], s.assemblies[n+1:]...)
			return true
		}
	}
	return false
}
