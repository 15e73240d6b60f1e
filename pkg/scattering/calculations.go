package scattering

// AreaPerMoleculeToSLD converts a scattering length (angstrom) of a molecule
// occupying thickness * areaPerMolecule (angstrom^3) into a scattering
// length density in 1e-6 angstrom^-2.
func AreaPerMoleculeToSLD(scatteringLength, thickness, areaPerMolecule float64) float64 {
	return scatteringLength / (thickness * areaPerMolecule) * 1e6
}

// WeightedAverage mixes two scattering length densities by the fraction of
// the second component: (1-fraction)*a + fraction*b. It is the rule behind
// material mixtures and solvated materials.
func WeightedAverage(a, b, fraction float64) float64 {
	return (1-fraction)*a + fraction*b
}
