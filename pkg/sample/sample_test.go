package sample

import (
	"errors"
	"math"
	"testing"

	"easyreflectometry/pkg/calculator"
	"easyreflectometry/pkg/parameter"
)

func approx(t *testing.T, what string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s: got %g want %g", what, got, want)
	}
}

func TestMaterialMixtureTracksComponents(t *testing.T) {
	a := NewMaterial("a", 2, 0.1)
	b := NewMaterial("b", 6, 0.3)
	mix, err := NewMaterialMixture("mix", a, b, 0.25)
	if err != nil {
		t.Fatalf("mixture: %v", err)
	}
	approx(t, "mixed sld", mix.SLD().Value(), 0.75*2+0.25*6, 1e-12)
	approx(t, "mixed isld", mix.ISLD().Value(), 0.75*0.1+0.25*0.3, 1e-12)

	if err := a.SLD().SetValue(4); err != nil {
		t.Fatalf("set component sld: %v", err)
	}
	approx(t, "sld after component change", mix.SLD().Value(), 0.75*4+0.25*6, 1e-12)

	if err := mix.Fraction().SetValue(0.5); err != nil {
		t.Fatalf("set fraction: %v", err)
	}
	approx(t, "sld after fraction change", mix.SLD().Value(), 0.5*4+0.5*6, 1e-12)

	var rangeErr parameter.RangeError
	if err := mix.Fraction().SetValue(1.5); !errors.As(err, &rangeErr) {
		t.Fatalf("expected RangeError for fraction outside [0,1], got %v", err)
	}
}

func TestSolvatedMaterialSyncsSolvation(t *testing.T) {
	film := NewMaterial("film", 1, 0)
	solvated, err := NewSolvatedMaterial("wet film", film, NewD2O(), 0.2)
	if err != nil {
		t.Fatalf("solvated: %v", err)
	}
	approx(t, "initial sld", solvated.SLD().Value(), 0.8*1+0.2*6.36, 1e-12)

	if err := solvated.SetSolvation(0.5); err != nil {
		t.Fatalf("set solvation: %v", err)
	}
	approx(t, "fraction follows solvation", solvated.Fraction().Value(), 0.5, 1e-12)
	approx(t, "sld after solvation change", solvated.SLD().Value(), 0.5*1+0.5*6.36, 1e-12)

	// The fraction is constraint-driven and rejects external writes.
	var immutable parameter.ImmutableParameterError
	if err := solvated.Fraction().SetValue(0.1); !errors.As(err, &immutable) {
		t.Fatalf("expected ImmutableParameterError, got %v", err)
	}
}

func TestSolvatedMaterialSolventSwap(t *testing.T) {
	film := NewMaterial("film", 1, 0)
	solvated, err := NewSolvatedMaterial("wet film", film, NewD2O(), 0.2)
	if err != nil {
		t.Fatalf("solvated: %v", err)
	}
	h2o := NewMaterial("H2O", -0.561, 0)
	if err := solvated.SetSolvent(h2o); err != nil {
		t.Fatalf("swap solvent: %v", err)
	}
	approx(t, "sld after swap", solvated.SLD().Value(), 0.8*1+0.2*-0.561, 1e-12)

	// Changes to the new solvent keep propagating.
	if err := h2o.SLD().SetValue(0); err != nil {
		t.Fatalf("set solvent sld: %v", err)
	}
	approx(t, "sld after solvent edit", solvated.SLD().Value(), 0.8*1, 1e-12)
}

func TestAreaPerMoleculeLayerDerivesSLD(t *testing.T) {
	l, err := NewAreaPerMoleculeLayer("head", "C10H18NO8P", 10, 3, 48.2, 0.2, NewD2O())
	if err != nil {
		t.Fatalf("layer: %v", err)
	}
	// b(C10H18NO8P) = 60.072 fm = 60.072e-5 angstrom.
	wantMolecular := 60.072e-5 / (10 * 48.2) * 1e6
	approx(t, "molecular sld", l.Molecule().SLD().Value(), wantMolecular, 1e-9)
	approx(t, "solvated sld", l.Solvated().SLD().Value(), 0.8*wantMolecular+0.2*6.36, 1e-9)

	roughBefore := l.Roughness().Value()
	solvBefore := l.Solvation().Value()
	if err := l.AreaPerMolecule().SetValue(60); err != nil {
		t.Fatalf("set area per molecule: %v", err)
	}
	approx(t, "molecular sld after apm change", l.Molecule().SLD().Value(), 60.072e-5/(10*60)*1e6, 1e-9)
	if l.Roughness().Value() != roughBefore || l.Solvation().Value() != solvBefore {
		t.Fatal("unrelated parameters were touched by an area-per-molecule change")
	}
}

func TestAreaPerMoleculeLayerThicknessPropagates(t *testing.T) {
	l, err := NewAreaPerMoleculeLayer("head", "C10H18NO8P", 10, 3, 48.2, 0, NewD2O())
	if err != nil {
		t.Fatalf("layer: %v", err)
	}
	if err := l.Thickness().SetValue(20); err != nil {
		t.Fatalf("set thickness: %v", err)
	}
	approx(t, "sld after thickness change", l.Molecule().SLD().Value(), 60.072e-5/(20*48.2)*1e6, 1e-9)
}

func TestSetFormulaPropagates(t *testing.T) {
	l, err := NewAreaPerMoleculeLayer("tail", "C32D64", 16, 3, 48.2, 0, NewAir())
	if err != nil {
		t.Fatalf("layer: %v", err)
	}
	// b(C32D64) = 32*6.646 + 64*6.671 = 639.616 fm.
	approx(t, "initial sld", l.Molecule().SLD().Value(), 639.616e-5/(16*48.2)*1e6, 1e-9)

	if err := l.SetFormula("C32H64"); err != nil {
		t.Fatalf("set formula: %v", err)
	}
	// b(C32H64) = 32*6.646 - 64*3.739 = -26.624 fm.
	approx(t, "sld after formula change", l.Molecule().SLD().Value(), -26.624e-5/(16*48.2)*1e6, 1e-9)

	if err := l.SetFormula("C32("); err == nil {
		t.Fatal("expected a formula error")
	}
	if l.Formula() != "C32H64" {
		t.Fatalf("failed SetFormula must leave the formula unchanged, got %q", l.Formula())
	}
}

func TestSurfactantAreaPerMoleculeConstraint(t *testing.T) {
	s1, err := NewDefaultSurfactant(NewD2O())
	if err != nil {
		t.Fatalf("surfactant: %v", err)
	}
	s2, err := NewDefaultSurfactant(NewD2O())
	if err != nil {
		t.Fatalf("surfactant: %v", err)
	}
	if err := s1.SetAreaPerMoleculeConstrained(true); err != nil {
		t.Fatalf("constrain: %v", err)
	}
	approx(t, "layer2 snapped on enable", s1.Layer2().AreaPerMolecule().Value(), 48.2, 1e-12)

	if err := s1.Layer1().AreaPerMolecule().SetValue(60); err != nil {
		t.Fatalf("set layer1 apm: %v", err)
	}
	approx(t, "layer2 follows layer1", s1.Layer2().AreaPerMolecule().Value(), 60, 1e-12)
	approx(t, "other contrast untouched", s2.Layer1().AreaPerMolecule().Value(), 48.2, 1e-12)

	var immutable parameter.ImmutableParameterError
	if err := s1.Layer2().AreaPerMolecule().SetValue(50); !errors.As(err, &immutable) {
		t.Fatalf("expected ImmutableParameterError on the driven layer, got %v", err)
	}

	if err := s1.SetAreaPerMoleculeConstrained(false); err != nil {
		t.Fatalf("unconstrain: %v", err)
	}
	if err := s1.Layer1().AreaPerMolecule().SetValue(55); err != nil {
		t.Fatalf("set layer1 apm: %v", err)
	}
	approx(t, "layer2 frozen while disabled", s1.Layer2().AreaPerMolecule().Value(), 60, 1e-12)

	if err := s1.SetAreaPerMoleculeConstrained(true); err != nil {
		t.Fatalf("re-enable: %v", err)
	}
	approx(t, "layer2 snapped on re-enable", s1.Layer2().AreaPerMolecule().Value(), 55, 1e-12)
}

func TestSolventRoughnessRequiresConformal(t *testing.T) {
	s, err := NewDefaultSurfactant(NewD2O())
	if err != nil {
		t.Fatalf("surfactant: %v", err)
	}
	subphase, err := NewLayer("subphase", NewD2O(), 0, 3)
	if err != nil {
		t.Fatalf("layer: %v", err)
	}

	var precondition PreconditionError
	if err := s.ConstrainSolventRoughness(subphase); !errors.As(err, &precondition) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	if subphase.Roughness().Constrained() {
		t.Fatal("failed precondition must not create a constraint")
	}

	if err := s.SetConformalRoughness(true); err != nil {
		t.Fatalf("conformal roughness: %v", err)
	}
	if err := s.ConstrainSolventRoughness(subphase); err != nil {
		t.Fatalf("solvent roughness: %v", err)
	}
	if err := s.Layer1().Roughness().SetValue(5); err != nil {
		t.Fatalf("set roughness: %v", err)
	}
	approx(t, "layer2 roughness", s.Layer2().Roughness().Value(), 5, 1e-12)
	approx(t, "solvent roughness", subphase.Roughness().Value(), 5, 1e-12)
}

func TestConstrainMultipleContrast(t *testing.T) {
	s1, err := NewDefaultSurfactant(NewD2O())
	if err != nil {
		t.Fatalf("surfactant: %v", err)
	}
	s2, err := NewDefaultSurfactant(NewMaterial("H2O", -0.561, 0))
	if err != nil {
		t.Fatalf("surfactant: %v", err)
	}
	if err := s2.ConstrainMultipleContrast(s1, true, true, false); err != nil {
		t.Fatalf("cross contrast: %v", err)
	}

	if err := s1.Layer1().AreaPerMolecule().SetValue(52); err != nil {
		t.Fatalf("set apm: %v", err)
	}
	approx(t, "contrast apm follows", s2.Layer1().AreaPerMolecule().Value(), 52, 1e-12)

	if err := s1.Layer2().Thickness().SetValue(12); err != nil {
		t.Fatalf("set thickness: %v", err)
	}
	approx(t, "contrast thickness follows", s2.Layer2().Thickness().Value(), 12, 1e-12)

	// Solvation was not requested and stays independent.
	if err := s1.Layer2().Solvation().SetValue(0.4); err != nil {
		t.Fatalf("set solvation: %v", err)
	}
	approx(t, "contrast solvation independent", s2.Layer2().Solvation().Value(), 0.2, 1e-12)
}

func TestCrossContrastSkipsInternallyDrivenParameters(t *testing.T) {
	s1, err := NewDefaultSurfactant(NewD2O())
	if err != nil {
		t.Fatalf("surfactant: %v", err)
	}
	s2, err := NewDefaultSurfactant(NewD2O())
	if err != nil {
		t.Fatalf("surfactant: %v", err)
	}
	if err := s2.SetAreaPerMoleculeConstrained(true); err != nil {
		t.Fatalf("constrain: %v", err)
	}
	if err := s2.ConstrainMultipleContrast(s1, false, true, false); err != nil {
		t.Fatalf("cross contrast: %v", err)
	}
	if err := s1.Layer1().AreaPerMolecule().SetValue(58); err != nil {
		t.Fatalf("set apm: %v", err)
	}
	approx(t, "layer1 follows the contrast", s2.Layer1().AreaPerMolecule().Value(), 58, 1e-12)
	approx(t, "layer2 follows via the internal constraint", s2.Layer2().AreaPerMolecule().Value(), 58, 1e-12)
}

func TestFailedConstraintAttachLeavesSurfactantUnconstrained(t *testing.T) {
	s1, err := NewDefaultSurfactant(NewD2O())
	if err != nil {
		t.Fatalf("surfactant: %v", err)
	}
	s2, err := NewDefaultSurfactant(NewD2O())
	if err != nil {
		t.Fatalf("surfactant: %v", err)
	}
	// The contrast mirror claims layer2's area per molecule first, so the
	// intra-surfactant constraint cannot attach.
	if err := s2.ConstrainMultipleContrast(s1, false, true, false); err != nil {
		t.Fatalf("cross contrast: %v", err)
	}
	var conflict parameter.ConstraintConflictError
	if err := s2.SetAreaPerMoleculeConstrained(true); !errors.As(err, &conflict) {
		t.Fatalf("expected ConstraintConflictError, got %v", err)
	}
	if s2.AreaPerMoleculeConstrained() {
		t.Fatal("failed attach must not report the constraint active")
	}
	// Layer2 must still follow the contrast that owns it.
	if err := s1.Layer2().AreaPerMolecule().SetValue(44); err != nil {
		t.Fatalf("set apm: %v", err)
	}
	approx(t, "layer2 still follows the contrast", s2.Layer2().AreaPerMolecule().Value(), 44, 1e-12)

	// Same rule for the conformal roughness.
	claim := parameter.NewMirror(s2.Layer2().Roughness(), s1.Layer2().Roughness())
	if err := parameter.Attach("claim_roughness", claim); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := s2.SetConformalRoughness(true); !errors.As(err, &conflict) {
		t.Fatalf("expected ConstraintConflictError, got %v", err)
	}
	if s2.ConformalRoughness() {
		t.Fatal("failed attach must not report conformal roughness")
	}
	// Once the competing writer is gone the constraint attaches cleanly.
	parameter.Detach(claim)
	if err := s2.SetConformalRoughness(true); err != nil {
		t.Fatalf("conformal roughness after detach: %v", err)
	}
	if !s2.ConformalRoughness() {
		t.Fatal("expected conformal roughness after a clean attach")
	}
}

func TestAssemblyOrderAndPromotion(t *testing.T) {
	air := NewAir()
	si := NewSilicon()
	l1, err := NewLayer("top", air, 0, 0)
	if err != nil {
		t.Fatalf("layer: %v", err)
	}
	l2, err := NewLayer("bottom", si, 100, 3)
	if err != nil {
		t.Fatalf("layer: %v", err)
	}
	a := NewMultilayer("stack", l1)
	if err := a.AddLayer(l2); err != nil {
		t.Fatalf("add layer: %v", err)
	}
	uids := a.LayerUIDs()
	if len(uids) != 2 || uids[0] != l1.UID() || uids[1] != l2.UID() {
		t.Fatalf("unexpected layer order %v", uids)
	}
	if err := a.RemoveLayer(l1.UID()); err != nil {
		t.Fatalf("remove layer: %v", err)
	}
	if uids = a.LayerUIDs(); len(uids) != 1 || uids[0] != l2.UID() {
		t.Fatalf("unexpected layer order after removal %v", uids)
	}
	var unbound calculator.UnboundEntityError
	if err := a.RemoveLayer("missing"); !errors.As(err, &unbound) {
		t.Fatalf("expected UnboundEntityError, got %v", err)
	}

	oldUID := a.UID()
	if err := a.PromoteToRepeating(4); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if a.Kind() != calculator.KindRepeatingMultiLayer {
		t.Fatalf("unexpected kind %s after promotion", a.Kind())
	}
	if a.UID() != oldUID {
		t.Fatal("promotion must preserve the uid")
	}
	if a.Repetitions().Value() != 4 {
		t.Fatalf("repetitions: got %g", a.Repetitions().Value())
	}
	if err := a.PromoteToRepeating(0.5); err == nil {
		t.Fatal("expected rejection of repetitions below 1")
	}
}

func TestReleaseDetachesConstraints(t *testing.T) {
	s, err := NewDefaultSurfactant(NewD2O())
	if err != nil {
		t.Fatalf("surfactant: %v", err)
	}
	if err := s.SetAreaPerMoleculeConstrained(true); err != nil {
		t.Fatalf("constrain: %v", err)
	}
	s.Layer1().Release()

	// With layer1 destroyed, layer2 is free again and no longer follows.
	if err := s.Layer2().AreaPerMolecule().SetValue(70); err != nil {
		t.Fatalf("layer2 must be writable after release: %v", err)
	}
	if err := s.Layer1().AreaPerMolecule().SetValue(40); err != nil {
		t.Fatalf("set released parameter: %v", err)
	}
	approx(t, "layer2 detached", s.Layer2().AreaPerMolecule().Value(), 70, 1e-12)
}

func TestSampleMembership(t *testing.T) {
	a1 := NewMultilayer("a1")
	a2 := NewMultilayer("a2")
	s := NewSample("sample", a1)
	s.Add(a2)
	uids := s.AssemblyUIDs()
	if len(uids) != 2 || uids[0] != a1.UID() || uids[1] != a2.UID() {
		t.Fatalf("unexpected assembly order %v", uids)
	}
	if !s.Remove(a1.UID()) {
		t.Fatal("remove reported no match")
	}
	if s.Remove(a1.UID()) {
		t.Fatal("second remove must report no match")
	}
	if uids = s.AssemblyUIDs(); len(uids) != 1 || uids[0] != a2.UID() {
		t.Fatalf("unexpected assembly order after removal %v", uids)
	}
}
