package engine

import "testing"

func TestRNG_Deterministic(t *testing.T) {
	rng1 := NewRNG(42)
	rng2 := NewRNG(42)

	for i := 0; i < 20; i++ {
		a := rng1.SaveKey()
		b := rng2.SaveKey()
		if a != b {
			t.Fatalf("draw %d: got %d and %d from same seed", i, a, b)
		}
	}
}

func TestRNG_SaveKey_Range(t *testing.T) {
	rng := NewRNG(99)

	for i := 0; i < 1000; i++ {
		if k := rng.SaveKey(); k > 127 {
			t.Fatalf("key out of range [0,127]: got %d", k)
		}
	}
}

func TestRNG_Position(t *testing.T) {
	rng := NewRNG(7)
	for i := 0; i < 5; i++ {
		rng.SaveKey()
	}
	if rng.Position() != 5 {
		t.Errorf("Position() = %d, want 5", rng.Position())
	}
	if rng.Seed() != 7 {
		t.Errorf("Seed() = %d, want 7", rng.Seed())
	}
}
