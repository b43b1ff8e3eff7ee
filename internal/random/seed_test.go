package random

import "testing"

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed() error = %v", err)
	}
	b, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed() error = %v", err)
	}
	if a == b {
		t.Errorf("two seeds are equal: %d", a)
	}
}

func TestNewIsDeterministicForSeed(t *testing.T) {
	r1, err := New(7)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	r2, err := New(7)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < 20; i++ {
		if a, b := r1.IntN(100), r2.IntN(100); a != b {
			t.Fatalf("draw %d differs: %d vs %d", i, a, b)
		}
	}
}
