package domain

import "testing"

func TestNewBitVectorAllZero(t *testing.T) {
	v := NewBitVector(4)
	for i := 0; i < 4; i++ {
		if v.Test(i) {
			t.Errorf("bit %d should be clear in a fresh zero vector", i)
		}
	}
}

func TestNewFullBitVectorAllOne(t *testing.T) {
	v := NewFullBitVector(4)
	for i := 0; i < 4; i++ {
		if !v.Test(i) {
			t.Errorf("bit %d should be set in a full vector", i)
		}
	}
}

func TestSetIsImmutable(t *testing.T) {
	orig := NewBitVector(3)
	updated := orig.Set(1)

	if orig.Test(1) {
		t.Error("Set should not mutate the receiver")
	}
	if !updated.Test(1) {
		t.Error("Set should return a vector with the bit set")
	}
}

func TestUnionAndIntersect(t *testing.T) {
	a := NewBitVector(3).Set(0).Set(1)
	b := NewBitVector(3).Set(1).Set(2)

	union := a.Union(b)
	for i, want := range []bool{true, true, true} {
		if union.Test(i) != want {
			t.Errorf("union bit %d = %v, expected %v", i, union.Test(i), want)
		}
	}

	inter := a.Intersect(b)
	for i, want := range []bool{false, true, false} {
		if inter.Test(i) != want {
			t.Errorf("intersection bit %d = %v, expected %v", i, inter.Test(i), want)
		}
	}
}

func TestEqual(t *testing.T) {
	a := NewBitVector(3).Set(0)
	b := NewBitVector(3).Set(0)
	c := NewBitVector(3).Set(1)

	if !a.Equal(b) {
		t.Error("vectors with identical bits should be equal")
	}
	if a.Equal(c) {
		t.Error("vectors with different bits should not be equal")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := NewBitVector(2).Set(0)
	b := a.Clone().Set(1)

	if a.Test(1) {
		t.Error("cloning then mutating the clone should not affect the original")
	}
	if !b.Test(0) || !b.Test(1) {
		t.Error("clone should retain original bits plus the new one")
	}
}

func TestStringRendersSetPositions(t *testing.T) {
	v := NewBitVector(5).Set(1).Set(3)
	if got := v.String(); got != "{1,3}" {
		t.Errorf("String() = %s, expected {1,3}", got)
	}
}
