package wire

import "testing"

func TestBitMaskSetGet(t *testing.T) {
	m := NewBitMask(40)
	m.SetBit(0, true)
	m.SetBit(31, true)
	m.SetBit(32, true)
	m.SetBit(39, true)

	for _, i := range []int{0, 31, 32, 39} {
		if !m.GetBit(i) {
			t.Fatalf("bit %d should be set", i)
		}
	}
	for _, i := range []int{1, 2, 30, 33, 38} {
		if m.GetBit(i) {
			t.Fatalf("bit %d should be clear", i)
		}
	}
}

func TestBitMaskOutOfRangeReadsFalse(t *testing.T) {
	m := NewBitMask(8)
	if m.GetBit(1000) {
		t.Fatal("out-of-range bit should read false")
	}
}

func TestBitMaskGrowsOnSet(t *testing.T) {
	m := NewBitMask(0)
	m.SetBit(100, true)
	if !m.GetBit(100) {
		t.Fatal("expected bit 100 to be set after growth")
	}
}

func TestBitMaskWireRoundTrip(t *testing.T) {
	m := NewBitMask(70)
	m.SetBit(5, true)
	m.SetBit(65, true)

	w := NewWriter(0)
	m.WriteTo(w)

	r := NewReader(w.Bytes())
	got, err := ReadBitMask(r)
	if err != nil {
		t.Fatalf("ReadBitMask: %v", err)
	}
	if !got.GetBit(5) || !got.GetBit(65) {
		t.Fatal("expected bits 5 and 65 to survive the round trip")
	}
	if got.GetBit(6) {
		t.Fatal("bit 6 should not be set")
	}
}

func TestBitMaskUnset(t *testing.T) {
	m := NewBitMask(8)
	m.SetBit(3, true)
	m.SetBit(3, false)
	if m.GetBit(3) {
		t.Fatal("bit 3 should be clear after unset")
	}
}
