package fec

import "testing"

func TestPoolAllocFreeRoundTrip(t *testing.T) {
	p := NewPool(4, 128)

	blocks := make([][]byte, 4)
	for i := range blocks {
		blocks[i] = p.Alloc()
		blocks[i][0] = byte(i + 1)
	}
	if p.InUse() != 4 {
		t.Fatalf("InUse = %d, want 4", p.InUse())
	}

	for _, b := range blocks {
		p.Free(b)
	}
	if p.InUse() != 0 {
		t.Fatalf("InUse after free = %d, want 0", p.InUse())
	}

	reused := p.Alloc()
	for _, v := range reused {
		if v != 0 {
			t.Fatalf("reused block not zeroed: %v", reused)
		}
	}
}

func TestPoolGrowsOnExhaustion(t *testing.T) {
	p := NewPool(1, 64)
	a := p.Alloc()
	b := p.Alloc() // exceeds initial capacity, should grow rather than block
	if a == nil || b == nil {
		t.Fatal("Alloc returned nil")
	}
	if p.Overflows() == 0 {
		t.Fatal("expected Overflows to be incremented on growth")
	}
	if p.Capacity() < 2 {
		t.Fatalf("Capacity = %d, want >= 2 after growth", p.Capacity())
	}
}
