package fec

import "testing"

func TestEncoderDecoderSmallWindow(t *testing.T) {
	pool := NewPool(64, 64)
	k, n := 4, 6
	enc := NewEncoder(k, n)

	payloads := make([][]byte, k)
	for i := 0; i < k; i++ {
		payloads[i] = make([]byte, 64)
		payloads[i][0] = byte(i)
		enc.AddSourcePacket(NewSystematicPacket(uint64(i), payloads[i], pool))
	}

	repairs := make([]*Packet, n-k)
	for j := range repairs {
		repairs[j] = enc.GenerateRepairPacket(j, pool)
		if repairs[j] == nil {
			t.Fatalf("repair %d is nil", j)
		}
	}

	dec := NewDecoder(k, pool)
	deliver := []*Packet{
		NewSystematicPacket(0, payloads[0], pool),
		NewSystematicPacket(1, payloads[1], pool),
		NewSystematicPacket(3, payloads[3], pool),
		repairs[0],
		repairs[1],
	}

	var decoded bool
	for _, p := range deliver {
		var err error
		decoded, err = dec.AddPacket(p)
		if err != nil {
			t.Fatalf("AddPacket: %v", err)
		}
	}
	if !decoded {
		t.Fatal("expected decoder to reach is_decoded = true")
	}

	seen := map[int]byte{}
	for _, p := range dec.GetDecodedPackets() {
		seen[int(p.ID)] = p.Payload()[0]
	}
	for i := 0; i < k; i++ {
		if seen[i] != byte(i) {
			t.Fatalf("reconstructed packet %d first byte = %d, want %d", i, seen[i], i)
		}
	}
}

func TestEncoderDecoderPartialDelivery(t *testing.T) {
	pool := NewPool(128, 64)
	k, n := 16, 32
	enc := NewEncoder(k, n)

	payloads := make([][]byte, k)
	for i := 0; i < k; i++ {
		payloads[i] = make([]byte, 64)
		payloads[i][0] = byte(i % 255)
		enc.AddSourcePacket(NewSystematicPacket(uint64(i), payloads[i], pool))
	}

	repairCount := n - k
	repairs := make([]*Packet, repairCount)
	for j := range repairs {
		repairs[j] = enc.GenerateRepairPacket(j, pool)
	}

	dec := NewDecoder(k, pool)
	for i := 0; i < k; i += 2 {
		if _, err := dec.AddPacket(NewSystematicPacket(uint64(i), payloads[i], pool)); err != nil {
			t.Fatalf("AddPacket systematic %d: %v", i, err)
		}
	}
	twoThirds := (repairCount * 2) / 3
	var decoded bool
	for j := 0; j < twoThirds; j++ {
		var err error
		decoded, err = dec.AddPacket(repairs[j])
		if err != nil {
			t.Fatalf("AddPacket repair %d: %v", j, err)
		}
	}
	if !decoded {
		t.Fatal("expected is_decoded = true after every-other source plus 2/3 repairs")
	}

	for _, p := range dec.GetDecodedPackets() {
		want := byte(int(p.ID) % 255)
		if got := p.Payload()[0]; got != want {
			t.Fatalf("packet %d first byte = %d, want %d", p.ID, got, want)
		}
	}
}

func TestEncoderDecoderWiedemannPath(t *testing.T) {
	pool := NewPool(550, 32)
	k, n := 260, 264
	enc := NewEncoder(k, n)

	payloads := make([][]byte, k)
	for i := 0; i < k; i++ {
		payloads[i] = make([]byte, 32)
		payloads[i][0] = byte(i % 256)
		enc.AddSourcePacket(NewSystematicPacket(uint64(i), payloads[i], pool))
	}

	repairCount := n - k
	repairs := make([]*Packet, repairCount)
	for j := range repairs {
		repairs[j] = enc.GenerateRepairPacket(j, pool)
	}

	dec := NewDecoder(k, pool)
	var decoded bool
	for i := 0; i < k; i++ {
		if i == 5 {
			continue // drop source #5, recovered via repair
		}
		var err error
		decoded, err = dec.AddPacket(NewSystematicPacket(uint64(i), payloads[i], pool))
		if err != nil {
			t.Fatalf("AddPacket systematic %d: %v", i, err)
		}
	}
	for _, r := range repairs {
		var err error
		decoded, err = dec.AddPacket(r)
		if err != nil {
			t.Fatalf("AddPacket repair: %v", err)
		}
	}
	if !decoded {
		t.Fatal("expected Wiedemann path to reach is_decoded = true")
	}

	for _, p := range dec.GetDecodedPackets() {
		if int(p.ID) == 5 {
			want := byte(5 % 256)
			if got := p.Payload()[0]; got != want {
				t.Fatalf("recovered packet 5 first byte = %d, want %d", got, want)
			}
		}
	}
}

func TestDecoderIdempotentOnDuplicate(t *testing.T) {
	pool := NewPool(16, 32)
	k := 4
	dec := NewDecoder(k, pool)

	payload := make([]byte, 32)
	payload[0] = 1
	first, err := dec.AddPacket(NewSystematicPacket(0, payload, pool))
	if err != nil {
		t.Fatalf("AddPacket: %v", err)
	}
	if first {
		t.Fatal("should not be decoded with a single source out of 4")
	}

	before := dec.matrix.numRows()
	if _, err := dec.AddPacket(NewSystematicPacket(0, payload, pool)); err != nil {
		t.Fatalf("AddPacket duplicate: %v", err)
	}
	if dec.matrix.numRows() != before {
		t.Fatal("duplicate systematic packet should not append a new row")
	}
}
