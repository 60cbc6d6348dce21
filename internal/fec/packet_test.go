package fec

import (
	"bytes"
	"testing"
)

func TestSystematicPacketRoundTrip(t *testing.T) {
	pool := NewPool(8, 1500)
	payload := bytes.Repeat([]byte{0x42}, 100)

	pkt := NewSystematicPacket(7, payload, pool)
	buf := make([]byte, pkt.requiredWireLen())
	n, err := pkt.Serialize(buf)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	parsed, err := ParsePacket(7, buf[:n], pool)
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if !parsed.IsSystematic {
		t.Fatal("expected systematic packet")
	}
	if !bytes.Equal(parsed.Payload(), payload) {
		t.Fatalf("payload mismatch: got %v want %v", parsed.Payload(), payload)
	}
}

func TestRepairPacketRoundTrip(t *testing.T) {
	pool := NewPool(8, 1500)
	payload := bytes.Repeat([]byte{0x7}, 50)
	coeffs := []byte{1, 2, 3, 4}

	coeffBlock := pool.Alloc()
	copy(coeffBlock, coeffs)

	data := pool.Alloc()
	copy(data, payload)

	pkt := &Packet{
		ID:           3,
		Data:         data,
		Len:          len(payload),
		IsSystematic: false,
		Coefficients: coeffBlock,
		CoeffLen:     len(coeffs),
		pool:         pool,
	}

	buf := make([]byte, pkt.requiredWireLen())
	n, err := pkt.Serialize(buf)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	parsed, err := ParsePacket(3, buf[:n], pool)
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if parsed.IsSystematic {
		t.Fatal("expected repair packet")
	}
	if !bytes.Equal(parsed.Coefficients[:parsed.CoeffLen], coeffs) {
		t.Fatalf("coefficients mismatch: got %v want %v", parsed.Coefficients[:parsed.CoeffLen], coeffs)
	}
	if !bytes.Equal(parsed.Payload(), payload) {
		t.Fatalf("payload mismatch: got %v want %v", parsed.Payload(), payload)
	}
}

func TestParsePacketRejectsShortBuffer(t *testing.T) {
	pool := NewPool(2, 1500)
	if _, err := ParsePacket(1, nil, pool); err != ErrBufferTooShort {
		t.Fatalf("expected ErrBufferTooShort, got %v", err)
	}
	if _, err := ParsePacket(1, []byte{1}, pool); err != nil {
		t.Fatalf("systematic with empty payload should parse, got %v", err)
	}
	if _, err := ParsePacket(1, []byte{0x02}, pool); err != ErrBufferTooShort {
		t.Fatalf("expected ErrBufferTooShort for truncated repair header, got %v", err)
	}
}
