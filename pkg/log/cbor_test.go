package log

import (
	"errors"
	"testing"
	"time"
)

func TestEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456789, time.UTC)
	original := Event{
		Timestamp: ts,
		RunID:     "abc12345-def6-7890-abcd-ef1234567890",
		Kind:      KindTick,
		Value:     42,
		Tick:      18,
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.RunID != original.RunID {
		t.Errorf("RunID: got %q, want %q", decoded.RunID, original.RunID)
	}
	if decoded.Kind != original.Kind {
		t.Errorf("Kind: got %v, want %v", decoded.Kind, original.Kind)
	}
	if decoded.Value != original.Value {
		t.Errorf("Value: got %d, want %d", decoded.Value, original.Value)
	}
	if decoded.Tick != original.Tick {
		t.Errorf("Tick: got %d, want %d", decoded.Tick, original.Tick)
	}
}

func TestStopEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp: time.Now(),
		RunID:     "run-1",
		Kind:      KindStop,
		Value:     0,
		Stop: &StopEvent{
			Reason:  "EXPIRED",
			Ticks:   61,
			Elapsed: 61 * time.Second,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Stop == nil {
		t.Fatal("Stop is nil after decode")
	}
	if decoded.Stop.Reason != "EXPIRED" {
		t.Errorf("Stop.Reason: got %q, want %q", decoded.Stop.Reason, "EXPIRED")
	}
	if decoded.Stop.Ticks != 61 {
		t.Errorf("Stop.Ticks: got %d, want 61", decoded.Stop.Ticks)
	}
	if decoded.Stop.Elapsed != 61*time.Second {
		t.Errorf("Stop.Elapsed: got %v, want 61s", decoded.Stop.Elapsed)
	}
	if decoded.Start != nil || decoded.Error != nil {
		t.Error("unexpected payload after decode")
	}
}

func TestZeroValueIsEncoded(t *testing.T) {
	data, err := EncodeEvent(Event{Kind: KindSet, Value: 0})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if decoded.Kind != KindSet || decoded.Value != 0 {
		t.Errorf("decoded = %+v, want Kind=SET Value=0", decoded)
	}
}

func TestDecodeEventInvalidData(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0x00}); err == nil {
		t.Error("DecodeEvent accepted invalid CBOR")
	}
}

func TestUnknownKindRejected(t *testing.T) {
	if _, err := EncodeEvent(Event{Kind: Kind(9)}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("EncodeEvent error = %v, want ErrUnknownKind", err)
	}

	data, err := logEncMode.Marshal(struct {
		Kind uint8 `cbor:"3,keyasint"`
	}{Kind: 9})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeEvent(data); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("DecodeEvent error = %v, want ErrUnknownKind", err)
	}
}
