package qrtoken

import (
	"errors"
	"strings"
	"testing"
)

func TestLocationPayloadRoundTrip(t *testing.T) {
	sig := Sign("7", "20260828", testSecret, 2)
	in := LocationPayload{LocationID: 7, Signature: sig, Version: 2}

	s := EncodeLocation(in)
	if want := "CHECKIN|7|" + sig + "|2"; s != want {
		t.Fatalf("encoded = %q, want %q", s, want)
	}

	out, err := DecodeLocation(s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestSubEventPayloadRoundTrip(t *testing.T) {
	in := SubEventPayload{SubEventID: "robot-demo", Version: 3}

	s := EncodeSubEvent(in)
	if want := "SUBEVENT|robot-demo|3"; s != want {
		t.Fatalf("encoded = %q, want %q", s, want)
	}

	out, err := DecodeSubEvent(s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestDecodeLocationMalformed(t *testing.T) {
	validSig := strings.Repeat("ab", 32)

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"wrong tag", "SUBEVENT|1|" + validSig + "|1"},
		{"missing field", "CHECKIN|1|" + validSig},
		{"extra field", "CHECKIN|1|" + validSig + "|1|x"},
		{"non-numeric id", "CHECKIN|one|" + validSig + "|1"},
		{"zero id", "CHECKIN|0|" + validSig + "|1"},
		{"short signature", "CHECKIN|1|abc123|1"},
		{"non-hex signature", "CHECKIN|1|" + strings.Repeat("zz", 32) + "|1"},
		{"non-numeric version", "CHECKIN|1|" + validSig + "|v1"},
		{"zero version", "CHECKIN|1|" + validSig + "|0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeLocation(tt.in); !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("DecodeLocation(%q) err = %v, want ErrMalformedPayload", tt.in, err)
			}
		})
	}
}

func TestDecodeSubEventMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"wrong tag", "CHECKIN|robot-demo|1"},
		{"missing version", "SUBEVENT|robot-demo"},
		{"empty id", "SUBEVENT||1"},
		{"non-numeric version", "SUBEVENT|robot-demo|x"},
		{"zero version", "SUBEVENT|robot-demo|0"},
		{"extra field", "SUBEVENT|robot-demo|1|x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeSubEvent(tt.in); !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("DecodeSubEvent(%q) err = %v, want ErrMalformedPayload", tt.in, err)
			}
		})
	}
}
