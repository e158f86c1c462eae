package qrtoken

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Wire formats rendered into QR images. These must stay bit-exact: codes are
// printed and scanned long after they were generated.
//
//	CHECKIN|{locationId}|{signature}|{version}
//	SUBEVENT|{subEventId}|{version}
//
// The sub-event payload deliberately carries no signature: sub-event scans
// are gated only by existence and version match, a lower-assurance mode
// accepted because the sub-event payoff is small.
const (
	locationTag = "CHECKIN"
	subEventTag = "SUBEVENT"
	sigHexLen   = 64 // hex-encoded SHA-256
)

// ErrMalformedPayload is returned when a scanned string is not a valid QR
// payload.
var ErrMalformedPayload = errors.New("malformed qr payload")

// LocationPayload is the decoded form of a location check-in QR code.
type LocationPayload struct {
	LocationID int
	Signature  string
	Version    int
}

// SubEventPayload is the decoded form of a sub-event QR code.
type SubEventPayload struct {
	SubEventID string
	Version    int
}

// EncodeLocation renders a location payload in wire format.
func EncodeLocation(p LocationPayload) string {
	return fmt.Sprintf("%s|%d|%s|%d", locationTag, p.LocationID, p.Signature, p.Version)
}

// EncodeSubEvent renders a sub-event payload in wire format.
func EncodeSubEvent(p SubEventPayload) string {
	return fmt.Sprintf("%s|%s|%d", subEventTag, p.SubEventID, p.Version)
}

// DecodeLocation parses a location check-in payload, validating arity, the
// numeric fields and the signature shape.
func DecodeLocation(s string) (LocationPayload, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 4 || parts[0] != locationTag {
		return LocationPayload{}, ErrMalformedPayload
	}

	locationID, err := strconv.Atoi(parts[1])
	if err != nil || locationID <= 0 {
		return LocationPayload{}, ErrMalformedPayload
	}
	sig := parts[2]
	if len(sig) != sigHexLen || !isHex(sig) {
		return LocationPayload{}, ErrMalformedPayload
	}
	version, err := strconv.Atoi(parts[3])
	if err != nil || version < 1 {
		return LocationPayload{}, ErrMalformedPayload
	}

	return LocationPayload{LocationID: locationID, Signature: sig, Version: version}, nil
}

// DecodeSubEvent parses a sub-event payload.
func DecodeSubEvent(s string) (SubEventPayload, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 3 || parts[0] != subEventTag || parts[1] == "" {
		return SubEventPayload{}, ErrMalformedPayload
	}

	version, err := strconv.Atoi(parts[2])
	if err != nil || version < 1 {
		return SubEventPayload{}, ErrMalformedPayload
	}

	return SubEventPayload{SubEventID: parts[1], Version: version}, nil
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
