// Package qrtoken implements the signed, time-windowed QR check-in tokens.
//
// A token is an HMAC-SHA256 digest over "{subjectId}:{dayStamp}:{version}".
// Because the digest is fully determined by its inputs, verification is pure
// recomputation: no issued-token table is needed, and a code printed on one
// device can be verified by any other holding the same secret. Rotating the
// version number is the only invalidation mechanism.
package qrtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// subEventScope namespaces sub-event digests away from location digests so a
// location signature can never be replayed against a sub-event or vice versa.
const subEventScope = "subevent:"

// windowOffsets is the set of day offsets accepted at verification time.
// Yesterday and tomorrow are included so codes printed near a day boundary,
// or scanned by a device with a skewed clock, still verify.
var windowOffsets = [...]int{-1, 0, 1}

// DayStamp returns the UTC calendar day of t shifted by offsetDays, formatted
// as YYYYMMDD.
func DayStamp(t time.Time, offsetDays int) string {
	return t.UTC().AddDate(0, 0, offsetDays).Format("20060102")
}

// Sign computes the hex digest for a location subject on the given day at the
// given QR version.
func Sign(subjectID, dayStamp, secret string, version int) string {
	return digest(fmt.Sprintf("%s:%s:%d", subjectID, dayStamp, version), secret)
}

// SignSubEvent computes the hex digest for a sub-event subject. Sub-events
// live in their own namespace.
func SignSubEvent(subEventID, dayStamp, secret string, version int) string {
	return digest(fmt.Sprintf("%s%s:%s:%d", subEventScope, subEventID, dayStamp, version), secret)
}

// Verify reports whether sig is the digest for the given location subject,
// day and version.
func Verify(subjectID, dayStamp, sig, secret string, version int) bool {
	return hmac.Equal([]byte(sig), []byte(Sign(subjectID, dayStamp, secret, version)))
}

// VerifyInWindow reports whether sig matches any day in the acceptance window
// around now (yesterday, today, tomorrow in UTC) at the given version.
func VerifyInWindow(subjectID, sig, secret string, version int, now time.Time) bool {
	for _, off := range windowOffsets {
		if Verify(subjectID, DayStamp(now, off), sig, secret, version) {
			return true
		}
	}
	return false
}

func digest(msg, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}
