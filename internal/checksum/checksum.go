// Package checksum validates the integrity of raw NMEA 0183 sentences.
//
// Every sentence carries an XOR checksum of the payload between the
// leading '$' (or '!') and the '*' delimiter, encoded as two hex digits.
// Validation runs before any semantic parsing; a sentence that fails
// here is dropped by the caller.
package checksum

import (
	"fmt"
	"strings"
)

// Sum computes the XOR of all bytes in payload.
func Sum(payload string) byte {
	var ck byte
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return ck
}

// IsValid reports whether raw is a well-formed NMEA sentence with a
// correct checksum. The comparison is case-insensitive, so both "*6a"
// and "*6A" are accepted.
func IsValid(raw string) bool {
	raw = strings.TrimSpace(raw)
	if len(raw) < 2 || (raw[0] != '$' && raw[0] != '!') {
		return false
	}
	star := strings.LastIndexByte(raw, '*')
	if star == -1 {
		return false
	}
	want := strings.TrimSpace(raw[star+1:])
	if len(want) != 2 {
		return false
	}
	got := fmt.Sprintf("%02X", Sum(raw[1:star]))
	return strings.EqualFold(got, want)
}
