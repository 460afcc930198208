package checksum

import (
	"fmt"
	"testing"
)

func line(payload string) string {
	return fmt.Sprintf("$%s*%02X", payload, Sum(payload))
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"valid GGA", "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47", true},
		{"valid generated", line("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"), true},
		{"valid AIS bang", "!AIVDM,1,1,,B,177KQJ5000G?tO`K>RA1wUbN0TKH,0*5C", true},
		{"lowercase hex", "$GPGLL,4916.45,N,12311.12,W,225444,A,*1d", true},
		{"wrong checksum", "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*48", false},
		{"no star", "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,", false},
		{"short checksum", "$GPGGA,123519*4", false},
		{"bad hex", "$GPGGA,123519*ZZ", false},
		{"no leading dollar", "GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47", false},
		{"empty", "", false},
		{"trailing whitespace ok", line("GPZDA,160012.71,11,03,2004,-1,00") + "\r\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.raw); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// Flipping any single payload character must break the checksum.
func TestIsValid_SingleCharacterFlip(t *testing.T) {
	raw := line("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")
	if !IsValid(raw) {
		t.Fatalf("baseline sentence should be valid: %q", raw)
	}

	star := len(raw) - 3
	for i := 1; i < star; i++ {
		b := []byte(raw)
		if b[i] == '0' {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
		if IsValid(string(b)) {
			t.Errorf("flip at %d still validates: %q", i, string(b))
		}
	}
}

func TestSum(t *testing.T) {
	// XOR of "ab" is 'a'^'b' = 0x03.
	if got := Sum("ab"); got != 0x03 {
		t.Fatalf("Sum(ab) = %#x, want 0x03", got)
	}
	if got := Sum(""); got != 0 {
		t.Fatalf("Sum empty = %#x, want 0", got)
	}
}
