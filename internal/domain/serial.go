package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	SerialAvailable  = "available"
	SerialRegistered = "registered"
)

var reSerial = regexp.MustCompile(`^[A-Z0-9]+$`)

// NormalizeSerial trims surrounding whitespace and upper-cases the serial.
// It is idempotent.
func NormalizeSerial(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidSerial reports whether an already normalized serial is well formed.
func ValidSerial(s string) bool {
	return reSerial.MatchString(s)
}

// CheckSerial normalizes s and returns a ValidationError naming it when it
// is malformed.
func CheckSerial(s string) (string, error) {
	n := NormalizeSerial(s)
	if !ValidSerial(n) {
		return "", &ValidationError{Field: "serial", Value: n, Message: fmt.Sprintf("Invalid serial: %s", n)}
	}
	return n, nil
}

// NormalizeSerials checks every serial in order and stops at the first
// malformed one. A serial repeated inside the batch is a conflict.
func NormalizeSerials(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		n, err := CheckSerial(s)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[n]; dup {
			return nil, &SerialError{Serial: n, Err: ErrConflict}
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

// ParseSerials decodes the JSON array string sent alongside multipart
// product forms. An empty string means no serials.
func ParseSerials(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var in []string
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, Invalid("serials", "Invalid serials format")
	}
	return NormalizeSerials(in)
}
