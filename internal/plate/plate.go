package plate

import (
	"fmt"
	"strings"
)

// Accepted length bounds for a normalized plate. Only length is checked;
// charset and country-specific layouts are intentionally not validated.
const (
	MinLen = 7
	MaxLen = 10
)

// Normalize uppercases a raw plate string and strips surrounding whitespace.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Validate normalizes raw and checks the length bounds. It returns the
// normalized plate so callers persist exactly what was validated.
func Validate(raw string) (string, error) {
	p := Normalize(raw)
	if len(p) < MinLen || len(p) > MaxLen {
		return "", fmt.Errorf("plate %q must be between %d and %d characters, got %d", p, MinLen, MaxLen, len(p))
	}
	return p, nil
}
