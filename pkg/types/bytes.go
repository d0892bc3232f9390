package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrBadSize reports a size string that could not be parsed.
var ErrBadSize = errors.New("types: bad size")

// Bytes is a uint64 wrapper representing a size in bytes.
type Bytes uint64

// ToBytes converts a raw count into Bytes.
func ToBytes(v uint64) Bytes { return Bytes(v) }

// Int returns the size as an int, saturating at the platform maximum.
func (b Bytes) Int() int {
	const maxInt = int(^uint(0) >> 1)
	if uint64(b) > uint64(maxInt) {
		return maxInt
	}
	return int(b)
}

// Humanized returns a human-readable string with automatic unit (B, KB, MB, GB, TB).
func (b Bytes) Humanized() string {
	v := float64(b)
	switch {
	case b >= 1<<40:
		return fmt.Sprintf("%.2f TB", v/(1<<40))
	case b >= 1<<30:
		return fmt.Sprintf("%.2f GB", v/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.2f MB", v/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.2f KB", v/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// ParseBytes parses sizes such as "1024", "64KB", "64KiB", "1.5 MB" or "2g".
// Units are 1024 based; the "i" and trailing "B" are optional.
func ParseBytes(s string) (Bytes, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadSize)
	}

	i := len(in)
	for i > 0 && !isDigit(in[i-1]) {
		i--
	}
	num := strings.TrimSpace(in[:i])
	unit := strings.ToUpper(strings.TrimSpace(in[i:]))
	unit = strings.TrimSuffix(unit, "B")
	unit = strings.TrimSuffix(unit, "I")

	var mul float64
	switch unit {
	case "":
		mul = 1
	case "K":
		mul = 1 << 10
	case "M":
		mul = 1 << 20
	case "G":
		mul = 1 << 30
	case "T":
		mul = 1 << 40
	default:
		return 0, fmt.Errorf("%w: unknown unit in %q", ErrBadSize, s)
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadSize, s)
	}
	return Bytes(v * mul), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// String implements fmt.Stringer and pflag.Value.
func (b Bytes) String() string { return strconv.FormatUint(uint64(b), 10) }

// Set implements pflag.Value.
func (b *Bytes) Set(s string) error {
	v, err := ParseBytes(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Type implements pflag.Value.
func (b *Bytes) Type() string { return "bytes" }

// UnmarshalYAML accepts both plain integers and unit suffixed strings.
func (b *Bytes) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected a scalar", ErrBadSize, node.Line)
	}
	return b.Set(node.Value)
}

// MarshalYAML writes the plain byte count.
func (b Bytes) MarshalYAML() (any, error) { return uint64(b), nil }
