package dialect

import (
	"encoding"
	"fmt"
	"strings"
)

// Kind selects the compiler family whose diagnostic text is being parsed.
type Kind uint8

const (
	Unknown   Kind = iota
	MSVC           // Visual C++: warning first, backtrace after it
	GCC            // gcc >= 4.3: backtrace first, warning after it
	GCCLegacy      // gcc < 4.3 "division by zero" shape, otherwise like GCC

	kindCount
)

var (
	_ encoding.TextUnmarshaler = (*Kind)(nil)
	_ encoding.TextMarshaler   = Kind(0)
)

func (k Kind) String() string {
	switch k {
	case MSVC:
		return "msvc"
	case GCC:
		return "gcc"
	case GCCLegacy:
		return "gcc-legacy"
	default:
		return "unknown"
	}
}

func (k Kind) GoString() string {
	return fmt.Sprintf("dialect.Kind(%s)", k.String())
}

// Kinds lists every concrete dialect in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := MSVC; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind converts a CLI/config spelling. "auto" and "" map to Unknown,
// which callers treat as "detect from the log".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Unknown, nil
	case "msvc", "cl", "vc":
		return MSVC, nil
	case "gcc", "g++":
		return GCC, nil
	case "gcc-legacy", "gcc42", "gcc-old":
		return GCCLegacy, nil
	default:
		return Unknown, fmt.Errorf("unknown compiler %q (expected msvc|gcc|gcc-legacy|auto)", s)
	}
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k Kind) MarshalText() ([]byte, error) {
	if k == Unknown {
		return []byte("auto"), nil
	}
	return []byte(k.String()), nil
}
