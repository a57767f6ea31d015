package model

import (
	"fmt"
	"strings"
)

// BackendKind selects the backend that performs backward induction.
type BackendKind int

const (
	BackendCompiled BackendKind = iota
	BackendInterpreted
)

// String returns the configuration name of the backend kind.
func (k BackendKind) String() string {
	switch k {
	case BackendCompiled:
		return "COMPILED"
	case BackendInterpreted:
		return "INTERPRETED"
	default:
		return "unknown"
	}
}

// Valid reports whether k names a known backend.
func (k BackendKind) Valid() bool {
	return k == BackendCompiled || k == BackendInterpreted
}

// ParseBackendKind converts a configuration name, case-insensitively.
func ParseBackendKind(s string) (BackendKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COMPILED":
		return BackendCompiled, nil
	case "INTERPRETED":
		return BackendInterpreted, nil
	}
	return 0, fmt.Errorf("unknown backend kind %q", s)
}

func (k BackendKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown backend kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *BackendKind) UnmarshalText(b []byte) error {
	v, err := ParseBackendKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
