package manifest

import (
	"fmt"
	"go/types"
	"strconv"
	"strings"

	"github.com/dusk-indust/capform/internal/load"
)

// ParseTypeExpr resolves a Go type expression string against the universe
// scope and the loaded packages in idx. Supported shapes: basic types,
// "error", "any"/"interface{}", "*T", "[]T", "[N]T", "map[K]V", and
// qualified package-level names of the shape "import/path.Name".
// Function and channel types are not supported; a query needing those can
// name a defined type instead.
func ParseTypeExpr(expr string, idx load.TypeIndex) (types.Type, error) {
	t, err := parseType(strings.TrimSpace(expr), idx)
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", expr, err)
	}
	return t, nil
}

func parseType(s string, idx load.TypeIndex) (types.Type, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty type expression")

	case strings.HasPrefix(s, "*"):
		elem, err := parseType(s[1:], idx)
		if err != nil {
			return nil, err
		}
		return types.NewPointer(elem), nil

	case strings.HasPrefix(s, "[]"):
		elem, err := parseType(s[2:], idx)
		if err != nil {
			return nil, err
		}
		return types.NewSlice(elem), nil

	case strings.HasPrefix(s, "map["):
		key, val, err := splitMap(s)
		if err != nil {
			return nil, err
		}
		k, err := parseType(key, idx)
		if err != nil {
			return nil, err
		}
		v, err := parseType(val, idx)
		if err != nil {
			return nil, err
		}
		return types.NewMap(k, v), nil

	case strings.HasPrefix(s, "["):
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, fmt.Errorf("unterminated array length")
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s[1:end]), 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad array length %q", s[1:end])
		}
		elem, err := parseType(s[end+1:], idx)
		if err != nil {
			return nil, err
		}
		return types.NewArray(elem, n), nil

	case s == "any" || s == "interface{}":
		return types.Universe.Lookup("any").Type(), nil

	case s == "error":
		return types.Universe.Lookup("error").Type(), nil

	default:
		if i := strings.LastIndexByte(s, '.'); i >= 0 {
			return idx.LookupNamed(s[:i], s[i+1:])
		}
		if obj := types.Universe.Lookup(s); obj != nil {
			if tn, ok := obj.(*types.TypeName); ok {
				return tn.Type(), nil
			}
		}
		return nil, fmt.Errorf("unknown type %q", s)
	}
}

// splitMap splits "map[K]V" into its key and value expressions, honoring
// nested brackets in the key (e.g. "map[[2]int]string").
func splitMap(s string) (key, val string, err error) {
	rest := s[len("map["):]
	depth := 1
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				if i+1 >= len(rest) {
					return "", "", fmt.Errorf("map type missing value")
				}
				return rest[:i], rest[i+1:], nil
			}
		}
	}
	return "", "", fmt.Errorf("unterminated map key")
}
