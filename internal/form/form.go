// Package form implements method-form capability detection over go/types.
//
// A Form describes a family of method signatures: a fixed prefix of leading
// parameter types, fixed result types, and an open-ended run of trailing
// parameters whose types are left unspecified. HasMethodForm answers whether
// a candidate type provides a method of a given name matching the form at
// some trailing arity in [0, MaxTrailingArgs], without the type declaring any
// interface or marker. The answer is a plain boolean: a type without the
// method, with the wrong leading parameters, or with an ambiguous member is
// reported as a normal negative, never as an analysis failure.
package form

import (
	"fmt"
	"go/types"
	"strings"
)

// MaxTrailingArgs is the upper bound on the number of trailing parameters
// probed by HasMethodForm. The per-arity probes and the scan share this one
// constant; raising it is a source change, not a per-query option.
const MaxTrailingArgs = 7

// Form describes a method-signature family. Leading holds the fixed leading
// parameter types in order; Results holds the fixed result types. Trailing
// parameter types are not part of the form — they are deduced from the
// candidate method during matching.
type Form struct {
	Leading []types.Type
	Results []types.Type
}

// Validate rejects malformed forms. A nil type entry cannot participate in
// identity comparison and indicates a construction bug in the caller, which
// is surfaced as an error rather than folded into a negative match.
func (f Form) Validate() error {
	for i, t := range f.Leading {
		if t == nil {
			return fmt.Errorf("form: leading parameter %d is nil", i)
		}
	}
	for i, t := range f.Results {
		if t == nil {
			return fmt.Errorf("form: result %d is nil", i)
		}
	}
	return nil
}

// String renders the form for diagnostics and reports,
// e.g. "([]float64, float64, ...) ()".
func (f Form) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for _, t := range f.Leading {
		sb.WriteString(types.TypeString(t, nil))
		sb.WriteString(", ")
	}
	sb.WriteString("...) (")
	for i, t := range f.Results {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(types.TypeString(t, nil))
	}
	sb.WriteString(")")
	return sb.String()
}

// Exact is a fully specified method signature for HasExactMethod: all
// parameter types, all result types, and whether the final parameter is
// variadic. Unlike Form, nothing is deduced.
type Exact struct {
	Params   []types.Type
	Results  []types.Type
	Variadic bool
}

// String renders the signature for diagnostics and reports,
// e.g. "(int, ...float64) (error)".
func (e Exact) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, t := range e.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if e.Variadic && i == len(e.Params)-1 {
			sb.WriteString("...")
			if sl, ok := t.(*types.Slice); ok {
				sb.WriteString(types.TypeString(sl.Elem(), nil))
				continue
			}
		}
		sb.WriteString(types.TypeString(t, nil))
	}
	sb.WriteString(") (")
	for i, t := range e.Results {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(types.TypeString(t, nil))
	}
	sb.WriteString(")")
	return sb.String()
}

// Validate rejects nil type entries, mirroring Form.Validate.
func (e Exact) Validate() error {
	for i, t := range e.Params {
		if t == nil {
			return fmt.Errorf("form: exact parameter %d is nil", i)
		}
	}
	for i, t := range e.Results {
		if t == nil {
			return fmt.Errorf("form: exact result %d is nil", i)
		}
	}
	if e.Variadic && len(e.Params) == 0 {
		return fmt.Errorf("form: variadic signature needs at least one parameter")
	}
	return nil
}
