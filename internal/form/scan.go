package form

import "go/types"

// HasMethodForm reports whether typ has a method named method whose
// signature matches f at some trailing arity in [0, MaxTrailingArgs].
// Arities are probed in strictly increasing order starting at 0 and the scan
// stops at the first match, so the answer never distinguishes which arity
// matched. Absence of the method at every probed arity is the defined false
// outcome, not an error.
func HasMethodForm(typ types.Type, method string, f Form) bool {
	return hasMethodFormWithin(typ, method, f, MaxTrailingArgs)
}

// hasMethodFormWithin is HasMethodForm with an explicit arity ceiling.
// Raising the ceiling can only turn a negative answer positive: every arity
// probed under the lower ceiling is probed under the higher one as well.
func hasMethodFormWithin(typ types.Type, method string, f Form, maxArity int) bool {
	fn := lookupMethod(typ, method)
	if fn == nil {
		return false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok {
		return false
	}
	for n := 0; n <= maxArity; n++ {
		if MatchAtArity(sig, f, n) {
			return true
		}
	}
	return false
}

// HasExactMethod reports whether typ has a method named method whose
// signature matches want exactly, including the variadic flag. No trailing
// parameters are deduced; callers that already know the complete signature
// use this instead of the arity scan.
func HasExactMethod(typ types.Type, method string, want Exact) bool {
	fn := lookupMethod(typ, method)
	if fn == nil {
		return false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok {
		return false
	}
	if sig.Variadic() != want.Variadic {
		return false
	}
	params := sig.Params()
	if params.Len() != len(want.Params) {
		return false
	}
	for i, w := range want.Params {
		if w == nil || !types.Identical(params.At(i).Type(), w) {
			return false
		}
	}
	return tupleIdentical(sig.Results(), want.Results)
}
