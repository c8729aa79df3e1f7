package form

import "go/types"

// MatchAtArity reports whether sig matches f with exactly n trailing
// parameters. The leading parameter prefix and the results must be
// types.Identical to the form's; the n trailing parameter types are
// unconstrained. A variadic method matches only with its final slice
// parameter counted as one trailing parameter.
func MatchAtArity(sig *types.Signature, f Form, n int) bool {
	if sig == nil || n < 0 {
		return false
	}
	params := sig.Params()
	if params.Len() != len(f.Leading)+n {
		return false
	}
	for i, want := range f.Leading {
		if want == nil || !types.Identical(params.At(i).Type(), want) {
			return false
		}
	}
	return tupleIdentical(sig.Results(), f.Results)
}

// tupleIdentical reports whether got holds exactly the types in want, in order.
func tupleIdentical(got *types.Tuple, want []types.Type) bool {
	if got.Len() != len(want) {
		return false
	}
	for i, w := range want {
		if w == nil || !types.Identical(got.At(i).Type(), w) {
			return false
		}
	}
	return true
}

// lookupMethod resolves the method named name on typ. The lookup is
// addressable, so pointer-receiver methods are found for value types.
// It returns nil when typ has no such member, when the name resolves to a
// struct field, or when the selection is ambiguous through embedding at
// equal depth — callers treat all three as the ordinary negative outcome.
// Unexported names are never matched across packages.
func lookupMethod(typ types.Type, name string) *types.Func {
	obj, _, _ := types.LookupFieldOrMethod(typ, true, nil, name)
	fn, ok := obj.(*types.Func)
	if !ok {
		return nil
	}
	return fn
}
