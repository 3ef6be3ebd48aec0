package filter

// Test reports whether item satisfies the chain.
//
// And binds tighter than Or: the chain is split on top-level Or members
// into segments, a segment holds when every predicate in it holds, and the
// chain holds when any segment does. An empty chain has no segments and
// matches nothing.
func (f Filter[T]) Test(item T) bool {
	return applyChain(item, f.chain)
}

// Apply returns the items that pass Test, preserving order. The input is
// not modified and the result is never nil.
func (f Filter[T]) Apply(items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if f.Test(item) {
			out = append(out, item)
		}
	}
	return out
}

func applyChain[T any](item T, chain []Member[T]) bool {
	start := 0
	for i, m := range chain {
		if m.kind == MemberConnective && m.op == Or {
			if segmentHolds(item, chain[start:i]) {
				return true
			}
			start = i + 1
		}
	}
	if start < len(chain) {
		return segmentHolds(item, chain[start:])
	}
	return false
}

// segmentHolds is true when every non-connective member passes. A segment
// left empty by adjacent Or members holds vacuously.
func segmentHolds[T any](item T, segment []Member[T]) bool {
	for _, m := range segment {
		if !m.test(item) {
			return false
		}
	}
	return true
}
