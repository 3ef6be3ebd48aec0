package queryir

import (
	"fmt"

	"github.com/roach88/rqlstore/internal/filter"
)

// Build converts a group into a filter. Custom leaves are compiled into
// expression predicates.
func Build[T any](g Group, opts ...filter.Option[T]) (filter.Filter[T], error) {
	entries, err := Entries(g)
	if err != nil {
		return filter.Filter[T]{}, err
	}
	return filter.FromEntries[T](entries, opts...)
}

// Entries converts a group into a descriptor array.
func Entries(g Group) (filter.DescriptorArray, error) {
	entries := make(filter.DescriptorArray, 0, len(g.Nodes))
	for i, n := range g.Nodes {
		switch node := n.(type) {
		case Leaf:
			d, err := descriptor(node)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			entries = append(entries, d)
		case Connective:
			entries = append(entries, node.Op)
		case Group:
			sub, err := Entries(node)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			entries = append(entries, sub)
		default:
			return nil, fmt.Errorf("node %d: unsupported node %T", i, n)
		}
	}
	return entries, nil
}

func descriptor(leaf Leaf) (filter.Descriptor, error) {
	d := filter.Descriptor{FilterType: leaf.Type, Path: leaf.Path, Value: leaf.Value}
	if leaf.Type != filter.Custom {
		return d, nil
	}

	program, err := compileExpr(leaf.Expr)
	if err != nil {
		return filter.Descriptor{}, fmt.Errorf("custom expr %q: %w", leaf.Expr, err)
	}
	d.Value = exprPredicate(program)
	return d, nil
}
