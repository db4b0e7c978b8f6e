package index

import "strings"

// Filter is a closed predicate algebra over metadata fields: equality and
// substring-containment leaves composed with AND. Backends compile it to
// their native filter language; nothing outside this algebra is expressible,
// which keeps the backend contract statically checkable.
type Filter struct {
	Op    FilterOp
	Field string
	Value string
	Sub   []*Filter
}

type FilterOp int

const (
	OpEq FilterOp = iota
	OpContains
	OpAnd
)

// Eq matches documents whose metadata field equals value exactly.
func Eq(field, value string) *Filter {
	return &Filter{Op: OpEq, Field: field, Value: value}
}

// Contains matches documents whose metadata field contains value as a substring.
func Contains(field, value string) *Filter {
	return &Filter{Op: OpContains, Field: field, Value: value}
}

// And matches documents satisfying all sub-filters. And() with no arguments
// matches everything and compiles to no predicate at all.
func And(filters ...*Filter) *Filter {
	return &Filter{Op: OpAnd, Sub: filters}
}

// Leaves returns the filter flattened into its leaf predicates.
func (f *Filter) Leaves() []*Filter {
	if f == nil {
		return nil
	}
	if f.Op != OpAnd {
		return []*Filter{f}
	}
	var leaves []*Filter
	for _, sub := range f.Sub {
		leaves = append(leaves, sub.Leaves()...)
	}
	return leaves
}

// Matches evaluates the filter against a metadata map. Backends without a
// native filter language use it to post-filter results.
func (f *Filter) Matches(metadata map[string]string) bool {
	if f == nil {
		return true
	}
	switch f.Op {
	case OpEq:
		return metadata[f.Field] == f.Value
	case OpContains:
		return strings.Contains(metadata[f.Field], f.Value)
	case OpAnd:
		for _, sub := range f.Sub {
			if !sub.Matches(metadata) {
				return false
			}
		}
		return true
	}
	return false
}
