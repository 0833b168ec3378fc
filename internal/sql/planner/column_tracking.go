package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/quantaplan/internal/catalog"
	"github.com/dshills/quantaplan/internal/sql/expression"
)

// ColumnOIDSet is an unordered set of column identifiers. Iteration order
// is unspecified; use Sorted when a stable order is needed.
type ColumnOIDSet struct {
	oids map[catalog.ColumnOID]struct{}
}

// NewColumnOIDSet creates a set holding the given identifiers.
func NewColumnOIDSet(oids ...catalog.ColumnOID) *ColumnOIDSet {
	cs := &ColumnOIDSet{oids: make(map[catalog.ColumnOID]struct{}, len(oids))}
	for _, oid := range oids {
		cs.Add(oid)
	}
	return cs
}

// Add adds a column to the set
func (cs *ColumnOIDSet) Add(oid catalog.ColumnOID) {
	cs.oids[oid] = struct{}{}
}

// Contains checks if a column is in the set
func (cs *ColumnOIDSet) Contains(oid catalog.ColumnOID) bool {
	_, ok := cs.oids[oid]
	return ok
}

// Len returns the number of columns in the set
func (cs *ColumnOIDSet) Len() int {
	return len(cs.oids)
}

// IsEmpty returns true if the set has no columns
func (cs *ColumnOIDSet) IsEmpty() bool {
	return len(cs.oids) == 0
}

// Equal reports whether both sets hold the same identifiers.
func (cs *ColumnOIDSet) Equal(other *ColumnOIDSet) bool {
	if cs.Len() != other.Len() {
		return false
	}
	for oid := range cs.oids {
		if !other.Contains(oid) {
			return false
		}
	}
	return true
}

// Each calls fn for every identifier in unspecified order.
func (cs *ColumnOIDSet) Each(fn func(catalog.ColumnOID)) {
	for oid := range cs.oids {
		fn(oid)
	}
}

// Sorted returns the identifiers in ascending order.
func (cs *ColumnOIDSet) Sorted() []catalog.ColumnOID {
	result := make([]catalog.ColumnOID, 0, len(cs.oids))
	for oid := range cs.oids {
		result = append(result, oid)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func (cs *ColumnOIDSet) String() string {
	parts := make([]string, 0, len(cs.oids))
	for _, oid := range cs.Sorted() {
		parts = append(parts, fmt.Sprintf("%d", uint32(oid)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// collectColumnOIDs records every COLUMN_VALUE reachable from root. Column
// values are leaves for this purpose: their children, if any, are not
// searched.
func collectColumnOIDs(set *ColumnOIDSet, root expression.Ref) {
	expression.Walk(root, func(e expression.Ref) bool {
		if e.Type() == expression.ColumnValue {
			set.Add(e.ColumnOID())
			return false
		}
		return true
	})
}
