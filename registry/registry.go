// Package registry holds the process-wide operator matrix: every
// operator tag with its arity, value kind, semantic family, and backend
// support. The table is built once at init and read-only afterward.
package registry

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// Backend is a bitmask of evaluator backends an operator supports.
type Backend uint8

const (
	Memory Backend = 1 << iota
	SQL
)

func (b Backend) String() string {
	switch b {
	case Memory:
		return "memory"
	case SQL:
		return "sql"
	case Memory | SQL:
		return "memory|sql"
	}
	return "none"
}

// Arity distinguishes valueless operators from value-taking ones.
type Arity int

const (
	Unary  Arity = iota // no value permitted
	Binary              // exactly one value
)

// ValueKind is the value shape an operator expects.
type ValueKind int

const (
	KindNone     ValueKind = iota // unary, value forbidden
	KindScalar                    // null, bool, number, string, timestamp
	KindList                      // list of scalars
	KindRange                     // inclusive (lo, hi) pair
	KindGeometry                  // GeoJSON geometry
	KindBBox                      // (minX, minY, maxX, maxY)
	KindDWithin                   // (geometry, meters) pair
	KindPattern                   // string pattern (wildcards or regex)
	KindToken                     // bare token string (keys, jsonpath, tsquery)
	KindJSON                      // arbitrary JSON document
)

var valueKindNames = map[ValueKind]string{
	KindNone:     "none",
	KindScalar:   "scalar",
	KindList:     "list",
	KindRange:    "range-pair",
	KindGeometry: "geometry",
	KindBBox:     "bbox",
	KindDWithin:  "dwithin-pair",
	KindPattern:  "pattern",
	KindToken:    "token-string",
	KindJSON:     "json",
}

func (k ValueKind) String() string { return valueKindNames[k] }

// Operator is one registry entry.
type Operator struct {
	Tag      string
	Family   string
	Arity    Arity
	Value    ValueKind
	Backends Backend
}

// Supports reports whether the operator is admissible on the backend.
func (o Operator) Supports(b Backend) bool { return o.Backends&b != 0 }

const (
	FamilyComparison = "comparison"
	FamilySet        = "set"
	FamilyString     = "string"
	FamilyNull       = "null"
	FamilyJSONB      = "jsonb"
	FamilyGeometry   = "geometry"
	FamilyFullText   = "fulltext"
)

var table = []Operator{
	// Comparison
	{Tag: "=", Family: FamilyComparison, Arity: Binary, Value: KindScalar, Backends: Memory | SQL},
	{Tag: "!=", Family: FamilyComparison, Arity: Binary, Value: KindScalar, Backends: Memory | SQL},
	{Tag: ">", Family: FamilyComparison, Arity: Binary, Value: KindScalar, Backends: Memory | SQL},
	{Tag: "<", Family: FamilyComparison, Arity: Binary, Value: KindScalar, Backends: Memory | SQL},
	{Tag: ">=", Family: FamilyComparison, Arity: Binary, Value: KindScalar, Backends: Memory | SQL},
	{Tag: "<=", Family: FamilyComparison, Arity: Binary, Value: KindScalar, Backends: Memory | SQL},

	// Set
	{Tag: "in", Family: FamilySet, Arity: Binary, Value: KindList, Backends: Memory | SQL},
	{Tag: "not_in", Family: FamilySet, Arity: Binary, Value: KindList, Backends: Memory | SQL},
	{Tag: "all", Family: FamilySet, Arity: Binary, Value: KindList, Backends: Memory | SQL},
	{Tag: "between", Family: FamilySet, Arity: Binary, Value: KindRange, Backends: Memory | SQL},
	{Tag: "not_between", Family: FamilySet, Arity: Binary, Value: KindRange, Backends: Memory | SQL},

	// String
	{Tag: "like", Family: FamilyString, Arity: Binary, Value: KindPattern, Backends: Memory | SQL},
	{Tag: "not_like", Family: FamilyString, Arity: Binary, Value: KindPattern, Backends: Memory | SQL},
	{Tag: "ilike", Family: FamilyString, Arity: Binary, Value: KindPattern, Backends: Memory | SQL},
	{Tag: "contains", Family: FamilyString, Arity: Binary, Value: KindScalar, Backends: Memory | SQL},
	{Tag: "icontains", Family: FamilyString, Arity: Binary, Value: KindScalar, Backends: Memory | SQL},
	{Tag: "startswith", Family: FamilyString, Arity: Binary, Value: KindScalar, Backends: Memory | SQL},
	{Tag: "istartswith", Family: FamilyString, Arity: Binary, Value: KindScalar, Backends: Memory | SQL},
	{Tag: "endswith", Family: FamilyString, Arity: Binary, Value: KindScalar, Backends: Memory | SQL},
	{Tag: "iendswith", Family: FamilyString, Arity: Binary, Value: KindScalar, Backends: Memory | SQL},
	{Tag: "regex", Family: FamilyString, Arity: Binary, Value: KindPattern, Backends: Memory | SQL},
	{Tag: "iregex", Family: FamilyString, Arity: Binary, Value: KindPattern, Backends: Memory | SQL},

	// Null / empty
	{Tag: "is_null", Family: FamilyNull, Arity: Unary, Value: KindNone, Backends: Memory | SQL},
	{Tag: "is_not_null", Family: FamilyNull, Arity: Unary, Value: KindNone, Backends: Memory | SQL},
	{Tag: "is_empty", Family: FamilyNull, Arity: Unary, Value: KindNone, Backends: Memory | SQL},
	{Tag: "is_not_empty", Family: FamilyNull, Arity: Unary, Value: KindNone, Backends: Memory | SQL},

	// JSONB (SQL only)
	{Tag: "jsonb_contains", Family: FamilyJSONB, Arity: Binary, Value: KindJSON, Backends: SQL},
	{Tag: "jsonb_contained_by", Family: FamilyJSONB, Arity: Binary, Value: KindJSON, Backends: SQL},
	{Tag: "jsonb_has_key", Family: FamilyJSONB, Arity: Binary, Value: KindToken, Backends: SQL},
	{Tag: "jsonb_has_any_keys", Family: FamilyJSONB, Arity: Binary, Value: KindList, Backends: SQL},
	{Tag: "jsonb_has_all_keys", Family: FamilyJSONB, Arity: Binary, Value: KindList, Backends: SQL},
	{Tag: "jsonb_path_exists", Family: FamilyJSONB, Arity: Binary, Value: KindToken, Backends: SQL},

	// Geometry (SQL only)
	{Tag: "intersects", Family: FamilyGeometry, Arity: Binary, Value: KindGeometry, Backends: SQL},
	{Tag: "within", Family: FamilyGeometry, Arity: Binary, Value: KindGeometry, Backends: SQL},
	{Tag: "contains_geom", Family: FamilyGeometry, Arity: Binary, Value: KindGeometry, Backends: SQL},
	{Tag: "touches", Family: FamilyGeometry, Arity: Binary, Value: KindGeometry, Backends: SQL},
	{Tag: "crosses", Family: FamilyGeometry, Arity: Binary, Value: KindGeometry, Backends: SQL},
	{Tag: "overlaps", Family: FamilyGeometry, Arity: Binary, Value: KindGeometry, Backends: SQL},
	{Tag: "disjoint", Family: FamilyGeometry, Arity: Binary, Value: KindGeometry, Backends: SQL},
	{Tag: "geom_equals", Family: FamilyGeometry, Arity: Binary, Value: KindGeometry, Backends: SQL},
	{Tag: "distance_lt", Family: FamilyGeometry, Arity: Binary, Value: KindDWithin, Backends: SQL},
	{Tag: "dwithin", Family: FamilyGeometry, Arity: Binary, Value: KindDWithin, Backends: SQL},
	{Tag: "bbox_intersects", Family: FamilyGeometry, Arity: Binary, Value: KindBBox, Backends: SQL},

	// Full-text (SQL only)
	{Tag: "fts", Family: FamilyFullText, Arity: Binary, Value: KindToken, Backends: SQL},
	{Tag: "fts_phrase", Family: FamilyFullText, Arity: Binary, Value: KindToken, Backends: SQL},
}

var byTag = func() map[string]Operator {
	m := make(map[string]Operator, len(table))
	for _, op := range table {
		m[op.Tag] = op
	}
	return m
}()

// Lookup fetches an operator entry by tag.
func Lookup(tag string) (Operator, bool) {
	op, ok := byTag[tag]
	return op, ok
}

// Supported reports whether the tag exists and supports the backend.
func Supported(tag string, b Backend) bool {
	op, ok := byTag[tag]
	return ok && op.Supports(b)
}

// All returns a copy of the full operator table.
func All() []Operator {
	out := make([]Operator, len(table))
	copy(out, table)
	return out
}

// Tags returns the sorted tags admissible on the backend.
func Tags(b Backend) []string {
	var out []string
	for _, op := range table {
		if op.Supports(b) {
			out = append(out, op.Tag)
		}
	}
	sort.Strings(out)
	return out
}

// Symbolic tags have wordy synonyms that edit distance cannot reach.
var synonyms = map[string]string{
	"equals":     "=",
	"eq":         "=",
	"not_equals": "!=",
	"ne":         "!=",
	"gt":         ">",
	"lt":         "<",
	"gte":        ">=",
	"lte":        "<=",
}

// Suggest finds the closest known tag within edit distance 2, for
// attaching a hint to UnknownOperator errors. Returns "" when nothing
// is close enough.
func Suggest(tag string) string {
	if hint, ok := synonyms[tag]; ok {
		return hint
	}
	best, bestDist := "", 3
	for _, op := range table {
		d := levenshtein.ComputeDistance(tag, op.Tag)
		if d < bestDist || (d == bestDist && best != "" && op.Tag < best) {
			best, bestDist = op.Tag, d
		}
	}
	if bestDist > 2 {
		return ""
	}
	return best
}
