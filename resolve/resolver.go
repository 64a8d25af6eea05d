// Package resolve turns dotted field paths into backend-specific
// accessors: a chain of joined relations ending in a column reference
// for the SQL backend, or a nested-attribute walk for the memory
// backend. It owns the alias policy and the hook protocol.
package resolve

import (
	"context"
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/oxhq/searchq/core"
)

// JoinKind is the SQL join flavor of one step.
type JoinKind string

const (
	JoinInner JoinKind = "INNER"
	JoinLeft  JoinKind = "LEFT"
)

// Relation describes one named relation of a model: where it points and
// how to join it.
type Relation struct {
	Name         string
	TargetModel  string
	TargetTable  string
	SelfRef      bool
	Kind         JoinKind
	ParentColumn string // join predicate, parent side
	ChildColumn  string // join predicate, target side
}

// Schema is the introspection contract the resolver works against.
// Columns maps attribute names to database column names.
type Schema interface {
	Relations(model string) (map[string]Relation, error)
	Columns(model string) (map[string]string, error)
	Table(model string) (string, error)
}

// JoinStep is one aliased relation attachment in a join plan.
type JoinStep struct {
	Relation     string
	Table        string
	Alias        string
	ParentAlias  string
	Kind         JoinKind
	ParentColumn string
	ChildColumn  string
}

// ColumnRef is the terminal (alias, column) pair of a resolved path.
type ColumnRef struct {
	Alias  string
	Column string
}

// JoinPlan is the ordered list of join steps shared by every condition
// of one translation. Identical non-self-referential path prefixes
// reuse their alias; self-referential chains get a fresh alias per
// traversal occurrence.
type JoinPlan struct {
	Root      string
	RootTable string
	Steps     []JoinStep

	aliases  map[string]string // path prefix -> alias
	counters map[string]int    // alias base -> allocations
}

// NewJoinPlan creates an empty plan rooted at the given model/table.
func NewJoinPlan(rootModel, rootTable string) *JoinPlan {
	return &JoinPlan{
		Root:      rootModel,
		RootTable: rootTable,
		aliases:   make(map[string]string),
		counters:  make(map[string]int),
	}
}

// Attach appends a join for the relation reached via prefix, reusing
// the memoized alias unless the chain is self-referential.
func (p *JoinPlan) Attach(prefix string, parentAlias string, rel Relation, depth int, selfRef bool) string {
	if !selfRef {
		if alias, ok := p.aliases[prefix]; ok {
			return alias
		}
	}
	alias := p.allocAlias(rel.Name, depth)
	if !selfRef {
		p.aliases[prefix] = alias
	}
	p.Steps = append(p.Steps, JoinStep{
		Relation:     rel.Name,
		Table:        rel.TargetTable,
		Alias:        alias,
		ParentAlias:  parentAlias,
		Kind:         rel.Kind,
		ParentColumn: rel.ParentColumn,
		ChildColumn:  rel.ChildColumn,
	})
	return alias
}

// Append adds hook-produced steps verbatim.
func (p *JoinPlan) Append(steps ...JoinStep) {
	p.Steps = append(p.Steps, steps...)
}

func (p *JoinPlan) allocAlias(relation string, depth int) string {
	base := fmt.Sprintf("%s_%d", relation, depth)
	n := p.counters[base]
	p.counters[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, n)
}

// Resolved is the outcome of resolving one path: either a column
// reference into the join plan, or a hook-supplied predicate fragment
// with its bound parameters.
type Resolved struct {
	Column   *ColumnRef
	Fragment string
	Params   []any
}

// Resolver resolves dotted paths against a schema, accumulating one
// shared JoinPlan across calls. It is per-translation state.
type Resolver struct {
	schema Schema
	plan   *JoinPlan
	hooks  []Hook
}

// NewResolver creates a resolver rooted at rootModel.
func NewResolver(schema Schema, rootModel string, hooks ...Hook) (*Resolver, error) {
	table, err := schema.Table(rootModel)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		schema: schema,
		plan:   NewJoinPlan(rootModel, table),
		hooks:  hooks,
	}, nil
}

// Plan exposes the accumulated join plan.
func (r *Resolver) Plan() *JoinPlan { return r.plan }

// Resolve walks one dotted path, attaching joins to the shared plan.
// Unknown segments are offered to the registered hooks before failing.
func (r *Resolver) Resolve(ctx context.Context, path string) (*Resolved, error) {
	segments := core.Segments(path)
	model := r.plan.Root
	alias := r.plan.RootTable
	chain := []string{r.plan.RootTable}

	for i := 0; i < len(segments); i++ {
		seg := segments[i]
		last := i == len(segments)-1

		columns, err := r.schema.Columns(model)
		if err != nil {
			return nil, err
		}
		relations, err := r.schema.Relations(model)
		if err != nil {
			return nil, err
		}

		column, isColumn := columns[seg]
		rel, isRelation := relations[seg]

		if isColumn && isRelation {
			return nil, &core.ResolutionError{
				Code:   core.CodeAmbiguousRelation,
				Path:   path,
				Reason: fmt.Sprintf("segment %q names both a column and a relation of %s", seg, model),
			}
		}

		if last {
			if isColumn {
				return &Resolved{Column: &ColumnRef{Alias: alias, Column: column}}, nil
			}
			if isRelation {
				return nil, &core.ResolutionError{
					Code:   core.CodeInvalidLeaf,
					Path:   path,
					Reason: fmt.Sprintf("terminal segment %q is a relation of %s, not a scalar column", seg, model),
				}
			}
		} else if isColumn {
			return nil, &core.ResolutionError{
				Code:   core.CodeInvalidLeaf,
				Path:   path,
				Reason: fmt.Sprintf("segment %q is a scalar column of %s and cannot be traversed", seg, model),
			}
		}

		if isRelation {
			selfRef := rel.SelfRef || contains(chain, rel.TargetTable)
			prefix := joinPrefix(segments[:i+1])
			alias = r.plan.Attach(prefix, alias, rel, i+1, selfRef)
			chain = append(chain, rel.TargetTable)
			model = rel.TargetModel
			continue
		}

		// Unknown segment: hooks get the first shot.
		resolved, consumed, newModel, newAlias, err := r.tryHooks(ctx, alias, seg, segments[i+1:], model)
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			return resolved, nil
		}
		if consumed {
			model, alias = newModel, newAlias
			continue
		}

		return nil, &core.ResolutionError{
			Code:       core.CodeUnknownField,
			Path:       path,
			Reason:     fmt.Sprintf("%s has no attribute %q", model, seg),
			Suggestion: suggestSibling(seg, columns, relations),
		}
	}
	return nil, &core.ResolutionError{Code: core.CodeUnknownField, Path: path, Reason: "empty path"}
}

func (r *Resolver) tryHooks(ctx context.Context, alias, attr string, remaining []string, model string) (*Resolved, bool, string, string, error) {
	rc := &ResolutionContext{
		ParentAlias: alias,
		Attribute:   attr,
		Remaining:   remaining,
		Plan:        r.plan,
		Root:        r.plan.Root,
		Model:       model,
	}
	for _, hook := range r.hooks {
		result, err := hook(ctx, rc)
		if err != nil {
			return nil, false, "", "", err
		}
		if result == nil {
			continue
		}
		switch {
		case result.Fragment != "":
			return &Resolved{Fragment: result.Fragment, Params: result.Params}, false, "", "", nil
		case result.Column != "":
			colAlias := result.Alias
			if colAlias == "" {
				colAlias = alias
			}
			return &Resolved{Column: &ColumnRef{Alias: colAlias, Column: result.Column}}, false, "", "", nil
		case len(result.Joins) > 0:
			if len(remaining) == 0 {
				return nil, false, "", "", &core.BackendError{
					Code:   core.CodeTranslationFailed,
					Detail: fmt.Sprintf("hook added joins for terminal segment %q without a column", attr),
				}
			}
			r.plan.Append(result.Joins...)
			return nil, true, result.ContinueModel, result.ContinueAlias, nil
		}
	}
	return nil, false, "", "", nil
}

func joinPrefix(segments []string) string {
	out := segments[0]
	for _, s := range segments[1:] {
		out += "." + s
	}
	return out
}

func contains(chain []string, table string) bool {
	for _, t := range chain {
		if t == table {
			return true
		}
	}
	return false
}

// suggestSibling finds the closest attribute name within edit distance
// 2 across the model's columns and relations.
func suggestSibling(seg string, columns map[string]string, relations map[string]Relation) string {
	best, bestDist := "", 3
	consider := func(name string) {
		d := levenshtein.ComputeDistance(seg, name)
		if d < bestDist || (d == bestDist && best != "" && name < best) {
			best, bestDist = name, d
		}
	}
	for name := range columns {
		consider(name)
	}
	for name := range relations {
		consider(name)
	}
	if bestDist > 2 {
		return ""
	}
	return best
}
