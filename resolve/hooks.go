package resolve

import "context"

// ResolutionContext is handed to hooks when the resolver meets a path
// segment the schema does not know. Hooks may read the plan and append
// joins through the HookResult, but must not mutate the query AST.
type ResolutionContext struct {
	ParentAlias string
	Attribute   string
	Remaining   []string
	Plan        *JoinPlan
	Root        string
	Model       string
}

// HookResult is one of three outcomes:
//
//   - Column (optionally with Alias): the segment maps to an emitted
//     column reference and resolution ends.
//   - Joins with ContinueAlias/ContinueModel: the segment consumed one
//     or more custom joins; resolution continues with the remaining
//     segments from the new alias.
//   - Fragment with Params: the whole condition is replaced by a custom
//     predicate fragment inserted verbatim, parameters bound.
type HookResult struct {
	Column string
	Alias  string

	Joins         []JoinStep
	ContinueAlias string
	ContinueModel string

	Fragment string
	Params   []any
}

// Hook intercepts resolution of one unknown segment. Hooks run in
// registration order, serialized per query; the first non-nil result
// wins. Returning (nil, nil) declines.
type Hook func(ctx context.Context, rc *ResolutionContext) (*HookResult, error)
