package core

import (
	"fmt"
	"regexp"

	"github.com/oxhq/searchq/registry"
)

// DefaultMaxDepth bounds both group nesting and dotted-path length.
const DefaultMaxDepth = 8

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validator checks a query against the operator set of one backend.
// Validation is purely structural: paths are checked for shape and
// depth, their existence is the resolver's business.
type Validator struct {
	Backend  registry.Backend
	MaxDepth int
}

// NewValidator creates a validator for the given backend with the
// default depth limit.
func NewValidator(backend registry.Backend) *Validator {
	return &Validator{Backend: backend, MaxDepth: DefaultMaxDepth}
}

// Validate walks the whole tree and returns the first defect as a typed
// *ValidationError. A nil return guarantees every condition's operator
// is admissible on the backend and its value shape agrees with the
// registry.
func (v *Validator) Validate(q *Query) error {
	if q == nil {
		return &ValidationError{Code: CodeEmptyGroup, Detail: "query is nil"}
	}
	maxDepth := v.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if q.Limit != nil && *q.Limit < 0 {
		return &ValidationError{Code: CodeInvalidPaging, Detail: fmt.Sprintf("limit must be non-negative, got %d", *q.Limit)}
	}
	if q.Offset != nil && *q.Offset < 0 {
		return &ValidationError{Code: CodeInvalidPaging, Detail: fmt.Sprintf("offset must be non-negative, got %d", *q.Offset)}
	}
	for _, key := range q.OrderBy {
		if err := v.checkPath(key.Path, maxDepth); err != nil {
			return err
		}
	}
	for _, g := range q.Groups {
		if err := v.checkNode(g, 1, maxDepth); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) checkNode(n Node, depth, maxDepth int) error {
	if depth > maxDepth {
		return &ValidationError{Code: CodeDepthExceeded, Detail: fmt.Sprintf("group nesting exceeds %d levels", maxDepth)}
	}
	switch node := n.(type) {
	case *Group:
		if node == nil {
			return &ValidationError{Code: CodeEmptyGroup, Detail: "nil group"}
		}
		if len(node.Children) == 0 {
			return &ValidationError{Code: CodeEmptyGroup, Detail: "group has no children"}
		}
		if node.Op == OpNot && len(node.Children) != 1 {
			return &ValidationError{Code: CodeInvalidNot, Detail: fmt.Sprintf("not group requires exactly one child, got %d", len(node.Children))}
		}
		switch node.Op {
		case OpAnd, OpOr, OpNot:
		default:
			return &ValidationError{Code: CodeEmptyGroup, Detail: fmt.Sprintf("unknown group operator %q", node.Op)}
		}
		for _, c := range node.Children {
			if err := v.checkNode(c, depth+1, maxDepth); err != nil {
				return err
			}
		}
		return nil
	case *Condition:
		if node == nil {
			return &ValidationError{Code: CodeEmptyGroup, Detail: "nil condition"}
		}
		return v.checkCondition(node, maxDepth)
	}
	return &ValidationError{Code: CodeEmptyGroup, Detail: fmt.Sprintf("unknown node type %T", n)}
}

func (v *Validator) checkCondition(c *Condition, maxDepth int) error {
	if err := v.checkPath(c.Field, maxDepth); err != nil {
		return err
	}
	op, known := registry.Lookup(c.Operator)
	if !known {
		return &ValidationError{
			Code:       CodeUnknownOperator,
			Op:         c.Operator,
			Detail:     "unknown operator",
			Suggestion: registry.Suggest(c.Operator),
		}
	}
	if !op.Supports(v.Backend) {
		return &ValidationError{
			Code:   CodeOperatorNotSupported,
			Op:     c.Operator,
			Detail: fmt.Sprintf("not supported by the %s backend", v.Backend),
		}
	}
	if op.Arity == registry.Unary {
		if !c.Value.IsMissing() {
			return shapeMismatch(op, c.Value, "no value")
		}
		return nil
	}
	return checkValueShape(op, c.Value)
}

func (v *Validator) checkPath(path string, maxDepth int) error {
	if path == "" {
		return &ValidationError{Code: CodeMalformedPath, Detail: "empty field path"}
	}
	segments := Segments(path)
	if len(segments) > maxDepth {
		return &ValidationError{Code: CodeDepthExceeded, Detail: fmt.Sprintf("path %q exceeds %d segments", path, maxDepth)}
	}
	for _, seg := range segments {
		if !identPattern.MatchString(seg) {
			return &ValidationError{Code: CodeMalformedPath, Detail: fmt.Sprintf("path %q: segment %q is not an identifier", path, seg)}
		}
	}
	return nil
}

func checkValueShape(op registry.Operator, val Value) error {
	switch op.Value {
	case registry.KindScalar:
		if isScalar(val) {
			return nil
		}
		return shapeMismatch(op, val, "scalar")
	case registry.KindList:
		if val.Kind() != KindList {
			return shapeMismatch(op, val, "list")
		}
		for _, e := range val.ListVal() {
			if !isScalar(e) {
				return shapeMismatch(op, e, "list of scalars")
			}
		}
		return nil
	case registry.KindRange:
		lo, hi, ok := val.AsRange()
		if !ok || !isScalar(lo) || !isScalar(hi) {
			return shapeMismatch(op, val, "range pair [lo, hi]")
		}
		cmp, ordered := compareScalarValues(lo, hi)
		if !ordered {
			return shapeMismatch(op, val, "range pair of one ordered kind")
		}
		if cmp > 0 {
			return shapeMismatch(op, val, "range pair with lo <= hi")
		}
		return nil
	case registry.KindGeometry:
		if val.Kind() == KindGeometry {
			return nil
		}
		return shapeMismatch(op, val, "geometry")
	case registry.KindBBox:
		if _, ok := val.AsBBox(); ok {
			return nil
		}
		return shapeMismatch(op, val, "bbox [minX, minY, maxX, maxY]")
	case registry.KindDWithin:
		if _, _, ok := val.AsDWithin(); ok {
			return nil
		}
		return shapeMismatch(op, val, "pair [geometry, meters]")
	case registry.KindPattern, registry.KindToken:
		if val.Kind() == KindString {
			return nil
		}
		return shapeMismatch(op, val, "string")
	case registry.KindJSON:
		if !val.IsMissing() {
			return nil
		}
		return shapeMismatch(op, val, "json document")
	}
	return shapeMismatch(op, val, op.Value.String())
}

func isScalar(v Value) bool {
	switch v.Kind() {
	case KindNull, KindBool, KindNumber, KindString, KindTime:
		return true
	}
	return false
}

// compareScalarValues orders two scalar values of the same kind.
func compareScalarValues(a, b Value) (int, bool) {
	if a.Kind() != b.Kind() {
		return 0, false
	}
	switch a.Kind() {
	case KindNumber:
		switch {
		case a.NumberVal() < b.NumberVal():
			return -1, true
		case a.NumberVal() > b.NumberVal():
			return 1, true
		}
		return 0, true
	case KindString:
		switch {
		case a.StringVal() < b.StringVal():
			return -1, true
		case a.StringVal() > b.StringVal():
			return 1, true
		}
		return 0, true
	case KindTime:
		switch {
		case a.TimeVal().Before(b.TimeVal()):
			return -1, true
		case a.TimeVal().After(b.TimeVal()):
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func shapeMismatch(op registry.Operator, got Value, expected string) *ValidationError {
	return &ValidationError{
		Code:   CodeValueShapeMismatch,
		Op:     op.Tag,
		Detail: fmt.Sprintf("expected %s, got %s", expected, got.Kind()),
	}
}
