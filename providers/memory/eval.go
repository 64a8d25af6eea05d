package memory

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oxhq/searchq/core"
	"github.com/oxhq/searchq/resolve"
)

// evalState carries per-invocation caches so compiled patterns never
// leak across requests.
type evalState struct {
	regexps map[string]*regexp.Regexp
}

func newEvalState() *evalState {
	return &evalState{regexps: make(map[string]*regexp.Regexp)}
}

func (s *evalState) compile(expr, tag string) (*regexp.Regexp, error) {
	if re, ok := s.regexps[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &core.EvalError{Code: core.CodeInvalidRegex, Op: tag, Detail: fmt.Sprintf("invalid pattern: %v", err)}
	}
	s.regexps[expr] = re
	return re, nil
}

// evalQuery evaluates the conjoined top-level groups against a record.
func (s *evalState) evalQuery(q *core.Query, rec core.Record) (bool, error) {
	for _, g := range q.Groups {
		ok, err := s.evalNode(g, rec)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (s *evalState) evalNode(n core.Node, rec core.Record) (bool, error) {
	switch node := n.(type) {
	case *core.Group:
		switch node.Op {
		case core.OpAnd:
			for _, c := range node.Children {
				ok, err := s.evalNode(c, rec)
				if err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		case core.OpOr:
			for _, c := range node.Children {
				ok, err := s.evalNode(c, rec)
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			return false, nil
		case core.OpNot:
			ok, err := s.evalNode(node.Children[0], rec)
			if err != nil {
				return false, err
			}
			return !ok, nil
		}
		return false, fmt.Errorf("unknown group operator %q", node.Op)
	case *core.Condition:
		return s.evalCondition(node, rec)
	}
	return false, fmt.Errorf("unknown node type %T", n)
}

// evalCondition resolves the field path and applies the operator with
// existential semantics: the condition holds if any reached terminal
// satisfies it.
func (s *evalState) evalCondition(c *core.Condition, rec core.Record) (bool, error) {
	leaves := resolve.Access(rec, core.Segments(c.Field))

	switch c.Operator {
	case "is_null", "is_empty":
		// Missing counts as null/empty.
		if len(leaves) == 0 {
			return true, nil
		}
		for _, leaf := range leaves {
			if isEmptyLeaf(leaf, c.Operator == "is_empty") {
				return true, nil
			}
		}
		return false, nil
	case "is_not_null", "is_not_empty":
		for _, leaf := range leaves {
			if !isEmptyLeaf(leaf, c.Operator == "is_not_empty") {
				return true, nil
			}
		}
		return false, nil
	}

	// Every remaining operator is falsy against a missing path.
	if len(leaves) == 0 {
		return false, nil
	}
	for _, leaf := range leaves {
		ok, err := s.applyOperator(c, leaf)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func isEmptyLeaf(leaf any, emptyCounts bool) bool {
	if leaf == nil {
		return true
	}
	if !emptyCounts {
		return false
	}
	if s, ok := leaf.(string); ok {
		return s == ""
	}
	// Empty lists flatten to zero elements, scalars to one.
	return len(resolve.Flatten(leaf)) == 0
}

func (s *evalState) applyOperator(c *core.Condition, leaf any) (bool, error) {
	switch c.Operator {
	case "=", "!=", ">", "<", ">=", "<=":
		return s.applyComparison(c, leaf)
	case "in", "not_in", "all":
		return applyMembership(c, leaf)
	case "between", "not_between":
		return applyBetween(c, leaf)
	case "like", "not_like", "ilike",
		"contains", "icontains",
		"startswith", "istartswith",
		"endswith", "iendswith",
		"regex", "iregex":
		return s.applyString(c, leaf)
	}
	return false, &core.EvalError{Code: core.CodeTypeMismatch, Op: c.Operator, Detail: "operator has no memory evaluation"}
}

func (s *evalState) applyComparison(c *core.Condition, leaf any) (bool, error) {
	rhs, ok := fromValue(c.Value)
	if !ok {
		return false, nil
	}
	for _, elem := range resolve.Flatten(leaf) {
		lhs, scalarOK := normalize(elem)
		if !scalarOK {
			continue
		}
		switch c.Operator {
		case "=":
			if equal(lhs, rhs) {
				return true, nil
			}
		case "!=":
			if !equal(lhs, rhs) {
				return true, nil
			}
		default:
			cmp, ordered := order(lhs, rhs)
			if !ordered {
				// Mixed kinds compare unequal and never ordered.
				continue
			}
			switch c.Operator {
			case ">":
				if cmp > 0 {
					return true, nil
				}
			case "<":
				if cmp < 0 {
					return true, nil
				}
			case ">=":
				if cmp >= 0 {
					return true, nil
				}
			case "<=":
				if cmp <= 0 {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

func applyMembership(c *core.Condition, leaf any) (bool, error) {
	members := make([]scalar, 0, len(c.Value.ListVal()))
	for _, v := range c.Value.ListVal() {
		if m, ok := fromValue(v); ok {
			members = append(members, m)
		}
	}
	inSet := func(v scalar) bool {
		for _, m := range members {
			if equal(v, m) {
				return true
			}
		}
		return false
	}

	elems := resolve.Flatten(leaf)
	switch c.Operator {
	case "in":
		for _, e := range elems {
			if lhs, ok := normalize(e); ok && inSet(lhs) {
				return true, nil
			}
		}
		return false, nil
	case "not_in":
		for _, e := range elems {
			if lhs, ok := normalize(e); ok && inSet(lhs) {
				return false, nil
			}
		}
		return true, nil
	case "all":
		// Field-set must be contained in the value set.
		for _, e := range elems {
			lhs, ok := normalize(e)
			if !ok || !inSet(lhs) {
				return false, nil
			}
		}
		return true, nil
	}
	return false, nil
}

func applyBetween(c *core.Condition, leaf any) (bool, error) {
	loV, hiV, ok := c.Value.AsRange()
	if !ok {
		return false, nil
	}
	lo, okLo := fromValue(loV)
	hi, okHi := fromValue(hiV)
	if !okLo || !okHi {
		return false, nil
	}
	within := false
	for _, e := range resolve.Flatten(leaf) {
		lhs, scalarOK := normalize(e)
		if !scalarOK {
			continue
		}
		cmpLo, okLoOrd := order(lhs, lo)
		cmpHi, okHiOrd := order(lhs, hi)
		if okLoOrd && okHiOrd && cmpLo >= 0 && cmpHi <= 0 {
			within = true
			break
		}
	}
	if c.Operator == "not_between" {
		return !within, nil
	}
	return within, nil
}

func (s *evalState) applyString(c *core.Condition, leaf any) (bool, error) {
	arg := c.Value.StringVal()
	for _, e := range resolve.Flatten(leaf) {
		if e == nil {
			continue
		}
		str, ok := e.(string)
		if !ok {
			lhs, scalarOK := normalize(e)
			if scalarOK && lhs.kind == core.KindTime {
				str = lhs.str
				if str == "" {
					str = lhs.ts.Format(time.RFC3339)
				}
			} else {
				return false, &core.EvalError{
					Code:   core.CodeTypeMismatch,
					Op:     c.Operator,
					Detail: fmt.Sprintf("string operator applied to %T", e),
				}
			}
		}
		ok, err := s.matchString(c.Operator, str, arg)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *evalState) matchString(tag, lhs, arg string) (bool, error) {
	switch tag {
	case "like", "not_like":
		re, err := s.compile(wildcardToRegexp(arg), tag)
		if err != nil {
			return false, err
		}
		matched := re.MatchString(lhs)
		if tag == "not_like" {
			return !matched, nil
		}
		return matched, nil
	case "ilike":
		re, err := s.compile(wildcardToRegexp(strings.ToLower(arg)), tag)
		if err != nil {
			return false, err
		}
		return re.MatchString(strings.ToLower(lhs)), nil
	case "contains":
		return strings.Contains(lhs, arg), nil
	case "icontains":
		return strings.Contains(strings.ToLower(lhs), strings.ToLower(arg)), nil
	case "startswith":
		return strings.HasPrefix(lhs, arg), nil
	case "istartswith":
		return strings.HasPrefix(strings.ToLower(lhs), strings.ToLower(arg)), nil
	case "endswith":
		return strings.HasSuffix(lhs, arg), nil
	case "iendswith":
		return strings.HasSuffix(strings.ToLower(lhs), strings.ToLower(arg)), nil
	case "regex":
		re, err := s.compile(arg, tag)
		if err != nil {
			return false, err
		}
		return re.MatchString(lhs), nil
	case "iregex":
		re, err := s.compile("(?i)"+arg, tag)
		if err != nil {
			return false, err
		}
		return re.MatchString(lhs), nil
	}
	return false, nil
}

// wildcardToRegexp converts SQL-style wildcards (% and _) into an
// anchored regular expression.
func wildcardToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}
