// Package dsl parses a compact textual condition grammar into a query
// AST, as an alternative to the JSON query document:
//
//	status = "active" and (priority > 5 or urgent = true)
//	owner.name in ["Alice", "Bob"] and created_at is not null
package dsl

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var dslLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(and|or|not|is|in|between|null|empty|true|false|like|ilike|contains|icontains|startswith|istartswith|endswith|iendswith|regex|iregex)\b`},
	{Name: "Float", Pattern: `-?\d+\.\d+`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "String", Pattern: `"([^"\\]|\\.)*"`},
	{Name: "Path", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*`},
	{Name: "Operator", Pattern: `!=|>=|<=|=|>|<`},
	{Name: "Punct", Pattern: `[(),\[\]]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Expression is the top-level rule: OR over AND over unary.
type Expression struct {
	Or []*AndExpr `parser:"@@ ( \"or\" @@ )*"`
}

// AndExpr: conjunction of unary terms.
type AndExpr struct {
	And []*UnaryExpr `parser:"@@ ( \"and\" @@ )*"`
}

// UnaryExpr: optional negation of a primary term.
type UnaryExpr struct {
	Not     *UnaryExpr `parser:"\"not\" @@"`
	Primary *Primary   `parser:"| @@"`
}

// Primary: parenthesized sub-expression or a single condition.
type Primary struct {
	Sub  *Expression `parser:"\"(\" @@ \")\""`
	Cond *Cond       `parser:"| @@"`
}

// Cond: dotted path followed by an operator clause.
type Cond struct {
	Path string   `parser:"@Path"`
	Rhs  *CondRhs `parser:"@@"`
}

// CondRhs dispatches on the operator form.
type CondRhs struct {
	Is         *IsClause  `parser:"  \"is\" @@"`
	NotIn      *ValueList `parser:"| \"not\" \"in\" \"[\" @@ \"]\""`
	NotBetween *Pair      `parser:"| \"not\" \"between\" @@"`
	NotLike    *Literal   `parser:"| \"not\" \"like\" @@"`
	In         *ValueList `parser:"| \"in\" \"[\" @@ \"]\""`
	Between    *Pair      `parser:"| \"between\" @@"`
	Word       *WordOp    `parser:"| @@"`
	Sym        *SymOp     `parser:"| @@"`
}

// IsClause: is [not] null|empty.
type IsClause struct {
	Not  bool   `parser:"@\"not\"?"`
	What string `parser:"@( \"null\" | \"empty\" )"`
}

// WordOp: a named string operator with one literal argument.
type WordOp struct {
	Op    string   `parser:"@( \"like\" | \"ilike\" | \"contains\" | \"icontains\" | \"startswith\" | \"istartswith\" | \"endswith\" | \"iendswith\" | \"regex\" | \"iregex\" )"`
	Value *Literal `parser:"@@"`
}

// SymOp: a symbolic comparison with one literal argument.
type SymOp struct {
	Op    string   `parser:"@Operator"`
	Value *Literal `parser:"@@"`
}

// Pair: <lo> and <hi>.
type Pair struct {
	Lo *Literal `parser:"@@ \"and\""`
	Hi *Literal `parser:"@@"`
}

// ValueList: comma-separated literals.
type ValueList struct {
	Values []*Literal `parser:"@@ ( \",\" @@ )*"`
}

// Literal: a typed scalar.
type Literal struct {
	Str   *string  `parser:"  @String"`
	Float *float64 `parser:"| @Float"`
	Int   *int64   `parser:"| @Int"`
	True  bool     `parser:"| @\"true\""`
	False bool     `parser:"| @\"false\""`
	Null  bool     `parser:"| @\"null\""`
}

// Parser singleton built from the grammar.
var dslParser = participle.MustBuild[Expression](
	participle.Lexer(dslLexer),
	participle.CaseInsensitive("Keyword"),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)
