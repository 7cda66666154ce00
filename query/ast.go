package query

import (
	"strings"
)

// Attribute names of the graph dialect.
const (
	AttrEntryNode     = ":entry/node"
	AttrEntryText     = ":entry/text"
	AttrEntryRefs     = ":entry/refs"
	AttrEntryCreated  = ":entry/created"
	AttrEntryModified = ":entry/modified"
	AttrNodeTitle     = ":node/title"
	AttrNodeID        = ":node/id"
	AttrEntryID       = ":entry/id"
)

// Predicate function names of the graph dialect.
const (
	FnReFind   = "re-find"
	FnIncludes = "text-includes?"
	FnEquals   = "="
	FnNotEqual = "!="
)

// Term is one argument position in a clause: a variable, a string literal,
// a regex literal or a raw symbol. The union is closed.
type Term interface {
	writeTerm(b *strings.Builder)
}

// Var is a query variable, serialized as ?name.
type Var string

func (v Var) writeTerm(b *strings.Builder) {
	b.WriteByte('?')
	b.WriteString(string(v))
}

// Str is a double-quoted string literal. Serialization escapes backslashes
// and quotes so user-supplied text cannot break out of the literal.
type Str string

func (s Str) writeTerm(b *strings.Builder) {
	b.WriteByte('"')
	b.WriteString(escapeString(string(s)))
	b.WriteByte('"')
}

// Regex is a regex pattern literal, serialized as #"pattern".
// The pattern itself is expected to be a valid regular expression already;
// only the literal delimiters are escaped here.
type Regex string

func (r Regex) writeTerm(b *strings.Builder) {
	b.WriteString(`#"`)
	b.WriteString(escapeRegexLiteral(string(r)))
	b.WriteByte('"')
}

// Sym is a raw symbol written verbatim, used for numeric literals and
// dialect keywords.
type Sym string

func (s Sym) writeTerm(b *strings.Builder) {
	b.WriteString(string(s))
}

// Clause is one where-clause of a query. The union is closed: Pattern,
// Pred, Not, NotJoin, OrJoin and And are the only implementations.
type Clause interface {
	writeClause(b *strings.Builder)
}

// Pattern is a triple clause [?e :attr value].
type Pattern struct {
	Entity    Var
	Attribute string
	Value     Term
}

func (p Pattern) writeClause(b *strings.Builder) {
	b.WriteByte('[')
	p.Entity.writeTerm(b)
	b.WriteByte(' ')
	b.WriteString(p.Attribute)
	b.WriteByte(' ')
	p.Value.writeTerm(b)
	b.WriteByte(']')
}

// Pred is a predicate clause [(fn arg ...)].
type Pred struct {
	Fn   string
	Args []Term
}

func (p Pred) writeClause(b *strings.Builder) {
	b.WriteString("[(")
	b.WriteString(p.Fn)
	for _, arg := range p.Args {
		b.WriteByte(' ')
		arg.writeTerm(b)
	}
	b.WriteString(")]")
}

// Not negates the enclosed clauses: (not clause ...).
// Scope is exactly the enclosed clauses; sibling clauses are unaffected.
type Not struct {
	Clauses []Clause
}

func (n Not) writeClause(b *strings.Builder) {
	b.WriteString("(not")
	for _, c := range n.Clauses {
		b.WriteByte(' ')
		c.writeClause(b)
	}
	b.WriteByte(')')
}

// NotJoin negates the enclosed clauses while unifying only the listed
// variables with the outer query: (not-join [?v ...] clause ...).
type NotJoin struct {
	Unify   []Var
	Clauses []Clause
}

func (n NotJoin) writeClause(b *strings.Builder) {
	b.WriteString("(not-join [")
	for i, v := range n.Unify {
		if i > 0 {
			b.WriteByte(' ')
		}
		v.writeTerm(b)
	}
	b.WriteByte(']')
	for _, c := range n.Clauses {
		b.WriteByte(' ')
		c.writeClause(b)
	}
	b.WriteByte(')')
}

// OrJoin disjoins clause branches unifying only the listed variables:
// (or-join [?v ...] branch ...).
type OrJoin struct {
	Unify    []Var
	Branches []Clause
}

func (o OrJoin) writeClause(b *strings.Builder) {
	b.WriteString("(or-join [")
	for i, v := range o.Unify {
		if i > 0 {
			b.WriteByte(' ')
		}
		v.writeTerm(b)
	}
	b.WriteByte(']')
	for _, c := range o.Branches {
		b.WriteByte(' ')
		c.writeClause(b)
	}
	b.WriteByte(')')
}

// And groups clauses, used for the branches of an OrJoin: (and clause ...).
type And struct {
	Clauses []Clause
}

func (a And) writeClause(b *strings.Builder) {
	b.WriteString("(and")
	for _, c := range a.Clauses {
		b.WriteByte(' ')
		c.writeClause(b)
	}
	b.WriteByte(')')
}

// Query is a complete find query.
type Query struct {
	Find  []Var
	Where []Clause
}

// Serialize renders the query in the executor's dialect. All escaping of
// user-supplied text happens here, in one place.
func (q *Query) Serialize() string {
	var b strings.Builder
	b.WriteString("[:find")
	for _, v := range q.Find {
		b.WriteByte(' ')
		v.writeTerm(&b)
	}
	b.WriteString("\n :where")
	for _, c := range q.Where {
		b.WriteString("\n  ")
		c.writeClause(&b)
	}
	b.WriteString("]")
	return b.String()
}

// escapeString escapes a double-quoted string literal body.
func escapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// escapeRegexLiteral escapes the body of a #"..." regex literal.
// Backslashes are preserved (they are pattern syntax); only the closing
// quote needs protection.
func escapeRegexLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '"' && (i == 0 || s[i-1] != '\\') {
			b.WriteString(`\"`)
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
