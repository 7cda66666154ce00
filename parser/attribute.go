package parser

import (
	"strings"

	"github.com/poiesic/gnosis/core"
)

const attributePrefix = "attr:"

// valueTypeNames maps mini-language type tokens to attribute value types.
var valueTypeNames = map[string]core.AttributeValueType{
	"text":     core.AttrValueText,
	"node_ref": core.AttrValueNodeRef,
	"ref":      core.AttrValueNodeRef,
	"regex":    core.AttrValueRegex,
}

// ParseAttributeCondition parses the attribute condition mini-language:
//
//	attr:<key>:<type>:<value>
//	attr:<key>:<type>:(<expr>)
//	attr:<key>:<value>          (type defaults to node_ref)
//
// <expr> is a sequence of value tokens separated by + (AND), | (OR) and
// - (NOT). A - counts as an operator only at the start of a token; inside
// one it belongs to the value, so hyphenated names like in-progress need
// no escaping. The first token with no explicit operator inherits AND, unless
// every explicit operator in the expression is |, in which case the first
// token is folded into the OR group. That special case resolves the
// ambiguity between "A is required, B or C add evidence" and "any of A, B,
// C is acceptable" and is preserved deliberately.
//
// Malformed input yields a *ParseError; the function never panics.
func ParseAttributeCondition(text string) (*core.AttributeCondition, error) {
	if !strings.HasPrefix(text, attributePrefix) {
		return nil, newParseError(text, "missing %q prefix", attributePrefix)
	}

	rest := text[len(attributePrefix):]
	parts := strings.SplitN(rest, ":", 3)
	if len(parts) < 2 {
		return nil, newParseError(text, "expected attr:<key>:<value>")
	}

	key := strings.TrimSpace(parts[0])
	if key == "" {
		return nil, newParseError(text, "attribute key is empty")
	}

	valueType := core.AttrValueNodeRef
	var rawValue string
	if vt, ok := valueTypeNames[strings.TrimSpace(parts[1])]; ok && len(parts) == 3 {
		valueType = vt
		rawValue = parts[2]
	} else {
		// Shorthand form: everything after the key is the value.
		rawValue = strings.Join(parts[1:], ":")
	}

	rawValue = strings.TrimSpace(rawValue)
	if rawValue == "" {
		return nil, newParseError(text, "attribute value is empty")
	}

	var values []core.AttributeValue
	if strings.HasPrefix(rawValue, "(") {
		if !strings.HasSuffix(rawValue, ")") {
			return nil, newParseError(text, "unterminated value expression")
		}
		expr := rawValue[1 : len(rawValue)-1]
		parsed, err := parseValueExpression(text, expr)
		if err != nil {
			return nil, err
		}
		values = parsed
	} else {
		values = []core.AttributeValue{{Value: rawValue, Operator: core.OpAnd}}
	}

	attr := &core.AttributeCondition{
		Key:       key,
		ValueType: valueType,
		Values:    values,
	}
	if err := core.ValidateAttributeCondition(attr); err != nil {
		return nil, newParseError(text, "%v", err)
	}
	return attr, nil
}

// parseValueExpression tokenizes "a + b | c - d" into operator-tagged values.
func parseValueExpression(input, expr string) ([]core.AttributeValue, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, newParseError(input, "empty value expression")
	}

	type token struct {
		value string
		op    byte // '+', '|', '-' or 0 for the leading token
	}

	var tokens []token
	var current strings.Builder
	pendingOp := byte(0)

	flush := func() error {
		value := strings.TrimSpace(current.String())
		if value == "" {
			return newParseError(input, "empty value token in expression")
		}
		tokens = append(tokens, token{value: value, op: pendingOp})
		current.Reset()
		return nil
	}

	for i := 0; i < len(expr); i++ {
		ch := expr[i]
		// A hyphen is NOT only at a token boundary; inside a token it is
		// part of the value, so "in-progress" stays whole.
		isOp := ch == '+' || ch == '|' ||
			(ch == '-' && (i == 0 || operatorBoundary(expr[i-1])))
		if !isOp {
			current.WriteByte(ch)
			continue
		}
		if len(tokens) == 0 && pendingOp == 0 && strings.TrimSpace(current.String()) == "" {
			// Leading explicit operator, e.g. "(-archived)".
			pendingOp = ch
			current.Reset()
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		pendingOp = ch
	}
	if err := flush(); err != nil {
		return nil, err
	}

	// Decide the implicit operator of the leading token. If every explicit
	// operator is |, the leading token joins the OR group; otherwise it is
	// required (AND).
	onlyOr := len(tokens) > 1
	for _, t := range tokens[1:] {
		if t.op != '|' {
			onlyOr = false
			break
		}
	}

	values := make([]core.AttributeValue, 0, len(tokens))
	for i, t := range tokens {
		var op core.ValueOperator
		switch t.op {
		case '+':
			op = core.OpAnd
		case '|':
			op = core.OpOr
		case '-':
			op = core.OpNot
		case 0:
			if i != 0 {
				return nil, newParseError(input, "operator missing before %q", t.value)
			}
			if onlyOr {
				op = core.OpOr
			} else {
				op = core.OpAnd
			}
		}
		values = append(values, core.AttributeValue{Value: t.value, Operator: op})
	}

	return values, nil
}

func operatorBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '+', '|', '-':
		return true
	}
	return false
}
