package rule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Expressions combine comparisons of data paths with literals:
//
//	married && spouse.name != ""
//	!(age < 18) || guardian == true
//
// Paths use "." or "/" between property names and are resolved with
// reference.ResolveInstance. Comparison operators are == != < <= > >=.

type node interface {
	eval(data any) (bool, error)
}

func parse(expression string) (node, error) {
	tokens, err := lex(expression)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if p.done() {
		return nil, errors.New("rule: empty expression")
	}
	n, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("rule: unexpected %q", p.peek().text)
	}
	return n, nil
}

type kind int

const (
	kindPath kind = iota
	kindString
	kindNumber
	kindBool
	kindNull
	kindOp
	kindAnd
	kindOr
	kindNot
	kindOpen
	kindClose
)

type token struct {
	kind kind
	text string
}

var twoCharOps = map[string]kind{
	"==": kindOp,
	"!=": kindOp,
	"<=": kindOp,
	">=": kindOp,
	"&&": kindAnd,
	"||": kindOr,
}

func lex(input string) ([]token, error) {
	var out []token
	for pos := 0; pos < len(input); {
		ch := rune(input[pos])
		switch {
		case unicode.IsSpace(ch):
			pos++
		case pos+1 < len(input) && isTwoCharOp(input[pos:pos+2]):
			op := input[pos : pos+2]
			out = append(out, token{kind: twoCharOps[op], text: op})
			pos += 2
		case ch == '<' || ch == '>':
			out = append(out, token{kind: kindOp, text: string(ch)})
			pos++
		case ch == '!':
			out = append(out, token{kind: kindNot, text: "!"})
			pos++
		case ch == '(':
			out = append(out, token{kind: kindOpen, text: "("})
			pos++
		case ch == ')':
			out = append(out, token{kind: kindClose, text: ")"})
			pos++
		case ch == '"' || ch == '\'':
			end := closingQuote(input, pos)
			if end < 0 {
				return nil, errors.New("rule: unterminated string literal")
			}
			raw := input[pos : end+1]
			if ch == '\'' {
				raw = `"` + strings.ReplaceAll(raw[1:len(raw)-1], `"`, `\"`) + `"`
			}
			text, err := strconv.Unquote(raw)
			if err != nil {
				return nil, fmt.Errorf("rule: invalid string literal %s: %w", input[pos:end+1], err)
			}
			out = append(out, token{kind: kindString, text: text})
			pos = end + 1
		default:
			start := pos
			for pos < len(input) && isWordByte(input[pos]) {
				pos++
			}
			if start == pos {
				return nil, fmt.Errorf("rule: unexpected character %q", ch)
			}
			out = append(out, word(input[start:pos]))
		}
	}
	return out, nil
}

func isTwoCharOp(text string) bool {
	_, ok := twoCharOps[text]
	return ok
}

func closingQuote(input string, start int) int {
	quote := input[start]
	for i := start + 1; i < len(input); i++ {
		switch input[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return -1
}

func isWordByte(b byte) bool {
	return b != ' ' && b != '\t' && b != '\n' && b != '\r' && !strings.ContainsRune("()!=<>&|\"'", rune(b))
}

func word(text string) token {
	switch text {
	case "true", "false":
		return token{kind: kindBool, text: text}
	case "null":
		return token{kind: kindNull, text: text}
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return token{kind: kindNumber, text: text}
	}
	return token{kind: kindPath, text: text}
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) done() bool  { return p.pos >= len(p.tokens) }
func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) accept(k kind) (token, bool) {
	if p.done() || p.tokens[p.pos].kind != k {
		return token{}, false
	}
	p.pos++
	return p.tokens[p.pos-1], true
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(kindOr); !ok {
			return left, nil
		}
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(kindAnd); !ok {
			return left, nil
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
}

func (p *parser) unary() (node, error) {
	if _, ok := p.accept(kindNot); ok {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	if _, ok := p.accept(kindOpen); ok {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(kindClose); !ok {
			return nil, errors.New("rule: missing ')'")
		}
		return inner, nil
	}
	return p.comparison()
}

func (p *parser) comparison() (node, error) {
	path, ok := p.accept(kindPath)
	if !ok {
		if p.done() {
			return nil, errors.New("rule: unexpected end of expression")
		}
		return nil, fmt.Errorf("rule: expected a data path, got %q", p.peek().text)
	}
	op, ok := p.accept(kindOp)
	if !ok {
		return truthyNode{path: pointerFor(path.text)}, nil
	}
	if p.done() {
		return nil, fmt.Errorf("rule: missing operand after %q", op.text)
	}
	operand := p.peek()
	p.pos++

	var want any
	switch operand.kind {
	case kindString:
		want = operand.text
	case kindNumber:
		want, _ = strconv.ParseFloat(operand.text, 64)
	case kindBool:
		want = operand.text == "true"
	case kindNull:
		want = nil
	default:
		return nil, fmt.Errorf("rule: expected a literal after %q, got %q", op.text, operand.text)
	}
	if op.text != "==" && op.text != "!=" {
		if _, ok := want.(float64); !ok {
			return nil, fmt.Errorf("rule: %q needs a number operand", op.text)
		}
	}
	return compareNode{path: pointerFor(path.text), op: op.text, want: want}, nil
}

func pointerFor(path string) string {
	return strings.ReplaceAll(path, ".", "/")
}

type orNode struct{ left, right node }

func (n orNode) eval(data any) (bool, error) {
	ok, err := n.left.eval(data)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(data)
}

type andNode struct{ left, right node }

func (n andNode) eval(data any) (bool, error) {
	ok, err := n.left.eval(data)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(data)
}

type notNode struct{ inner node }

func (n notNode) eval(data any) (bool, error) {
	ok, err := n.inner.eval(data)
	return !ok && err == nil, err
}

type truthyNode struct{ path string }

func (n truthyNode) eval(data any) (bool, error) {
	value, err := resolve(data, n.path)
	if err != nil {
		return false, err
	}
	return truthy(value), nil
}

type compareNode struct {
	path string
	op   string
	want any
}

func (n compareNode) eval(data any) (bool, error) {
	value, err := resolve(data, n.path)
	if err != nil {
		return false, err
	}
	switch n.op {
	case "==":
		return equal(value, n.want), nil
	case "!=":
		return !equal(value, n.want), nil
	}
	got, ok := toFloat(value)
	if !ok {
		return false, nil
	}
	want := n.want.(float64)
	switch n.op {
	case "<":
		return got < want, nil
	case "<=":
		return got <= want, nil
	case ">":
		return got > want, nil
	default:
		return got >= want, nil
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	if f, ok := toFloat(value); ok {
		return f != 0
	}
	return true
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	default:
		return 0, false
	}
}
