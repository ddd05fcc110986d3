// Where: internal/expr/expr.go
// What: Restricted arithmetic evaluator for TTL fields.
// Why: Accept "60 * 60 * 24" style values without executing arbitrary input.
package expr

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNotArithmetic is returned when the input contains anything besides
	// numbers, + - * /, parentheses and spaces, or is syntactically malformed.
	ErrNotArithmetic = errors.New("expression is not purely mathematical")
	// ErrDivisionByZero is returned when a divisor evaluates to zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// Evaluate returns numeric values unchanged and parses strings as arithmetic.
func Evaluate(value any) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrNotArithmetic, v)
		}
		return f, nil
	case string:
		return Parse(v)
	default:
		return 0, fmt.Errorf("%w: %v", ErrNotArithmetic, value)
	}
}

// Parse evaluates an arithmetic expression string.
func Parse(input string) (float64, error) {
	p := &parser{src: input}
	p.skipSpaces()
	if p.done() {
		return 0, fmt.Errorf("%w: %q", ErrNotArithmetic, input)
	}
	result, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if !p.done() {
		return 0, p.fail()
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, fmt.Errorf("%w: %q", ErrNotArithmetic, input)
	}
	return result, nil
}

// parser is a recursive-descent evaluator over the grammar:
//
//	expression = term { ("+" | "-") term }
//	term       = unary { ("*" | "/") unary }
//	unary      = [ "+" | "-" ] primary   (never directly after another sign)
//	primary    = number | "(" expression ")"
type parser struct {
	src   string
	pos   int
	depth int
}

const maxDepth = 64

func (p *parser) parseExpression() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		op, ok := p.peek()
		if !ok || (op != '+' && op != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		op, ok := p.peek()
		if !ok || (op != '*' && op != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
			continue
		}
		if right == 0 {
			return 0, fmt.Errorf("%w: %q", ErrDivisionByZero, p.src)
		}
		left /= right
	}
}

func (p *parser) parseUnary() (float64, error) {
	p.skipSpaces()
	op, ok := p.peek()
	if !ok || (op != '+' && op != '-') {
		return p.parsePrimary()
	}
	if p.followsSign() {
		return 0, p.fail()
	}
	p.pos++
	value, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	if op == '-' {
		return -value, nil
	}
	return value, nil
}

// followsSign reports whether the nearest non-space byte before pos is a
// + or - operator. "--5", "5--3" and "+ + 2" are rejected through it.
func (p *parser) followsSign() bool {
	for i := p.pos - 1; i >= 0; i-- {
		switch p.src[i] {
		case ' ':
			continue
		case '+', '-':
			return true
		default:
			return false
		}
	}
	return false
}

func (p *parser) parsePrimary() (float64, error) {
	p.skipSpaces()
	ch, ok := p.peek()
	if !ok {
		return 0, p.fail()
	}
	if ch == '(' {
		p.depth++
		if p.depth > maxDepth {
			return 0, p.fail()
		}
		p.pos++
		value, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if next, ok := p.peek(); !ok || next != ')' {
			return 0, p.fail()
		}
		p.pos++
		p.depth--
		return value, nil
	}
	return p.parseNumber()
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	digits := 0
	dots := 0
scan:
	for !p.done() {
		ch := p.src[p.pos]
		switch {
		case ch >= '0' && ch <= '9':
			digits++
		case ch == '.':
			dots++
		default:
			break scan
		}
		p.pos++
	}
	if digits == 0 || dots > 1 {
		return 0, p.fail()
	}
	value, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, p.fail()
	}
	return value, nil
}

func (p *parser) peek() (byte, bool) {
	if p.done() {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) skipSpaces() {
	for !p.done() && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) done() bool {
	return p.pos >= len(p.src)
}

func (p *parser) fail() error {
	return fmt.Errorf("%w: %q", ErrNotArithmetic, strings.TrimSpace(p.src))
}
