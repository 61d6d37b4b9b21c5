// Package calc implements the postfix calculator grammar: packets
// framed by 0x00 and 0xFF carrying "C" followed by whitespace separated
// integers, operators and variable references.
package calc

import (
	"fmt"

	"github.com/robotalks/uartfw/pkg/fault"
)

// Packet markers.
const (
	Header byte = 0x00
	End    byte = 0xff
)

// Banner is printed once at start up.
const Banner = "*** Serial Calculator V1 ***\n"

// Grammar is the framer grammar for calculator packets. Bodies have no
// length prefix.
type Grammar struct{}

// Markers implements framer.Grammar.
func (Grammar) Markers() (byte, byte) { return Header, End }

// PrefixLen implements framer.Grammar.
func (Grammar) PrefixLen() int { return 0 }

// BodyLen implements framer.Grammar.
func (Grammar) BodyLen([]byte) int { return -1 }

// Token locates a token in the packet body.
type Token struct {
	Start int
	Size  int
}

// End returns the index after the token.
func (t Token) End() int {
	return t.Start + t.Size
}

// Error is an evaluation error located at a token.
type Error struct {
	Kind   fault.Kind
	Token  Token
	Detail string
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %s at %d", e.Kind.Message(), e.Detail, e.Token.Start)
}

// Unwrap returns the fault kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

type tokenizer struct {
	body []byte
	tok  Token
}

func (t *tokenizer) next() bool {
	i := t.tok.End()
	for i < len(t.body) && isSpace(t.body[i]) {
		i++
	}
	j := i
	for j < len(t.body) && !isSpace(t.body[j]) {
		j++
	}
	t.tok = Token{Start: i, Size: j - i}
	return t.tok.Size > 0
}

func (t *tokenizer) text() []byte {
	return t.body[t.tok.Start:t.tok.End()]
}

// Calculator evaluates packet bodies. The stack is reset for every
// packet, variables persist.
type Calculator struct {
	Stack Stack
	Vars  Variables
}

// Evaluate runs body and returns the final stack from top to bottom.
// The first error aborts evaluation and is returned as *Error.
func (c *Calculator) Evaluate(body []byte) ([]int32, error) {
	c.Stack.Reset()
	tk := &tokenizer{body: body}
	tk.next()
	if cmd := tk.text(); len(cmd) != 1 || (cmd[0] != 'C' && cmd[0] != 'c') {
		return nil, &Error{Kind: fault.Syntax, Token: tk.tok, Detail: "unknown command"}
	}
	for tk.next() {
		if err := c.eval(tk.text()); err != nil {
			return nil, &Error{Kind: err.Kind, Token: tk.tok, Detail: err.Detail}
		}
	}
	return c.Stack.Values(), nil
}

type evalErr struct {
	Kind   fault.Kind
	Detail string
}

func (c *Calculator) eval(tok []byte) *evalErr {
	ch := tok[0]
	switch {
	case ch >= '0' && ch <= '9':
		var val int32
		for _, d := range tok {
			if d < '0' || d > '9' {
				return &evalErr{fault.Syntax, "malformed number"}
			}
			val = val*10 + int32(d-'0')
		}
		return c.push(val)
	case len(tok) == 1 && (ch == '+' || ch == '-' || ch == '*' || ch == '/'):
		if c.Stack.Len() < 2 {
			return &evalErr{fault.Stack, "missing operand"}
		}
		v1, _ := c.Stack.Pop()
		v2, _ := c.Stack.Pop()
		var res int32
		switch ch {
		case '+':
			res = v2 + v1
		case '-':
			res = v2 - v1
		case '*':
			res = v2 * v1
		case '/':
			if v1 == 0 {
				return &evalErr{fault.Syntax, "division by zero"}
			}
			res = v2 / v1
		}
		return c.push(res)
	case len(tok) == 2 && (ch == 'S' || ch == 's'):
		name := tok[1]
		if name < 'a' || name > 'z' {
			return &evalErr{fault.Syntax, "invalid variable name"}
		}
		val, err := c.Stack.Pop()
		if err != nil {
			return &evalErr{fault.Stack, "nothing to assign"}
		}
		if err := c.Vars.Set(name, val); err != nil {
			return &evalErr{fault.Variable, "too many variables"}
		}
		return nil
	case len(tok) == 1 && ch >= 'a' && ch <= 'z':
		val, ok := c.Vars.Get(ch)
		if !ok {
			return &evalErr{fault.Variable, "unbound variable"}
		}
		return c.push(val)
	}
	return &evalErr{fault.Syntax, "unrecognized token"}
}

func (c *Calculator) push(v int32) *evalErr {
	if err := c.Stack.Push(v); err != nil {
		return &evalErr{fault.Stack, "stack full"}
	}
	return nil
}
