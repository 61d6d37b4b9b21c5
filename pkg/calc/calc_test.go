package calc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uartfw/pkg/fault"
)

func TestEvaluate(t *testing.T) {
	testCases := []struct {
		body   string
		result []int32
		kind   fault.Kind
		token  string
	}{
		{body: "C 1 2 + 3 - 4 5 + * 6 /", result: []int32{0}},
		{body: "C 1 3 + 5 * Sx x x * x *", result: []int32{8000}},
		{body: "c 7 2 -", result: []int32{5}},
		{body: "C 7 2 /", result: []int32{3}},
		{body: "C  10\t20 ", result: []int32{20, 10}},
		{body: "C", result: []int32{}},
		{body: "C 2 sa a a", result: []int32{2, 2}},
		{body: "C 0 5 -", result: []int32{-5}},
		{body: "C 1 0 /", kind: fault.Syntax, token: "/"},
		{body: "X 1 2 +", kind: fault.Syntax, token: "X"},
		{body: "CC 1", kind: fault.Syntax, token: "CC"},
		{body: "", kind: fault.Syntax, token: ""},
		{body: "C 1 2x", kind: fault.Syntax, token: "2x"},
		{body: "C 1 ab", kind: fault.Syntax, token: "ab"},
		{body: "C 1 SX", kind: fault.Syntax, token: "SX"},
		{body: "C 1 %", kind: fault.Syntax, token: "%"},
		{body: "C 1 +", kind: fault.Stack, token: "+"},
		{body: "C Sx", kind: fault.Stack, token: "Sx"},
		{body: "C 1 y", kind: fault.Variable, token: "y"},
	}
	for _, tc := range testCases {
		t.Run(tc.body, func(t *testing.T) {
			c := &Calculator{}
			body := []byte(tc.body)
			result, err := c.Evaluate(body)
			if tc.kind == 0 {
				require.NoError(t, err)
				require.Equal(t, tc.result, result)
				return
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.kind), "%v", err)
			var calcErr *Error
			require.True(t, errors.As(err, &calcErr))
			require.Equal(t, tc.token, string(body[calcErr.Token.Start:calcErr.Token.End()]))
			require.Nil(t, result)
		})
	}
}

func TestVariablesPersist(t *testing.T) {
	c := &Calculator{}
	_, err := c.Evaluate([]byte("C 3 Sz"))
	require.NoError(t, err)
	result, err := c.Evaluate([]byte("C z z *"))
	require.NoError(t, err)
	require.Equal(t, []int32{9}, result)
	// rebinding overwrites.
	_, err = c.Evaluate([]byte("C 4 sz"))
	require.NoError(t, err)
	result, err = c.Evaluate([]byte("C z"))
	require.NoError(t, err)
	require.Equal(t, []int32{4}, result)
	require.Equal(t, 1, c.Vars.Len())
}

func TestStackBounds(t *testing.T) {
	c := &Calculator{}
	body := "C"
	for i := 0; i < StackDepth; i++ {
		body += " 1"
	}
	result, err := c.Evaluate([]byte(body))
	require.NoError(t, err)
	require.Len(t, result, StackDepth)

	_, err = c.Evaluate([]byte(body + " 1"))
	require.True(t, errors.Is(err, fault.Stack))

	var s Stack
	_, err = s.Pop()
	require.Equal(t, fault.Stack, err)
	require.Zero(t, s.Len())
}

func TestVariableBounds(t *testing.T) {
	c := &Calculator{}
	for i := 0; i < MaxVariables; i++ {
		_, err := c.Evaluate([]byte(fmt.Sprintf("C %d S%c", i, 'a'+i)))
		require.NoError(t, err)
	}
	require.Equal(t, MaxVariables, c.Vars.Len())

	// rebinding still works when full.
	_, err := c.Evaluate([]byte("C 100 Sa"))
	require.NoError(t, err)
	result, err := c.Evaluate([]byte("C a"))
	require.NoError(t, err)
	require.Equal(t, []int32{100}, result)

	_, err = c.Evaluate([]byte("C 1 Sz"))
	require.True(t, errors.Is(err, fault.Variable))
	require.Equal(t, MaxVariables, c.Vars.Len())
}

func TestResponse(t *testing.T) {
	testCases := []struct {
		name string
		resp Response
		line string
	}{
		{
			name: "stack",
			resp: Response{ID: 3, Stack: []int32{8000, -2}},
			line: "p3.st: (t) 8000 -2 (b)\n",
		},
		{
			name: "empty stack",
			resp: Response{ID: 0},
			line: "p0.st: (t) (b)\n",
		},
		{
			name: "failure without echo",
			resp: Response{ID: 255, Failure: "Stack error!"},
			line: "p255.Stack error!\n",
		},
		{
			name: "failure with echo",
			resp: Response{ID: 1, Failure: "Variable error!", Body: []byte("C 1 y +"), Mark: &Token{Start: 4, Size: 1}},
			line: "p1.Variable error!, \"C 1 >y< +\"\n",
		},
		{
			name: "mark at end",
			resp: Response{ID: 2, Failure: "Syntax error!", Body: []byte("C 1 0 /"), Mark: &Token{Start: 6, Size: 1}},
			line: "p2.Syntax error!, \"C 1 0 >/<\"\n",
		},
		{
			name: "mark past end",
			resp: Response{ID: 2, Failure: "Syntax error!", Body: []byte(""), Mark: &Token{}},
			line: "p2.Syntax error!, \">\"\n",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.line, tc.resp.String())
		})
	}
}

func TestParseResponse(t *testing.T) {
	lines := []string{
		"p3.st: (t) 8000 -2 (b)\n",
		"p0.st: (t) (b)\n",
		"p255.Stack error!\n",
		"p1.Variable error!, \"C 1 >y< +\"\n",
	}
	for _, line := range lines {
		resp, err := ParseResponse(line)
		require.NoError(t, err, line)
		require.Equal(t, line, resp.String())
	}

	resp, err := ParseResponse("p7.st: (t) 5 4 (b)")
	require.NoError(t, err)
	require.Equal(t, uint8(7), resp.ID)
	require.Equal(t, []int32{5, 4}, resp.Stack)

	resp, err = ParseResponse("p2.Syntax error!, \"C 1 0 >/<\"")
	require.NoError(t, err)
	require.Equal(t, "Syntax error!", resp.Failure)
	require.Equal(t, "C 1 0 >/<", resp.Echo)

	for _, line := range []string{Banner, "", "p.st: (t) (b)", "p256.Stack error!", "p1.st: (t) x (b)", "p1."} {
		_, err := ParseResponse(line)
		require.True(t, errors.Is(err, ErrNotResponse), "%q", line)
	}
}
