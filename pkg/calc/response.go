package calc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	stackPrefix = "st: (t) "
	stackSuffix = "(b)"
	echoPrefix  = ", \""
)

var (
	// ErrNotResponse indicates a line which is not a reply line.
	ErrNotResponse = errors.New("not a response line")
)

// Response is the reply line for one packet.
type Response struct {
	ID uint8
	// Stack is the result from top to bottom.
	Stack []int32
	// Failure replaces the stack when not empty.
	Failure string
	// Body is echoed after Failure with Mark highlighted when set.
	Body []byte
	Mark *Token
	// Echo is the echoed body as received by ParseResponse.
	Echo string
}

// Append appends the formatted line to dst.
func (r *Response) Append(dst []byte) []byte {
	dst = append(dst, 'p')
	dst = strconv.AppendUint(dst, uint64(r.ID), 10)
	dst = append(dst, '.')
	if r.Failure == "" {
		dst = append(dst, stackPrefix...)
		for _, v := range r.Stack {
			dst = strconv.AppendInt(dst, int64(v), 10)
			dst = append(dst, ' ')
		}
		dst = append(dst, stackSuffix...)
		return append(dst, '\n')
	}
	dst = append(dst, r.Failure...)
	switch {
	case r.Mark != nil:
		dst = append(dst, echoPrefix...)
		dst = MarkToken(dst, r.Body, *r.Mark)
		dst = append(dst, '"')
	case r.Echo != "":
		dst = append(dst, echoPrefix...)
		dst = append(dst, r.Echo...)
		dst = append(dst, '"')
	}
	return append(dst, '\n')
}

// String returns the formatted line.
func (r *Response) String() string {
	return string(r.Append(nil))
}

// MarkToken appends body with '>' before and '<' after tok.
func MarkToken(dst, body []byte, tok Token) []byte {
	for i, b := range body {
		if i == tok.Start {
			dst = append(dst, '>')
		} else if i == tok.End() && tok.Size > 0 {
			dst = append(dst, '<')
		}
		dst = append(dst, b)
	}
	if tok.Start >= len(body) {
		dst = append(dst, '>')
	} else if tok.End() == len(body) && tok.Size > 0 {
		dst = append(dst, '<')
	}
	return dst
}

// ParseResponse decodes a reply line produced by Response.Append. The
// echoed body of a failure is returned in Echo with its markers.
func ParseResponse(line string) (*Response, error) {
	line = strings.TrimSuffix(line, "\n")
	dot := strings.IndexByte(line, '.')
	if !strings.HasPrefix(line, "p") || dot < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotResponse, line)
	}
	id, err := strconv.ParseUint(line[1:dot], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: packet id %q", ErrNotResponse, line[1:dot])
	}
	resp := &Response{ID: uint8(id)}
	rest := line[dot+1:]
	if strings.HasPrefix(rest, stackPrefix) && strings.HasSuffix(rest, stackSuffix) {
		resp.Stack = []int32{}
		for _, field := range strings.Fields(rest[len(stackPrefix) : len(rest)-len(stackSuffix)]) {
			v, err := strconv.ParseInt(field, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: stack value %q", ErrNotResponse, field)
			}
			resp.Stack = append(resp.Stack, int32(v))
		}
		return resp, nil
	}
	if n := strings.Index(rest, echoPrefix); n >= 0 && strings.HasSuffix(rest, "\"") {
		resp.Failure, resp.Echo = rest[:n], rest[n+len(echoPrefix):len(rest)-1]
	} else {
		resp.Failure = rest
	}
	if resp.Failure == "" {
		return nil, fmt.Errorf("%w: empty failure", ErrNotResponse)
	}
	return resp, nil
}
