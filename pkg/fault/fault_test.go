package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	var shown []Kind
	r := NewRegister(IndicatorFunc(func(k Kind) { shown = append(shown, k) }))
	require.Empty(t, r.Message())

	r.Raise(Overflow)
	r.Raise(Syntax)
	require.Equal(t, Overflow|Syntax, r.Bits())
	require.Equal(t, "Syntax error!", r.Message())
	require.True(t, r.Bits().Has(Syntax))
	require.False(t, r.Bits().Has(Stack))

	r.Clear()
	require.Zero(t, r.Bits())
	require.Empty(t, r.Message())
	// clearing again does not touch the outputs.
	r.Clear()
	require.Equal(t, []Kind{Overflow, Overflow | Syntax, 0}, shown)
}

func TestKindMessages(t *testing.T) {
	testCases := []struct {
		kind Kind
		msg  string
	}{
		{Overflow, "IO buffer overflow!"},
		{Underflow, "IO buffer underflow!"},
		{Packet, "Packet format error!"},
		{Syntax, "Syntax error!"},
		{Stack, "Stack error!"},
		{Variable, "Variable error!"},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.msg, tc.kind.Message())
		require.Equal(t, tc.msg, tc.kind.Error())
		require.True(t, Mask.Has(tc.kind))
	}
	require.Equal(t, "unknown error", Kind(0x40).Error())
}

func TestKindOf(t *testing.T) {
	k, ok := KindOf(fmt.Errorf("wrapped: %w", Variable))
	require.True(t, ok)
	require.Equal(t, Variable, k)
	_, ok = KindOf(errors.New("plain"))
	require.False(t, ok)
}
