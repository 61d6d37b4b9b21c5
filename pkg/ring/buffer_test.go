package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	overflows, underflows int
}

func (o *countingObserver) OnOverflow(*Buffer)  { o.overflows++ }
func (o *countingObserver) OnUnderflow(*Buffer) { o.underflows++ }

func drain(b *Buffer) []byte {
	var out []byte
	for !b.IsEmpty() {
		out = append(out, b.Pop())
	}
	return out
}

func TestFIFO(t *testing.T) {
	testCases := []struct {
		name string
		// positive values push that many sequential bytes, negative pop.
		ops []int
	}{
		{"push then pop", []int{10, -10}},
		{"interleaved", []int{3, -1, 5, -4, 2, -5}},
		{"wrap around", []int{100, -90, 100, -110}},
		{"full capacity", []int{Capacity, -Capacity}},
		{"repeated full cycles", []int{Capacity, -Capacity, Capacity, -64, 64, -Capacity}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			obs := &countingObserver{}
			b := New("test", obs)
			var next, expect byte
			for _, op := range tc.ops {
				if op > 0 {
					for i := 0; i < op; i++ {
						b.Push(next)
						next++
					}
					continue
				}
				for i := 0; i < -op; i++ {
					require.Equal(t, expect, b.Pop())
					expect++
				}
			}
			require.True(t, b.IsEmpty())
			require.Zero(t, obs.overflows)
			require.Zero(t, obs.underflows)
		})
	}
}

func TestOverflow(t *testing.T) {
	obs := &countingObserver{}
	b := New("in", obs)
	for i := 0; i < Capacity; i++ {
		b.Push(byte(i))
	}
	require.True(t, b.IsFull())
	require.Zero(t, obs.overflows)

	b.Push(0xaa)
	require.Equal(t, 1, obs.overflows)
	require.Equal(t, uint32(1), b.Overflows())
	require.Equal(t, Capacity, b.Len())

	// oldest byte (0) is gone, order of the rest is preserved.
	out := drain(b)
	require.Len(t, out, Capacity)
	for i := 0; i < Capacity-1; i++ {
		require.Equal(t, byte(i+1), out[i])
	}
	require.Equal(t, byte(0xaa), out[Capacity-1])
}

func TestUnderflow(t *testing.T) {
	obs := &countingObserver{}
	b := New("out", obs)
	require.Equal(t, byte(0), b.Pop())
	require.Equal(t, 1, obs.underflows)
	require.Equal(t, uint32(1), b.Underflows())
	require.True(t, b.IsEmpty())
	require.Zero(t, b.Len())

	b.Push(7)
	require.Equal(t, byte(7), b.Pop())
	require.Equal(t, byte(0), b.Pop())
	require.Equal(t, 2, obs.underflows)
	require.True(t, b.IsEmpty())
}

func TestObserverFuncs(t *testing.T) {
	var overflowed *Buffer
	b := New("f", ObserverFuncs{Overflow: func(b *Buffer) { overflowed = b }})
	b.Pop() // nil Underflow func is skipped
	for i := 0; i <= Capacity; i++ {
		b.Push(1)
	}
	require.True(t, overflowed == b)
}

func TestReset(t *testing.T) {
	var b Buffer
	b.Push(1)
	b.Push(2)
	b.Reset()
	require.True(t, b.IsEmpty())
	b.Push(3)
	require.Equal(t, byte(3), b.Pop())
}
