package framework

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopOrder(t *testing.T) {
	var order []string
	task := func(name string) Task {
		return TaskFunc(func(ctx TaskContext) error {
			order = append(order, name)
			return nil
		})
	}
	l := NewLoop().
		AddTask(PrLvOutput, task("output")).
		AddTask(PrLvInput, task("packet"), task("dispatch")).
		AddTask(PrLvIdle, TaskFunc(func(ctx TaskContext) error {
			return errors.New("logged and ignored")
		}))
	l.RunOnce(context.Background())
	l.RunOnce(context.Background())
	require.Equal(t, []string{"packet", "dispatch", "output", "packet", "dispatch", "output"}, order)
}

func TestLoopTrigger(t *testing.T) {
	var iterations int32
	l := NewLoop()
	l.Interval = time.Hour
	l.AddTask(PrLvNormal, TaskFunc(func(ctx TaskContext) error {
		if atomic.AddInt32(&iterations, 1) < 3 {
			ctx.TriggerNext()
		}
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	l.TriggerNext()
	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&iterations) < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, int32(3), atomic.LoadInt32(&iterations))
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
}

func TestTickerStartsWithLoop(t *testing.T) {
	var ticks int32
	l := NewLoop().AddRunnable(&Ticker{
		Interval: time.Millisecond,
		Tick:     func() { atomic.AddInt32(&ticks, 1) },
	})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&ticks) < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.True(t, atomic.LoadInt32(&ticks) >= 2)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(context.DeadlineExceeded, nil)
	err := errs.Aggregate()
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.False(t, errors.Is(err, context.Canceled))
}
