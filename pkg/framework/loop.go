package framework

import (
	"context"
	"log"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the idle polling interval of the loop.
const DefaultInterval = 10 * time.Millisecond

// Loop is the cooperative main loop. Every iteration runs all tasks in
// priority order, each to completion. Iterations happen every Interval
// and immediately when triggered.
type Loop struct {
	Interval time.Duration

	tasks   [PriorityLevels][]Task
	runners []Runnable

	iteration uint64
	wakeUpCh  chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopIteration struct {
	*Loop
	ctx           context.Context
	time          time.Time
	seq           uint64
	priorityLevel int
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, wakeUpCh: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddTask registers tasks at a priority level. Tasks at the same level
// run in the order added. Tasks which are also Runnable are started
// together with the loop.
func (l *Loop) AddTask(priorityLevel int, tasks ...Task) *Loop {
	l.tasks[priorityLevel] = append(l.tasks[priorityLevel], tasks...)
	for _, task := range tasks {
		if runner, ok := task.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnables started with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	runner := NewRunnerWith(ctx)
	runner.Go(l.runners...)
	defer runner.Wait()

	interval := l.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.RunOnce(ctx)
		case <-l.wakeUpCh:
			l.RunOnce(ctx)
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail() {
	if err := l.Run(context.TODO()); err != nil {
		log.Fatalln(err)
	}
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// RunOnce runs a single iteration in the calling goroutine.
func (l *Loop) RunOnce(ctx context.Context) {
	l.iteration++
	iter := &loopIteration{Loop: l, ctx: ctx, time: time.Now(), seq: l.iteration}
	for i := 0; i < PriorityLevels; i++ {
		iter.priorityLevel = i
		for _, task := range l.tasks[i] {
			if err := task.RunTask(iter); err != nil {
				glog.Errorf("task error: %v", err)
			}
		}
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) Iteration() uint64 {
	return t.seq
}

func (t *loopIteration) PriorityLevel() int {
	return t.priorityLevel
}

// Ticker runs a function periodically in its own goroutine, like a
// timer interrupt firing independently of the main loop.
type Ticker struct {
	Interval time.Duration
	Tick     func()
}

// Name implements Named.
func (t *Ticker) Name() string {
	return "ticker"
}

// Run implements Runnable.
func (t *Ticker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.Tick()
		}
	}
}
