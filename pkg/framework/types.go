package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Task is one unit of main loop work. It must not block: work which
// cannot complete now is left in the task state for the next iteration.
type Task interface {
	RunTask(TaskContext) error
}

// TaskFunc is the func form of Task.
type TaskFunc func(TaskContext) error

// RunTask implements Task.
func (f TaskFunc) RunTask(ctx TaskContext) error {
	return f(ctx)
}

// TimeSource provides the time for tasks.
type TimeSource interface {
	Time() time.Time
}

// TaskContext provides the context of the current loop iteration.
type TaskContext interface {
	TimeSource
	// Context retrieves context.Context.
	Context() context.Context
	// Iteration is the sequence number of the current iteration.
	Iteration() uint64
	// PriorityLevel gets the current priority level.
	PriorityLevel() int

	LoopControl
}

// PriorityLevels is the total levels of priorities.
const PriorityLevels int = 8

// Predefined priority levels, lower runs first.
const (
	PrLvTop    int = 0
	PrLvInput  int = 2
	PrLvNormal int = 4
	PrLvOutput int = 6
	PrLvIdle   int = PriorityLevels - 1
)

// LoopControl exposes access to the main loop.
type LoopControl interface {
	// TriggerNext schedules the next iteration to be executed
	// immediately after the current iteration. It is safe to call
	// from any goroutine, including interrupt handlers.
	TriggerNext()
}
