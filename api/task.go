// File: api/task.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Task model for the cooperative executor. A task is a resumable poll
// function: the executor calls it whenever the task has been marked
// runnable, and the function either completes or suspends after
// registering interest through the waker in its Context.

package api

// Poll is the outcome of resuming a task one step.
type Poll uint8

const (
	// Pending means the task cannot progress further right now. The task
	// must have registered its waker with some event source before
	// returning Pending, or it will never be resumed.
	Pending Poll = iota

	// Done means the task completed and its slot may be freed.
	Done
)

// String returns a human-readable poll outcome.
func (p Poll) String() string {
	switch p {
	case Pending:
		return "pending"
	case Done:
		return "done"
	default:
		return "invalid"
	}
}

// TaskFunc is a single resumable unit of work. It is invoked only from
// the executor's run loop, never from interrupt context, and runs
// exactly one step per invocation: until it suspends (Pending) or
// completes (Done).
type TaskFunc func(cx *Context) Poll

// TaskHandle identifies a spawned task: a slot index in the arena plus
// the generation the slot carried when the task was created. A handle
// outliving its task is detected by a generation mismatch and treated
// as stale, never as a reference to the slot's next occupant.
type TaskHandle struct {
	Slot uint32
	Gen  uint32
}

// Context carries the per-task resume state into a poll step. The only
// thing a task may take out of it is its Waker; Contexts themselves
// must not be retained across poll steps.
type Context struct {
	waker Waker
}

// NewContext builds a Context around a waker. Called by the executor
// before each poll step; task code has no reason to construct one.
func NewContext(w Waker) Context {
	return Context{waker: w}
}

// Waker returns a copyable waker bound to this task. Tasks hand it to
// event sources (alarm driver, interrupt lines, mailboxes) before
// returning Pending.
func (c *Context) Waker() Waker {
	return c.waker
}
