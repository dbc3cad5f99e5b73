package ecs

import "errors"

// Command is a deferred world mutation. Commands are queued from places
// that must not touch topology (solver callbacks) and applied later.
type Command struct {
	Name  string
	Apply func() error
}

// CommandQueue is a simple FIFO queue.
type CommandQueue struct {
	items []Command
}

// Push adds a command.
func (q *CommandQueue) Push(cmd Command) {
	if q == nil || cmd.Apply == nil {
		return
	}
	q.items = append(q.items, cmd)
}

// Len reports the number of pending commands.
func (q *CommandQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all commands and clears the queue.
func (q *CommandQueue) Drain() []Command {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Flush applies every pending command in order. Commands pushed while
// flushing run in the same call. All errors are joined.
func (q *CommandQueue) Flush() error {
	var errs []error
	for q.Len() > 0 {
		for _, cmd := range q.Drain() {
			if err := cmd.Apply(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
