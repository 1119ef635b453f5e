// File: reactor/tasks.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Deferred task queue drained from a loop hook.

package reactor

import "github.com/eapache/queue"

// TaskQueue is a FIFO of deferred work. Callbacks post teardown or
// bookkeeping that must not run mid-dispatch; the queue drains at the
// top of the next cycle. Like the loop itself, a TaskQueue belongs to a
// single thread and takes no locks.
type TaskQueue struct {
	q *queue.Queue
}

// NewTaskQueue creates an empty task queue.
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{q: queue.New()}
}

// Post appends a task to the queue.
func (tq *TaskQueue) Post(task func()) {
	tq.q.Add(task)
}

// Len reports the number of pending tasks.
func (tq *TaskQueue) Len() int {
	return tq.q.Length()
}

// Drain runs every queued task in posting order. Tasks posted while
// draining run in the same drain. The signature matches SleepProc, so a
// queue installs directly as a loop's before-sleep hook:
//
//	loop.SetBeforeSleep(tasks.Drain)
func (tq *TaskQueue) Drain(*EventLoop) {
	for tq.q.Length() > 0 {
		tq.q.Remove().(func())()
	}
}
