// File: reactor/tasks_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import "testing"

func TestTaskQueueDrainsInOrder(t *testing.T) {
	tq := NewTaskQueue()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		tq.Post(func() { order = append(order, i) })
	}
	if tq.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", tq.Len())
	}
	tq.Drain(nil)
	if tq.Len() != 0 {
		t.Fatalf("Len() after drain = %d, want 0", tq.Len())
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("drain order = %v, want FIFO", order)
		}
	}
}

func TestTaskQueueNestedPostsRunSameDrain(t *testing.T) {
	tq := NewTaskQueue()
	ran := []string{}
	tq.Post(func() {
		ran = append(ran, "outer")
		tq.Post(func() { ran = append(ran, "inner") })
	})
	tq.Drain(nil)
	if len(ran) != 2 || ran[0] != "outer" || ran[1] != "inner" {
		t.Fatalf("ran = %v, want [outer inner]", ran)
	}
}
