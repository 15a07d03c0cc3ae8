package reminder

import "container/heap"

type item struct {
	entry Entry
	seq   uint64
	index int
}

// deadlineQueue is a min-heap ordered by fire time, then registration order.
type deadlineQueue []*item

func (q deadlineQueue) Len() int { return len(q) }

func (q deadlineQueue) Less(i, j int) bool {
	if q[i].entry.At.Equal(q[j].entry.At) {
		return q[i].seq < q[j].seq
	}
	return q[i].entry.At.Before(q[j].entry.At)
}

func (q deadlineQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *deadlineQueue) Push(x any) {
	it := x.(*item)
	it.index = len(*q)
	*q = append(*q, it)
}

func (q *deadlineQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*q = old[:n-1]
	return it
}

func (q *deadlineQueue) peek() *item {
	if len(*q) == 0 {
		return nil
	}
	return (*q)[0]
}

func (q *deadlineQueue) remove(it *item) {
	if it.index >= 0 {
		heap.Remove(q, it.index)
	}
}
