package txqueue

import (
	"container/heap"
	"fmt"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
)

// Item is a single frame awaiting transmission on one media.
type Item struct {
	Deadline cyphal.TimePoint
	FrameID  uint32
	Payload  []byte
	Priority cyphal.Priority

	seq uint64 // enqueue order, breaks priority ties (FIFO)
}

// Queue is a priority queue of Items for a single media, ordered by
// (Priority, enqueue-order). It is not safe for concurrent use; the
// transport core is single-threaded.
//
// capacity bounds the queue the way a caller-supplied pool bounds
// every other allocation in this module: zero means unbounded, a
// positive value makes Enqueue fail with cyphal.ErrMemory once full
// rather than growing forever.
type Queue struct {
	heap     itemHeap
	nextSeq  uint64
	capacity int
}

// NewQueue creates an empty queue that holds at most capacity items.
// A capacity of 0 means unbounded.
func NewQueue(capacity int) *Queue {
	return &Queue{capacity: capacity}
}

// Len returns the number of items currently queued.
func (q *Queue) Len() int {
	return q.heap.Len()
}

// Enqueue inserts a new frame with the given deadline and priority. It
// returns cyphal.ErrMemory if the queue is at capacity.
func (q *Queue) Enqueue(frameID uint32, payload []byte, deadline cyphal.TimePoint, priority cyphal.Priority) error {
	if q.capacity > 0 && q.heap.Len() >= q.capacity {
		return fmt.Errorf("txqueue: capacity %d exceeded: %w", q.capacity, cyphal.ErrMemory)
	}
	it := &Item{
		Deadline: deadline,
		FrameID:  frameID,
		Payload:  payload,
		Priority: priority,
		seq:      q.nextSeq,
	}
	q.nextSeq++
	heap.Push(&q.heap, it)
	return nil
}

// Peek returns the highest-priority item without removing it, or nil
// if the queue is empty.
func (q *Queue) Peek() *Item {
	if q.heap.Len() == 0 {
		return nil
	}
	return q.heap[0]
}

// Pop removes and returns the highest-priority item, or nil if the
// queue is empty.
func (q *Queue) Pop() *Item {
	if q.heap.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.heap).(*Item)
}

// Drain removes every queued item without transmitting any of them.
// pkg/transport does not call it: an Engine has no teardown step that
// empties its queues.
func (q *Queue) Drain() {
	q.heap = q.heap[:0]
}

// itemHeap implements container/heap.Interface. Lower Priority values
// sort first (Exceptional < ... < Optional per cyphal.Priority); among
// equal priorities, lower seq (earlier enqueue) sorts first.
type itemHeap []*Item

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) {
	*h = append(*h, x.(*Item))
}

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}
