// Package queue provides an unbounded lock-free multi-producer/multi-consumer
// FIFO queue based on the Michael-Scott algorithm.
//
// Nodes form a singly-linked list with a permanent dummy node at the head.
// Producers link new nodes after the tail; consumers advance the head. Both
// sides help a lagging tail forward, so no goroutine waits on another.
//
// Nodes are reclaimed by the garbage collector once no goroutine can reach
// them. A goroutine that loaded a node pointer keeps that node alive for as
// long as it holds the pointer, so a node is never freed or reused while a
// concurrent retry loop still dereferences it.
//
// A node's value is never written after the node is linked. The dummy at the
// head therefore keeps the most recently dequeued value reachable until the
// next dequeue, so an idle queue retains at most one value.
package queue

import (
	"runtime"
	"sync/atomic"
)

// spinLimit is the number of failed attempts before a retry loop yields.
const spinLimit = 16

type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// Queue is an unbounded MPMC queue. The zero value is not usable; call New.
type Queue[T any] struct {
	head atomic.Pointer[node[T]]
	_    [56]byte // keep head and tail on separate cache lines
	tail atomic.Pointer[node[T]]
	_    [56]byte
	size atomic.Int64
}

// New returns an empty queue holding only the dummy node.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	dummy := &node[T]{}
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// Enqueue appends v at the tail. It never blocks and always succeeds.
func (q *Queue[T]) Enqueue(v T) {
	n := &node[T]{value: v}
	var b backoff
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			b.wait()
			continue
		}
		if next == nil {
			if tail.next.CompareAndSwap(nil, n) {
				// Advisory; another goroutine may already have moved tail
				q.tail.CompareAndSwap(tail, n)
				q.size.Add(1)
				return
			}
		} else {
			// Another producer linked a node without advancing tail yet
			q.tail.CompareAndSwap(tail, next)
		}
		b.wait()
	}
}

// TryDequeue removes and returns the value at the head.
// The boolean is false when the queue held no element at the time of the attempt.
func (q *Queue[T]) TryDequeue() (T, bool) {
	var b backoff
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			b.wait()
			continue
		}
		if head == tail {
			if next == nil {
				var zero T
				return zero, false
			}
			// Tail is lagging behind a linked node, help it forward
			q.tail.CompareAndSwap(tail, next)
			b.wait()
			continue
		}
		// Read before the CAS: once head moves, next is the new dummy and
		// may be dequeued past by another consumer
		v := next.value
		if q.head.CompareAndSwap(head, next) {
			q.size.Add(-1)
			return v, true
		}
		b.wait()
	}
}

// Empty reports whether the queue held no element at the time of the call.
func (q *Queue[T]) Empty() bool {
	for {
		head := q.head.Load()
		next := head.next.Load()
		if head == q.head.Load() {
			return next == nil
		}
	}
}

// Len returns an approximate element count. The count is updated after each
// operation takes effect, so it may briefly lag or lead under contention.
func (q *Queue[T]) Len() int64 {
	n := q.size.Load()
	if n < 0 {
		return 0
	}
	return n
}

// backoff spins for a bounded number of retries, then yields the processor
type backoff struct {
	attempts int
}

func (b *backoff) wait() {
	b.attempts++
	if b.attempts < spinLimit {
		return
	}
	runtime.Gosched()
	if b.attempts > 2*spinLimit {
		b.attempts = spinLimit
	}
}
