package queue

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueueIsEmpty(t *testing.T) {
	q := New[int]()

	assert.True(t, q.Empty())
	assert.Equal(t, int64(0), q.Len())

	v, ok := q.TryDequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestFIFOOrder(t *testing.T) {
	q := New[string]()
	for _, s := range []string{"a", "b", "c"} {
		q.Enqueue(s)
	}
	assert.Equal(t, int64(3), q.Len())
	assert.False(t, q.Empty())

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok)
	assert.True(t, q.Empty())
}

func TestInterleavedEnqueueDequeue(t *testing.T) {
	q := New[int]()
	q.Enqueue(1)
	v, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.True(t, q.Empty())

	q.Enqueue(2)
	q.Enqueue(3)
	v, _ = q.TryDequeue()
	assert.Equal(t, 2, v)
	q.Enqueue(4)
	v, _ = q.TryDequeue()
	assert.Equal(t, 3, v)
	v, _ = q.TryDequeue()
	assert.Equal(t, 4, v)
	assert.True(t, q.Empty())
}

// TestConcurrentExactlyOnce checks that every enqueued element is dequeued
// exactly once with concurrent producers and consumers
func TestConcurrentExactlyOnce(t *testing.T) {
	const (
		producers   = 8
		consumers   = 4
		perProducer = 5000
		total       = producers * perProducer
	)

	q := New[int]()
	seen := make([]atomic.Int32, total)
	var consumed atomic.Int64

	var prodWg sync.WaitGroup
	for p := 0; p < producers; p++ {
		prodWg.Add(1)
		go func(p int) {
			defer prodWg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(p*perProducer + i)
			}
		}(p)
	}

	var consWg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		consWg.Add(1)
		go func() {
			defer consWg.Done()
			for consumed.Load() < total {
				v, ok := q.TryDequeue()
				if !ok {
					continue
				}
				seen[v].Add(1)
				consumed.Add(1)
			}
		}()
	}

	prodWg.Wait()
	consWg.Wait()

	assert.Equal(t, int64(total), consumed.Load())
	for i := range seen {
		if n := seen[i].Load(); n != 1 {
			t.Fatalf("element %d dequeued %d times", i, n)
		}
	}
	assert.True(t, q.Empty())
	assert.Equal(t, int64(0), q.Len())
}

// TestPerProducerOrder checks that a single consumer observes each producer's
// elements in the order that producer enqueued them
func TestPerProducerOrder(t *testing.T) {
	const (
		producers   = 4
		perProducer = 2000
	)

	type item struct {
		producer int
		seq      int
	}

	q := New[item]()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(item{producer: p, seq: i})
			}
		}(p)
	}
	wg.Wait()

	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	count := 0
	for {
		it, ok := q.TryDequeue()
		if !ok {
			break
		}
		require.Greater(t, it.seq, last[it.producer], "producer %d out of order", it.producer)
		last[it.producer] = it.seq
		count++
	}
	assert.Equal(t, producers*perProducer, count)
}

func TestByteSliceValues(t *testing.T) {
	q := New[[]byte]()
	q.Enqueue([]byte("first"))
	q.Enqueue(nil)

	v, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, []byte("first"), v)

	v, ok = q.TryDequeue()
	require.True(t, ok)
	assert.Nil(t, v)
}

func BenchmarkEnqueueDequeueParallel(b *testing.B) {
	q := New[int]()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q.Enqueue(i)
			q.TryDequeue()
			i++
		}
	})
}
