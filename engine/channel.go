package engine

import (
	"github.com/reelplay/reel/internal/queue"
	"github.com/reelplay/reel/metrics"
)

// channel carries messages from the worker to the goroutine owning the
// engine state. Posting never blocks; delivery is FIFO and exactly once.
type channel struct {
	queue   *queue.Queue[message]
	metrics *metrics.Metrics
}

func newChannel(m *metrics.Metrics) *channel {
	return &channel{
		queue:   queue.New[message](),
		metrics: m,
	}
}

// post must only be called by the worker.
func (c *channel) post(m message) {
	c.metrics.QueueDepth.Inc()
	if !c.queue.Push(m) {
		c.metrics.QueueDepth.Dec()
		return
	}
	c.metrics.MessagesPosted.WithLabelValues(m.kind().String()).Inc()
}

func (c *channel) receive() (message, bool) {
	m, ok := c.queue.Pop()
	if ok {
		c.metrics.QueueDepth.Dec()
	}
	return m, ok
}

// ready fires when messages may be pending.
func (c *channel) ready() <-chan struct{} {
	return c.queue.Ready()
}

// close is called by the worker after its final post.
func (c *channel) close() {
	c.queue.Close()
}

func (c *channel) done() <-chan struct{} {
	return c.queue.Done()
}

func (c *channel) pending() int {
	return c.queue.Len()
}
