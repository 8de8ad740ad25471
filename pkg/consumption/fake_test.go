package consumption

import (
	"context"
	"sync"
	"time"

	"github.com/iota-uz/iota-mq/pkg/transport"
)

type settled struct {
	body    string
	status  Status
	queue   string
	requeue bool
}

type fakeSession struct {
	mu        sync.Mutex
	pending   map[transport.Queue][]transport.Message
	settled   []settled
	consumers []*fakeConsumer

	receiveErr error
	settleErr  error
}

func newFakeSession() *fakeSession {
	return &fakeSession{pending: map[transport.Queue][]transport.Message{}}
}

func (s *fakeSession) push(queue, body string, props transport.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := transport.NewQueue(queue)
	s.pending[q] = append(s.pending[q], transport.NewMessage(body, props, nil))
}

func (s *fakeSession) CreateMessage() transport.Message {
	return transport.NewMessage("", nil, nil)
}

func (s *fakeSession) CreateQueue(name string) transport.Queue {
	return transport.NewQueue(name)
}

func (s *fakeSession) CreateProducer() transport.Producer {
	return nil
}

func (s *fakeSession) CreateConsumer(queue transport.Queue) transport.Consumer {
	c := &fakeConsumer{session: s, queue: queue}
	s.consumers = append(s.consumers, c)
	return c
}

func (s *fakeSession) Close() error {
	return nil
}

type fakeConsumer struct {
	session  *fakeSession
	queue    transport.Queue
	receives int
}

func (c *fakeConsumer) Queue() transport.Queue {
	return c.queue
}

func (c *fakeConsumer) Receive(ctx context.Context, timeout time.Duration) (transport.Message, error) {
	s := c.session
	s.mu.Lock()
	defer s.mu.Unlock()

	c.receives++
	if s.receiveErr != nil {
		return nil, s.receiveErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msgs := s.pending[c.queue]
	if len(msgs) == 0 {
		return nil, nil
	}
	s.pending[c.queue] = msgs[1:]
	return msgs[0], nil
}

func (c *fakeConsumer) Acknowledge(_ context.Context, msg transport.Message) error {
	return c.settle(msg, StatusAck, false)
}

func (c *fakeConsumer) Reject(_ context.Context, msg transport.Message, requeue bool) error {
	if requeue {
		return c.settle(msg, StatusRequeue, true)
	}
	return c.settle(msg, StatusReject, false)
}

func (c *fakeConsumer) settle(msg transport.Message, status Status, requeue bool) error {
	s := c.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settleErr != nil {
		return s.settleErr
	}
	s.settled = append(s.settled, settled{body: msg.Body(), status: status, queue: c.queue.Name(), requeue: requeue})
	return nil
}

// recorder records hook invocations and can interrupt on a given hook.
type recorder struct {
	NoopExtension

	hooks       []string
	interruptOn string
	afterCalls  int
	calls       map[string]int
}

func (r *recorder) record(hook string, c *Context) {
	r.hooks = append(r.hooks, hook)
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[hook]++
	if hook == r.interruptOn && r.calls[hook] > r.afterCalls {
		c.SetExecutionInterrupted(true, "stop at "+hook)
	}
}

func (r *recorder) OnStart(_ context.Context, c *Context)         { r.record("start", c) }
func (r *recorder) OnBeforeReceive(_ context.Context, c *Context) { r.record("before", c) }
func (r *recorder) OnPreReceived(_ context.Context, c *Context)   { r.record("pre", c) }
func (r *recorder) OnPostReceived(_ context.Context, c *Context)  { r.record("post", c) }
func (r *recorder) OnIdle(_ context.Context, c *Context)          { r.record("idle", c) }
func (r *recorder) OnInterrupted(_ context.Context, c *Context)   { r.record("interrupted", c) }
