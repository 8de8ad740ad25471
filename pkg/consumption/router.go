package consumption

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-mq/pkg/transport"
)

// RouterProperty is the message property naming the target processor.
const RouterProperty = "processor"

// Router dispatches messages to processors registered under the name found
// in the RouterProperty property. Unroutable messages are rejected.
type Router struct {
	mu         sync.RWMutex
	processors map[string]MessageProcessor
	logger     *logrus.Entry
}

var _ MessageProcessor = (*Router)(nil)

func NewRouter(logger *logrus.Entry) *Router {
	if logger == nil {
		logger = logrusNop()
	}
	return &Router{
		processors: map[string]MessageProcessor{},
		logger:     logger,
	}
}

// Add registers p under name, replacing a previous registration.
func (r *Router) Add(name string, p MessageProcessor) {
	if p == nil {
		panic("consumption: nil processor for " + name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[name] = p
}

func (r *Router) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.processors))
	for name := range r.processors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Process runs the routed processor. A panicking processor yields an error
// wrapping ErrProcessorPanic.
func (r *Router) Process(ctx context.Context, msg transport.Message, session transport.Session) (status Status, err error) {
	name := msg.Properties().String(RouterProperty)

	r.mu.RLock()
	p, ok := r.processors[name]
	r.mu.RUnlock()
	if !ok {
		r.logger.WithField(RouterProperty, name).Warn("no processor for message, rejecting")
		return StatusReject, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.WithField(RouterProperty, name).Errorf("processor panicked: %v", rec)
			status, err = "", fmt.Errorf("%w: %s: %v", ErrProcessorPanic, name, rec)
		}
	}()
	return p.Process(ctx, msg, session)
}
