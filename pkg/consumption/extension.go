package consumption

import "context"

// Extension hooks into the driver loop. Hooks may interrupt the run through
// Context.SetExecutionInterrupted; the loop checks the flag between steps.
type Extension interface {
	// OnStart runs once before the first cycle.
	OnStart(ctx context.Context, c *Context)
	// OnBeforeReceive runs before every receive attempt.
	OnBeforeReceive(ctx context.Context, c *Context)
	// OnPreReceived runs after a message was received and before it is
	// processed. Setting a status here skips the processor.
	OnPreReceived(ctx context.Context, c *Context)
	// OnPostReceived runs after the message was settled.
	OnPostReceived(ctx context.Context, c *Context)
	// OnIdle runs when a receive attempt timed out.
	OnIdle(ctx context.Context, c *Context)
	// OnInterrupted runs once when the run ends.
	OnInterrupted(ctx context.Context, c *Context)
}

// NoopExtension implements every hook as a no-op. Embed it to override only
// the hooks an extension needs.
type NoopExtension struct{}

func (NoopExtension) OnStart(context.Context, *Context)         {}
func (NoopExtension) OnBeforeReceive(context.Context, *Context) {}
func (NoopExtension) OnPreReceived(context.Context, *Context)   {}
func (NoopExtension) OnPostReceived(context.Context, *Context)  {}
func (NoopExtension) OnIdle(context.Context, *Context)          {}
func (NoopExtension) OnInterrupted(context.Context, *Context)   {}

var _ Extension = NoopExtension{}

// ChainExtension calls its extensions in order. Every extension sees every
// hook, even after an earlier one interrupted the run.
type ChainExtension struct {
	extensions []Extension
}

var _ Extension = (*ChainExtension)(nil)

func NewChainExtension(extensions ...Extension) *ChainExtension {
	chain := &ChainExtension{}
	for _, e := range extensions {
		if e != nil {
			chain.extensions = append(chain.extensions, e)
		}
	}
	return chain
}

func (ch *ChainExtension) OnStart(ctx context.Context, c *Context) {
	for _, e := range ch.extensions {
		e.OnStart(ctx, c)
	}
}

func (ch *ChainExtension) OnBeforeReceive(ctx context.Context, c *Context) {
	for _, e := range ch.extensions {
		e.OnBeforeReceive(ctx, c)
	}
}

func (ch *ChainExtension) OnPreReceived(ctx context.Context, c *Context) {
	for _, e := range ch.extensions {
		e.OnPreReceived(ctx, c)
	}
}

func (ch *ChainExtension) OnPostReceived(ctx context.Context, c *Context) {
	for _, e := range ch.extensions {
		e.OnPostReceived(ctx, c)
	}
}

func (ch *ChainExtension) OnIdle(ctx context.Context, c *Context) {
	for _, e := range ch.extensions {
		e.OnIdle(ctx, c)
	}
}

func (ch *ChainExtension) OnInterrupted(ctx context.Context, c *Context) {
	for _, e := range ch.extensions {
		e.OnInterrupted(ctx, c)
	}
}
