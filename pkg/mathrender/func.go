package mathrender

import "context"

// Func adapts a plain function to the Renderer interface.
type Func func(ctx context.Context, body string, opts Options) (string, error)

// Name implements Renderer.
func (f Func) Name() string {
	return "func"
}

// Render implements Renderer.
func (f Func) Render(ctx context.Context, body string, opts Options) (string, error) {
	return f(ctx, body, opts)
}
