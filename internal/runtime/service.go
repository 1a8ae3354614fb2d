package runtime

import "context"

// Service is a long-running backend session, such as the event stream of
// an app.App.
type Service interface {
	RunContext(ctx context.Context) error
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context) error

func (f ServiceFunc) RunContext(ctx context.Context) error {
	return f(ctx)
}
