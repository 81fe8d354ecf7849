package gate

import "context"

// RunExclusive runs work under g and returns its result. It behaves like
// Gate.Run.
func RunExclusive[T any](
	ctx context.Context,
	g *Gate,
	work func(ctx context.Context) (T, error),
	opts ...Option,
) (T, error) {
	var result T
	err := g.Run(ctx, func(ctx context.Context) error {
		var err error
		result, err = work(ctx)
		return err
	}, opts...)
	return result, err
}

// TryRunExclusive runs work under g only if the gate is free. ran is false,
// with a zero result and nil error, when the gate was held.
func TryRunExclusive[T any](
	ctx context.Context,
	g *Gate,
	work func(ctx context.Context) (T, error),
	opts ...Option,
) (result T, ran bool, err error) {
	ran, err = g.TryRun(ctx, func(ctx context.Context) error {
		var err error
		result, err = work(ctx)
		return err
	}, opts...)
	return result, ran, err
}
