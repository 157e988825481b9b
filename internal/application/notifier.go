package application

import "context"

type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ string) error {
	return nil
}

// Navigator performs the external side of a full page navigation.
type Navigator interface {
	Open(ctx context.Context, document string) error
}

type NoopNavigator struct{}

func (n *NoopNavigator) Open(_ context.Context, _ string) error {
	return nil
}
