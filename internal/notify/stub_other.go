//go:build !linux

package notify

// New returns a no-op notifier on platforms without D-Bus.
func New() (Notifier, error) {
	return &noopNotifier{}, nil
}

type noopNotifier struct{}

func (n *noopNotifier) Notify(_ Notification) (uint32, error) {
	return 0, nil
}

func (n *noopNotifier) Close(_ uint32) error {
	return nil
}
