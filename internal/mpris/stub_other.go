//go:build !linux

package mpris

import "github.com/ndelorme/quaver/internal/engine"

// Adapter is a no-op on platforms without D-Bus.
type Adapter struct{}

// New returns a no-op adapter.
func New(_ *engine.Engine) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op.
func (a *Adapter) Close() error {
	return nil
}
