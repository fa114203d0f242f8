package device

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

var _ ControlService = (*Fleet)(nil)

// Fleet is an in-memory device registry. Control commands change the
// recorded status only; nothing is sent to real hardware.
type Fleet struct {
	mu      sync.RWMutex
	devices []Device
}

// NewFleet creates a Fleet seeded with devices.
func NewFleet(devices []Device) *Fleet {
	return &Fleet{devices: slices.Clone(devices)}
}

// List returns every device in registration order.
func (f *Fleet) List() []Device {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.devices)
}

// Get returns a single device.
func (f *Fleet) Get(id int) (Device, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	i := f.index(id)
	if i < 0 {
		return Device{}, ErrNotFound
	}
	return f.devices[i], nil
}

// Stats summarizes the current fleet.
func (f *Fleet) Stats() Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return Summarize(f.devices)
}

// Control applies action to the device and returns its new state.
func (f *Fleet) Control(ctx context.Context, id int, action Action) (Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return Device{}, ErrNotFound
	}

	prev := f.devices[i]
	next, err := Apply(prev, action)
	if err != nil {
		return prev, err
	}
	f.devices[i] = next

	zctx.From(ctx).Info("Device control",
		zap.Int("device_id", id),
		zap.String("action", string(action)),
		zap.String("from", string(prev.Status)),
		zap.String("to", string(next.Status)),
	)
	return next, nil
}

func (f *Fleet) index(id int) int {
	return slices.IndexFunc(f.devices, func(d Device) bool { return d.ID == id })
}
