// Package device models the customer's robot fleet shown on the dashboard.
package device

import (
	"context"

	"github.com/go-faster/errors"
)

// Status is the operating state of a device.
type Status string

const (
	StatusActive      Status = "active"
	StatusIdle        Status = "idle"
	StatusMaintenance Status = "maintenance"
)

// Action is a control command issued from the dashboard.
type Action string

const (
	ActionTogglePower Action = "toggle_power"
	ActionStart       Action = "start"
	ActionPause       Action = "pause"
	ActionReset       Action = "reset"
	ActionSettings    Action = "settings"
)

var (
	// ErrNotFound is returned for unknown device ids.
	ErrNotFound = errors.New("device not found")
	// ErrUnknownAction is returned for actions outside the supported set.
	ErrUnknownAction = errors.New("unknown device action")
	// ErrActionUnavailable is returned when the device status forbids the action.
	ErrActionUnavailable = errors.New("action unavailable in current status")
)

// Device is one robot in the fleet.
type Device struct {
	ID       int
	Name     string
	Type     string
	Status   Status
	Battery  int
	Location string
	LastSeen string
	Online   bool
	Task     string
}

// Stats summarizes the fleet for the dashboard header.
type Stats struct {
	Total       int
	Active      int
	Online      int
	Maintenance int
}

// ControlService issues control actions to devices. Implementations decide
// how commands reach the hardware.
type ControlService interface {
	Control(ctx context.Context, id int, action Action) (Device, error)
}

// ParseAction validates a raw action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionTogglePower, ActionStart, ActionPause, ActionReset, ActionSettings:
		return a, nil
	default:
		return "", errors.Wrapf(ErrUnknownAction, "%q", s)
	}
}

// Apply returns the device state after action, or ErrActionUnavailable when
// the current status does not allow it.
func Apply(d Device, action Action) (Device, error) {
	switch action {
	case ActionStart:
		if d.Status == StatusMaintenance {
			return d, ErrActionUnavailable
		}
		d.Status = StatusActive
	case ActionPause:
		if d.Status != StatusActive {
			return d, ErrActionUnavailable
		}
		d.Status = StatusIdle
	case ActionTogglePower:
		switch d.Status {
		case StatusActive:
			d.Status = StatusIdle
		case StatusIdle:
			d.Status = StatusActive
		default:
			return d, ErrActionUnavailable
		}
	case ActionReset, ActionSettings:
	default:
		return d, ErrUnknownAction
	}
	return d, nil
}

// Summarize computes fleet stats.
func Summarize(devices []Device) Stats {
	s := Stats{Total: len(devices)}
	for _, d := range devices {
		switch d.Status {
		case StatusActive:
			s.Active++
		case StatusMaintenance:
			s.Maintenance++
		}
		if d.Online {
			s.Online++
		}
	}
	return s
}
