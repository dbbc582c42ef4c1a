package port

import "github.com/berfenger/axpert2mqtt/internal/core/domain"

// EnergyStateStore persists the accumulated energy counters across
// restarts. Load returns (nil, nil) when no state has been saved yet.
type EnergyStateStore interface {
	Load() (*domain.EnergyState, error)
	Save(state domain.EnergyState) error
	Close() error
}
