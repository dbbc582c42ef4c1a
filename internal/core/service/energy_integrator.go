package service

import (
	"math"
	"sync"
	"time"

	"github.com/berfenger/axpert2mqtt/internal/core/domain"
	"github.com/berfenger/axpert2mqtt/internal/core/port"

	"go.uber.org/zap"
)

// EnergyIntegrator accumulates PV and load energy by integrating power
// samples over poll time. The first sample after a cold start only anchors
// the timestamp and contributes no energy. A gap longer than MaxSampleGap
// is credited as MaxSampleGap, so downtime does not fabricate energy.
type EnergyIntegrator struct {
	mu    sync.Mutex
	state domain.EnergyState

	MaxSampleGap time.Duration

	store  port.EnergyStateStore
	logger *zap.Logger
}

func NewEnergyIntegrator(store port.EnergyStateStore, maxSampleGap time.Duration, logger *zap.Logger) *EnergyIntegrator {
	integ := &EnergyIntegrator{
		MaxSampleGap: maxSampleGap,
		store:        store,
		logger:       logger.With(zap.String("service", "energy_integrator")),
	}
	if store != nil {
		state, err := store.Load()
		if err != nil {
			// restore is best effort, a broken store cold starts the totals
			integ.logger.Error("could not restore energy state", zap.Error(err))
		} else if state != nil {
			integ.state = *state
			integ.logger.Info("restored energy state",
				zap.Float64("pv_kwh", state.PVEnergyKWh),
				zap.Float64("load_kwh", state.LoadEnergyKWh))
		}
	}
	return integ
}

// Apply advances the accumulators with one power sample. The timestamp is
// the poll time, never a device-reported one. Returns the updated state.
func (integ *EnergyIntegrator) Apply(at time.Time, pvPowerWatt, loadPowerWatt float64) domain.EnergyState {
	integ.mu.Lock()
	defer integ.mu.Unlock()

	if integ.state.LastSample != nil {
		dt := at.Sub(*integ.state.LastSample)
		if dt > 0 {
			if dt > integ.MaxSampleGap {
				integ.logger.Warn("sample gap too long, clamping",
					zap.Duration("gap", dt), zap.Duration("max", integ.MaxSampleGap))
				dt = integ.MaxSampleGap
			}
			hours := dt.Hours()
			integ.state.PVEnergyKWh += sanePower(pvPowerWatt) / 1000 * hours
			integ.state.LoadEnergyKWh += sanePower(loadPowerWatt) / 1000 * hours
		}
	}
	ts := at
	integ.state.LastSample = &ts

	if integ.store != nil {
		if err := integ.store.Save(integ.state); err != nil {
			// keep accumulating in memory, persistence is best effort
			integ.logger.Error("could not persist energy state", zap.Error(err))
		}
	}
	return integ.state
}

func (integ *EnergyIntegrator) State() domain.EnergyState {
	integ.mu.Lock()
	defer integ.mu.Unlock()
	return integ.state
}

func sanePower(watt float64) float64 {
	if math.IsNaN(watt) || math.IsInf(watt, 0) || watt < 0 {
		return 0
	}
	return watt
}
