package service

import (
	"errors"
	"testing"
	"time"

	"github.com/berfenger/axpert2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type memoryStore struct {
	state   *domain.EnergyState
	saves   int
	saveErr error
	loadErr error
}

func (s *memoryStore) Load() (*domain.EnergyState, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.state, nil
}

func (s *memoryStore) Save(state domain.EnergyState) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	st := state
	s.state = &st
	return nil
}

func (s *memoryStore) Close() error { return nil }

func TestIntegratorColdStartContributesNothing(t *testing.T) {
	integ := NewEnergyIntegrator(&memoryStore{}, 15*time.Second, zap.NewNop())

	now := time.Now()
	state := integ.Apply(now, 2000, 500)

	assert.Equal(t, 0.0, state.PVEnergyKWh)
	assert.Equal(t, 0.0, state.LoadEnergyKWh)
	assert.NotNil(t, state.LastSample)
	assert.Equal(t, now, *state.LastSample)
}

func TestIntegratorAccumulates(t *testing.T) {
	integ := NewEnergyIntegrator(&memoryStore{}, time.Minute, zap.NewNop())

	t0 := time.Now()
	integ.Apply(t0, 0, 0)
	state := integ.Apply(t0.Add(30*time.Second), 1200, 400)

	// 1200 W over 30 s = 0.01 kWh
	assert.InDelta(t, 0.01, state.PVEnergyKWh, 1e-9)
	assert.InDelta(t, 0.01/3, state.LoadEnergyKWh, 1e-9)

	state = integ.Apply(t0.Add(60*time.Second), 1200, 400)
	assert.InDelta(t, 0.02, state.PVEnergyKWh, 1e-9)
}

func TestIntegratorClampsLongGap(t *testing.T) {
	integ := NewEnergyIntegrator(&memoryStore{}, 15*time.Second, zap.NewNop())

	t0 := time.Now()
	integ.Apply(t0, 0, 0)
	// 5 hours of downtime credits at most 15 seconds
	state := integ.Apply(t0.Add(5*time.Hour), 1000, 0)

	assert.InDelta(t, 15.0/3600, state.PVEnergyKWh, 1e-6)
	assert.Equal(t, t0.Add(5*time.Hour), *state.LastSample)
}

func TestIntegratorMonotonicWithBadSamples(t *testing.T) {
	integ := NewEnergyIntegrator(&memoryStore{}, time.Minute, zap.NewNop())

	t0 := time.Now()
	integ.Apply(t0, 1000, 1000)
	before := integ.Apply(t0.Add(10*time.Second), 1000, 1000)

	// negative power and a backwards timestamp must not shrink totals
	state := integ.Apply(t0.Add(20*time.Second), -500, -500)
	assert.Equal(t, before.PVEnergyKWh, state.PVEnergyKWh)
	assert.Equal(t, before.LoadEnergyKWh, state.LoadEnergyKWh)

	state = integ.Apply(t0, 1000, 1000)
	assert.Equal(t, before.PVEnergyKWh, state.PVEnergyKWh)
}

func TestIntegratorRestoresPersistedState(t *testing.T) {
	ts := time.Now().Add(-time.Minute)
	store := &memoryStore{state: &domain.EnergyState{
		PVEnergyKWh:   12.5,
		LoadEnergyKWh: 3.25,
		LastSample:    &ts,
	}}

	integ := NewEnergyIntegrator(store, time.Minute, zap.NewNop())
	assert.Equal(t, 12.5, integ.State().PVEnergyKWh)
	assert.Equal(t, 3.25, integ.State().LoadEnergyKWh)
}

func TestIntegratorColdStartsOnFailedRestore(t *testing.T) {
	store := &memoryStore{loadErr: errors.New("corrupt db")}

	integ := NewEnergyIntegrator(store, time.Minute, zap.NewNop())
	assert.NotNil(t, integ)
	assert.Equal(t, 0.0, integ.State().PVEnergyKWh)
	assert.Nil(t, integ.State().LastSample)

	// first sample after the failed restore only anchors the timestamp
	t0 := time.Now()
	state := integ.Apply(t0, 1500, 300)
	assert.Equal(t, 0.0, state.PVEnergyKWh)

	state = integ.Apply(t0.Add(30*time.Second), 1200, 400)
	assert.InDelta(t, 0.01, state.PVEnergyKWh, 1e-9)
}

func TestIntegratorSurvivesSaveErrors(t *testing.T) {
	store := &memoryStore{saveErr: errors.New("disk full")}
	integ := NewEnergyIntegrator(store, time.Minute, zap.NewNop())

	t0 := time.Now()
	integ.Apply(t0, 1000, 0)
	state := integ.Apply(t0.Add(36*time.Second), 1000, 0)

	assert.InDelta(t, 0.01, state.PVEnergyKWh, 1e-9)
	assert.Equal(t, 2, store.saves)
}
