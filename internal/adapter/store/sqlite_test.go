package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/berfenger/axpert2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestSQLiteEnergyStoreEmptyLoad(t *testing.T) {
	store, err := NewSQLiteEnergyStore(filepath.Join(t.TempDir(), "energy.db"))
	assert.NoError(t, err)
	defer store.Close()

	state, err := store.Load()
	assert.NoError(t, err)
	assert.Nil(t, state)
}

func TestSQLiteEnergyStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "energy.db")
	store, err := NewSQLiteEnergyStore(path)
	assert.NoError(t, err)

	ts := time.UnixMilli(time.Now().UnixMilli())
	err = store.Save(domain.EnergyState{
		PVEnergyKWh:   101.5,
		LoadEnergyKWh: 42.125,
		LastSample:    &ts,
	})
	assert.NoError(t, err)
	assert.NoError(t, store.Close())

	// reopen to check the state survives a restart
	store, err = NewSQLiteEnergyStore(path)
	assert.NoError(t, err)
	defer store.Close()

	state, err := store.Load()
	assert.NoError(t, err)
	assert.NotNil(t, state)
	assert.Equal(t, 101.5, state.PVEnergyKWh)
	assert.Equal(t, 42.125, state.LoadEnergyKWh)
	assert.NotNil(t, state.LastSample)
	assert.True(t, state.LastSample.Equal(ts))
}

func TestSQLiteEnergyStoreOverwrite(t *testing.T) {
	store, err := NewSQLiteEnergyStore(filepath.Join(t.TempDir(), "energy.db"))
	assert.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Save(domain.EnergyState{PVEnergyKWh: 1}))
	assert.NoError(t, store.Save(domain.EnergyState{PVEnergyKWh: 2, LoadEnergyKWh: 0.5}))

	state, err := store.Load()
	assert.NoError(t, err)
	assert.Equal(t, 2.0, state.PVEnergyKWh)
	assert.Equal(t, 0.5, state.LoadEnergyKWh)
	assert.Nil(t, state.LastSample)
}
