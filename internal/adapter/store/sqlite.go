package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/berfenger/axpert2mqtt/internal/core/domain"
	"github.com/berfenger/axpert2mqtt/internal/core/port"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS energy_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	pv_kwh REAL NOT NULL,
	load_kwh REAL NOT NULL,
	last_sample INTEGER
);`

// SQLiteEnergyStore keeps the accumulator snapshot in a single-row sqlite
// table.
type SQLiteEnergyStore struct {
	db *sql.DB
}

func NewSQLiteEnergyStore(path string) (*SQLiteEnergyStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open energy store: %w", err)
	}
	// single writer, avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init energy store: %w", err)
	}
	return &SQLiteEnergyStore{db: db}, nil
}

func (s *SQLiteEnergyStore) Load() (*domain.EnergyState, error) {
	row := s.db.QueryRow(`SELECT pv_kwh, load_kwh, last_sample FROM energy_state WHERE id = 1`)

	var state domain.EnergyState
	var lastSample sql.NullInt64
	err := row.Scan(&state.PVEnergyKWh, &state.LoadEnergyKWh, &lastSample)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load energy state: %w", err)
	}
	if lastSample.Valid {
		ts := time.UnixMilli(lastSample.Int64)
		state.LastSample = &ts
	}
	return &state, nil
}

func (s *SQLiteEnergyStore) Save(state domain.EnergyState) error {
	var lastSample sql.NullInt64
	if state.LastSample != nil {
		lastSample = sql.NullInt64{Int64: state.LastSample.UnixMilli(), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO energy_state (id, pv_kwh, load_kwh, last_sample) VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET pv_kwh = excluded.pv_kwh,
			load_kwh = excluded.load_kwh, last_sample = excluded.last_sample`,
		state.PVEnergyKWh, state.LoadEnergyKWh, lastSample)
	if err != nil {
		return fmt.Errorf("save energy state: %w", err)
	}
	return nil
}

func (s *SQLiteEnergyStore) Close() error {
	return s.db.Close()
}

// ensure interface compliance
var _ port.EnergyStateStore = (*SQLiteEnergyStore)(nil)
