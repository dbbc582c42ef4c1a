package domain

import "time"

// EnergyState is the persistent accumulator snapshot. Totals only ever
// grow; LastSample is nil until the first poll after a cold start.
type EnergyState struct {
	PVEnergyKWh   float64
	LoadEnergyKWh float64
	LastSample    *time.Time
}
