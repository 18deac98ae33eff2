package models

import (
	"fmt"
	"time"
)

// DefaultTenant seeds every other tenant's schedule and optimizer config.
const DefaultTenant = "default"

const (
	// UnitCount is the size of the generating-unit fleet. Units are 1..UnitCount.
	UnitCount = 50

	// DaysInYear bounds window days to 1..DaysInYear.
	DaysInYear = 365
)

// MaintenanceCodes is the fixed vocabulary of maintenance types.
var MaintenanceCodes = []string{
	"AR", "CK", "CM1", "CM2", "CM3", "GR", "IE", "MP", "RG", "TR",
}

// IsMaintenanceCode reports whether code belongs to MaintenanceCodes.
func IsMaintenanceCode(code string) bool {
	for _, c := range MaintenanceCodes {
		if c == code {
			return true
		}
	}
	return false
}

// UnitLabel renders a unit number the way it is stored: "01".."50".
func UnitLabel(unit int) string {
	return fmt.Sprintf("%02d", unit)
}

// Snapshot is one schedule version for one tenant.
//
// TotalWindows is the count recorded at creation time, not re-derived from
// Windows. Windows is only populated by reads that load the collection.
type Snapshot struct {
	ID           int64     `json:"id"`
	Tenant       string    `json:"tenant"`
	GeneratedAt  time.Time `json:"generated_at"`
	LastModified time.Time `json:"last_modified"`
	TotalWindows int       `json:"total_windows"`
	Active       bool      `json:"active"`
	Windows      []Window  `json:"windows,omitempty"`
}

// Window is one maintenance specification inside a snapshot.
//
// Unit is the zero-padded label ("07"). The same (Unit, Code) pair may appear
// more than once in a snapshot; each row is an independent period.
type Window struct {
	ID         int64  `json:"-"`
	SnapshotID int64  `json:"-"`
	Unit       string `json:"ug"`
	Code       string `json:"maintenance"`
	Days       []int  `json:"days"`
}

// WindowInput is the creation shape for a window: numeric unit, 1-indexed days.
type WindowInput struct {
	Unit int    `json:"ug" validate:"min=1,max=50"`
	Code string `json:"maintenance" validate:"required,max=10"`
	Days []int  `json:"days" validate:"min=1,dive,min=1,max=365"`
}

// Method selects the optimizer family.
type Method string

const (
	MethodGeneticAlgorithm Method = "genetic_algorithm"
	MethodAntColony        Method = "ant_colony"
)

// Mode selects how the optimizer run is bounded.
type Mode string

const (
	ModeFixedParams Mode = "fixed_params"
	ModeFixedTime   Mode = "fixed_time"
)

// OptimizerConfig is one optimizer-parameter profile for a tenant.
type OptimizerConfig struct {
	ID           int64     `json:"id"`
	Tenant       string    `json:"tenant"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
	OptimizerParams
}

// OptimizerParams holds the tunable fields of an optimizer config. Which
// optional fields are required depends on Method and Mode; see Validate.
type OptimizerParams struct {
	Method      Method `json:"method"`
	Mode        Mode   `json:"mode"`
	Population  *int   `json:"n_pop,omitempty"`
	Generations *int   `json:"n_gen,omitempty"`
	Ants        *int   `json:"n_ants,omitempty"`
	Iterations  *int   `json:"n_iter,omitempty"`
	TimeSeconds *int   `json:"time,omitempty"`
}

// Clone returns a deep copy; the optional fields do not alias p's.
func (p OptimizerParams) Clone() OptimizerParams {
	return OptimizerParams{
		Method:      p.Method,
		Mode:        p.Mode,
		Population:  cloneInt(p.Population),
		Generations: cloneInt(p.Generations),
		Ants:        cloneInt(p.Ants),
		Iterations:  cloneInt(p.Iterations),
		TimeSeconds: cloneInt(p.TimeSeconds),
	}
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

// DefaultOptimizerParams is the profile created for the default tenant when
// it has never had one.
func DefaultOptimizerParams() OptimizerParams {
	pop, ants, secs := 50, 30, 1800
	return OptimizerParams{
		Method:      MethodGeneticAlgorithm,
		Mode:        ModeFixedTime,
		Population:  &pop,
		Ants:        &ants,
		TimeSeconds: &secs,
	}
}

// Unit describes one generating unit of the fleet.
type Unit struct {
	Number int    `json:"ug"`
	Label  string `json:"label"`
}

// LookupUnit returns the unit numbered n, or false outside 1..UnitCount.
func LookupUnit(n int) (Unit, bool) {
	if n < 1 || n > UnitCount {
		return Unit{}, false
	}
	return Unit{Number: n, Label: UnitLabel(n)}, true
}
