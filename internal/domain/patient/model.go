package patient

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Patient maps to the er_patients_live table. Every field is assigned at
// admission and never updated; arrival_time is the sole ageing field and is
// set by the store itself.
type Patient struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Code        string    `db:"patient_code" json:"patient_code"`
	Name        string    `db:"patient_name" json:"patient_name"`
	TriageLevel int       `db:"triage_level" json:"triage_level"`
	WaitTime    int       `db:"wait_time" json:"wait_time"`
	Department  string    `db:"department" json:"department"`
	ArrivalTime time.Time `db:"arrival_time" json:"arrival_time"`
	ArrivalTemp *float64  `db:"arrival_temp" json:"arrival_temp,omitempty"`
}

// Critical reports whether the patient is a level 1 or 2 triage case.
func (p *Patient) Critical() bool {
	return p.TriageLevel <= 2
}

// Draft is the output of the generator: a complete admission candidate that
// has not yet been persisted (no ID, no arrival time).
type Draft struct {
	Code        string
	Name        string
	TriageLevel int
	WaitTime    int
	Department  string
	ArrivalTemp *float64
}

// WaitRange is a closed integer range of synthetic wait minutes.
type WaitRange struct {
	Min int
	Max int
}

// Config holds the generation constants. It is passed into the generator at
// construction so tests can substitute alternate distributions.
type Config struct {
	// TriageWeights is the categorical distribution over levels 1..5.
	TriageWeights map[int]float64
	// WaitRanges maps each triage level to its wait-time range.
	WaitRanges map[int]WaitRange
	// Departments is the fixed department enumeration.
	Departments []string
	// CodePrefix prefixes the random 6-digit patient code.
	CodePrefix string
}

// DefaultDepartments is the department enumeration used when none is
// configured.
var DefaultDepartments = []string{
	"General Medicine",
	"Orthopedics",
	"Cardiology",
	"Neurology",
	"Pediatrics",
	"Trauma",
}

// DefaultConfig returns the canonical generation constants: triage weights
// {1:0.05, 2:0.10, 3:0.35, 4:0.30, 5:0.20} and wait ranges that widen as
// severity decreases.
func DefaultConfig() Config {
	return Config{
		TriageWeights: map[int]float64{
			1: 0.05,
			2: 0.10,
			3: 0.35,
			4: 0.30,
			5: 0.20,
		},
		WaitRanges: map[int]WaitRange{
			1: {0, 5},
			2: {5, 15},
			3: {15, 40},
			4: {30, 140},
			5: {60, 180},
		},
		Departments: DefaultDepartments,
		CodePrefix:  "ER-",
	}
}

// Validate checks that the configuration can drive the generator.
func (c Config) Validate() error {
	if len(c.TriageWeights) == 0 {
		return fmt.Errorf("triage weights are required")
	}
	var sum float64
	for level, w := range c.TriageWeights {
		if w < 0 {
			return fmt.Errorf("triage weight for level %d is negative", level)
		}
		if _, ok := c.WaitRanges[level]; !ok {
			return fmt.Errorf("no wait range for triage level %d", level)
		}
		sum += w
	}
	if sum <= 0 {
		return fmt.Errorf("triage weights sum to zero")
	}
	for level, r := range c.WaitRanges {
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("invalid wait range [%d,%d] for triage level %d", r.Min, r.Max, level)
		}
	}
	if len(c.Departments) == 0 {
		return fmt.Errorf("at least one department is required")
	}
	return nil
}
