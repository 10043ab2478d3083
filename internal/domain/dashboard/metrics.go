package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/yaadhav-d/Hospital-Dashboard/internal/domain/patient"
)

// TemperatureBand is a discrete categorization of an arrival temperature.
type TemperatureBand string

const (
	BandUnknown TemperatureBand = "Unknown"
	BandCool    TemperatureBand = "Cool"
	BandNormal  TemperatureBand = "Normal"
	BandHot     TemperatureBand = "Hot"
	BandExtreme TemperatureBand = "Extreme Heat"
)

// bands in display order
var allBands = []TemperatureBand{BandUnknown, BandCool, BandNormal, BandHot, BandExtreme}

// BandFor categorizes a temperature reading. Lower bounds are inclusive;
// Unknown is used only for a missing reading, never as a numeric range.
func BandFor(t *float64) TemperatureBand {
	switch {
	case t == nil:
		return BandUnknown
	case *t < 25:
		return BandCool
	case *t < 32:
		return BandNormal
	case *t < 38:
		return BandHot
	default:
		return BandExtreme
	}
}

// DefaultInflowBucket is the arrival-series bucket width.
const DefaultInflowBucket = 10 * time.Minute

type TriageCount struct {
	Level int `json:"level"`
	Count int `json:"count"`
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type BandCount struct {
	Band  TemperatureBand `json:"band"`
	Count int             `json:"count"`
}

type InflowPoint struct {
	BucketStart time.Time `json:"bucket_start"`
	Count       int       `json:"count"`
}

// Snapshot is the full derived view over one read of the live set. It has no
// identity or lifecycle beyond the aggregation call that produced it.
type Snapshot struct {
	Occupancy     int                `json:"occupancy"`
	CriticalCount int                `json:"critical_count"`
	AvgWait       float64            `json:"avg_wait"`
	HasAvgWait    bool               `json:"has_avg_wait"`
	Triage        []TriageCount      `json:"triage_distribution"`
	Departments   []DepartmentCount  `json:"department_load"`
	Temperatures  []BandCount        `json:"temperature_distribution"`
	Inflow        []InflowPoint      `json:"inflow_series"`
	Critical      []*patient.Patient `json:"critical"`
}

// Aggregate computes the derived metrics over a snapshot of the live set. It
// is a pure function: empty input yields zeroed distributions, never an error.
func Aggregate(records []*patient.Patient, bucket time.Duration) Snapshot {
	if bucket <= 0 {
		bucket = DefaultInflowBucket
	}

	snap := Snapshot{
		Occupancy: len(records),
		Inflow:    []InflowPoint{},
	}

	triageCounts := make(map[int]int)
	deptCounts := make(map[string]int)
	bandCounts := make(map[TemperatureBand]int)

	var waitSum int
	for _, p := range records {
		triageCounts[p.TriageLevel]++
		deptCounts[p.Department]++
		bandCounts[BandFor(p.ArrivalTemp)]++
		waitSum += p.WaitTime
		if p.Critical() {
			snap.Critical = append(snap.Critical, p)
		}
	}
	snap.CriticalCount = len(snap.Critical)

	if len(records) > 0 {
		snap.AvgWait = round1(float64(waitSum) / float64(len(records)))
		snap.HasAvgWait = true
	}

	// All five triage levels, zero-filled, ascending
	for level := 1; level <= 5; level++ {
		snap.Triage = append(snap.Triage, TriageCount{Level: level, Count: triageCounts[level]})
	}

	// Departments by descending load; name breaks ties for stable display
	for dept, count := range deptCounts {
		snap.Departments = append(snap.Departments, DepartmentCount{Department: dept, Count: count})
	}
	sort.Slice(snap.Departments, func(i, j int) bool {
		if snap.Departments[i].Count != snap.Departments[j].Count {
			return snap.Departments[i].Count > snap.Departments[j].Count
		}
		return snap.Departments[i].Department < snap.Departments[j].Department
	})

	for _, band := range allBands {
		snap.Temperatures = append(snap.Temperatures, BandCount{Band: band, Count: bandCounts[band]})
	}

	snap.Inflow = inflowSeries(records, bucket)

	return snap
}

// inflowSeries buckets arrivals into fixed-width windows spanning the
// observed range, zero-filling interior buckets.
func inflowSeries(records []*patient.Patient, bucket time.Duration) []InflowPoint {
	if len(records) == 0 {
		return []InflowPoint{}
	}

	counts := make(map[time.Time]int)
	var first, last time.Time
	for i, p := range records {
		start := p.ArrivalTime.Truncate(bucket)
		counts[start]++
		if i == 0 || start.Before(first) {
			first = start
		}
		if i == 0 || start.After(last) {
			last = start
		}
	}

	var series []InflowPoint
	for t := first; !t.After(last); t = t.Add(bucket) {
		series = append(series, InflowPoint{BucketStart: t, Count: counts[t]})
	}
	return series
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
