package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yaadhav-d/Hospital-Dashboard/internal/platform/weather"
)

// Scheduler gates admissions and runs eviction passes over the live set. It
// is re-entered by independent callers (the standalone feed loop and every
// dashboard refresh); coordination happens entirely through the store's
// atomic statements, so no caller ever blocks on another.
type Scheduler struct {
	repo      Repository
	gen       *Generator
	temps     weather.Source
	log       zerolog.Logger
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

func NewScheduler(repo Repository, gen *Generator, temps weather.Source, log zerolog.Logger, retention, interval time.Duration) *Scheduler {
	return &Scheduler{
		repo:      repo,
		gen:       gen,
		temps:     temps,
		log:       log,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// EvictExpired hard-deletes every record whose residency exceeds the
// retention window. Safe to call at arbitrary frequency.
func (s *Scheduler) EvictExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.repo.DeleteArrivedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("evict expired patients: %w", err)
	}
	return n, nil
}

// AdmitDue admits one generated patient if the shared gate has gone stale.
// Returns (nil, nil) when the gate is not yet due. A failing Temperature
// Source never blocks the admission; the record is stored without an arrival
// temperature instead.
func (s *Scheduler) AdmitDue(ctx context.Context) (*Patient, error) {
	now := s.now()
	won, err := s.repo.TryAdvanceGate(ctx, now, s.interval)
	if err != nil {
		return nil, fmt.Errorf("advance admission gate: %w", err)
	}
	if !won {
		return nil, nil
	}

	var ambient *float64
	if reading, err := s.temps.Current(ctx); err != nil {
		s.log.Warn().Err(err).Msg("temperature source unavailable, admitting without ambient reading")
	} else {
		ambient = &reading.TempC
	}

	draft := s.gen.Generate(ambient)
	p := &Patient{
		Code:        draft.Code,
		Name:        draft.Name,
		TriageLevel: draft.TriageLevel,
		WaitTime:    draft.WaitTime,
		Department:  draft.Department,
		ArrivalTemp: draft.ArrivalTemp,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("insert patient: %w", err)
	}

	s.log.Info().
		Str("patient_code", p.Code).
		Str("patient_name", p.Name).
		Int("triage_level", p.TriageLevel).
		Str("department", p.Department).
		Int("wait_time", p.WaitTime).
		Msg("new patient admitted")

	return p, nil
}

// Tick is the invocation unit shared by all producer classes: one eviction
// pass, then one gated admission attempt. An eviction failure is logged and
// does not abort the admission path.
func (s *Scheduler) Tick(ctx context.Context) (*Patient, error) {
	if n, err := s.EvictExpired(ctx); err != nil {
		s.log.Error().Err(err).Msg("eviction pass failed")
	} else if n > 0 {
		s.log.Info().Int64("evicted", n).Msg("discharged expired patients")
	}
	return s.AdmitDue(ctx)
}

// Run is the standalone feed loop: tick immediately, then once per interval
// until the context is cancelled. Store failures are logged and the next
// iteration retries independently.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info().
		Dur("interval", s.interval).
		Dur("retention", s.retention).
		Msg("ER live feed started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("scheduler tick failed")
		}

		select {
		case <-ctx.Done():
			s.log.Info().Msg("ER live feed stopped")
			return
		case <-ticker.C:
		}
	}
}
