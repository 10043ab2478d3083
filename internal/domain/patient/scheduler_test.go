package patient

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yaadhav-d/Hospital-Dashboard/internal/platform/weather"
)

// -- Mocks --

type mockRepo struct {
	records       map[uuid.UUID]*Patient
	lastAdmission time.Time
	insertErr     error
	deleteErr     error
	gateErr       error
	clock         func() time.Time
}

func newMockRepo(clock func() time.Time) *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID]*Patient), clock: clock}
}

func (m *mockRepo) Insert(_ context.Context, p *Patient) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	p.ID = uuid.New()
	p.ArrivalTime = m.clock()
	m.records[p.ID] = p
	return nil
}

func (m *mockRepo) DeleteArrivedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var n int64
	for id, p := range m.records {
		if p.ArrivalTime.Before(cutoff) {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) ListLive(_ context.Context, limit int) ([]*Patient, error) {
	var items []*Patient
	for _, p := range m.records {
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ArrivalTime.After(items[j].ArrivalTime) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *mockRepo) ListLivePage(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	all, err := m.ListLive(ctx, len(m.records))
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) TryAdvanceGate(_ context.Context, now time.Time, minInterval time.Duration) (bool, error) {
	if m.gateErr != nil {
		return false, m.gateErr
	}
	if now.Sub(m.lastAdmission) < minInterval {
		return false, nil
	}
	m.lastAdmission = now
	return true, nil
}

type stubTemps struct {
	reading weather.Reading
	err     error
}

func (s *stubTemps) Current(_ context.Context) (weather.Reading, error) {
	return s.reading, s.err
}

// -- Tests --

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestScheduler(t *testing.T, clock *fakeClock, repo *mockRepo, temps weather.Source) *Scheduler {
	t.Helper()
	gen, err := NewGenerator(DefaultConfig(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := NewScheduler(repo, gen, temps, zerolog.Nop(), 6*time.Hour, time.Minute)
	s.now = clock.now
	return s
}

func TestAdmitDue_GateAllowsOnePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMockRepo(clock.now)
	s := newTestScheduler(t, clock, repo, &stubTemps{reading: weather.Reading{Condition: "Clear", TempC: 31}})

	// 10 invocations within 5 seconds admit exactly once
	for i := 0; i < 10; i++ {
		if _, err := s.AdmitDue(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		clock.advance(500 * time.Millisecond)
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected exactly 1 admission, got %d", len(repo.records))
	}

	// 61 seconds later the gate is due again
	clock.advance(61 * time.Second)
	p, err := s.AdmitDue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected second admission after interval elapsed")
	}
	if len(repo.records) != 2 {
		t.Fatalf("expected 2 admissions total, got %d", len(repo.records))
	}
}

func TestAdmitDue_NotDueIsNoOp(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMockRepo(clock.now)
	repo.lastAdmission = clock.t.Add(-30 * time.Second)
	s := newTestScheduler(t, clock, repo, &stubTemps{})

	p, err := s.AdmitDue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Error("expected no admission while gate is fresh")
	}
}

func TestAdmitDue_WeatherFailureStillAdmits(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMockRepo(clock.now)
	s := newTestScheduler(t, clock, repo, &stubTemps{err: weather.ErrUnavailable})

	p, err := s.AdmitDue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected admission despite weather failure")
	}
	if p.ArrivalTemp != nil {
		t.Errorf("expected no arrival temperature, got %v", *p.ArrivalTemp)
	}
}

func TestAdmitDue_WeatherReadingRecorded(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMockRepo(clock.now)
	s := newTestScheduler(t, clock, repo, &stubTemps{reading: weather.Reading{Condition: "Clear", TempC: 30}})

	p, err := s.AdmitDue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ArrivalTemp == nil {
		t.Fatal("expected arrival temperature from ambient reading")
	}
	if *p.ArrivalTemp < 28.5 || *p.ArrivalTemp > 31.5 {
		t.Errorf("arrival temperature %v outside jitter bounds around 30", *p.ArrivalTemp)
	}
}

func TestAdmitDue_InsertFailure(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMockRepo(clock.now)
	repo.insertErr = fmt.Errorf("connection refused")
	s := newTestScheduler(t, clock, repo, &stubTemps{})

	if _, err := s.AdmitDue(context.Background()); err == nil {
		t.Error("expected error when the store insert fails")
	}
}

func TestEvictExpired_RemovesOnlyExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: now}
	repo := newMockRepo(clock.now)
	s := newTestScheduler(t, clock, repo, &stubTemps{})

	ages := []time.Duration{
		time.Hour,
		5 * time.Hour,
		6*time.Hour + time.Minute,
		10 * time.Hour,
	}
	for i, age := range ages {
		id := uuid.New()
		repo.records[id] = &Patient{
			ID:          id,
			Code:        fmt.Sprintf("ER-10000%d", i),
			TriageLevel: 3,
			Department:  "Trauma",
			ArrivalTime: now.Add(-age),
		}
	}

	n, err := s.EvictExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 evictions, got %d", n)
	}
	if len(repo.records) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(repo.records))
	}
	for _, p := range repo.records {
		if now.Sub(p.ArrivalTime) > 6*time.Hour {
			t.Errorf("patient %s older than retention window survived", p.Code)
		}
	}

	// Second run is idempotent
	n, err = s.EvictExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected idempotent second pass, deleted %d", n)
	}
}

func TestTick_EvictionFailureDoesNotBlockAdmission(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMockRepo(clock.now)
	repo.deleteErr = fmt.Errorf("connection refused")
	s := newTestScheduler(t, clock, repo, &stubTemps{})

	p, err := s.Tick(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected admission even when the eviction pass fails")
	}
}

func TestTick_GateFailureSurfaces(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMockRepo(clock.now)
	repo.gateErr = fmt.Errorf("connection refused")
	s := newTestScheduler(t, clock, repo, &stubTemps{})

	if _, err := s.Tick(context.Background()); err == nil {
		t.Error("expected error when the gate statement fails")
	}
}
