package cleanup

import (
	"context"
	"testing"
	"time"
)

type fakePruner struct {
	rows    map[time.Time]bool
	cutoffs []time.Time
}

func (f *fakePruner) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)

	var deleted int64
	for ts, present := range f.rows {
		if present && ts.Before(cutoff) {
			f.rows[ts] = false
			deleted++
		}
	}
	return deleted, nil
}

func TestRunPrunesOnlyRowsPastRetention(t *testing.T) {
	now := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)

	oldDay := now.Add(-31 * 24 * time.Hour)
	freshDay := now.Add(-29 * 24 * time.Hour)
	quotas := &fakePruner{rows: map[time.Time]bool{
		oldDay:   true,
		freshDay: true,
	}}

	oldEvent := now.Add(-91 * 24 * time.Hour)
	freshEvent := now.Add(-89 * 24 * time.Hour)
	events := &fakePruner{rows: map[time.Time]bool{
		oldEvent:   true,
		freshEvent: true,
	}}

	job := NewJob(quotas, events, nil, Config{
		QuotaRetention: 30 * 24 * time.Hour,
		EventRetention: 90 * 24 * time.Hour,
	})
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}

	if quotas.rows[oldDay] {
		t.Fatalf("expected quota row past retention to be pruned")
	}
	if !quotas.rows[freshDay] {
		t.Fatalf("expected fresh quota row to remain")
	}
	if events.rows[oldEvent] {
		t.Fatalf("expected event past retention to be pruned")
	}
	if !events.rows[freshEvent] {
		t.Fatalf("expected fresh event to remain")
	}

	if len(quotas.cutoffs) != 1 || !quotas.cutoffs[0].Equal(now.Add(-30*24*time.Hour)) {
		t.Fatalf("unexpected quota cutoff: %v", quotas.cutoffs)
	}
	if len(events.cutoffs) != 1 || !events.cutoffs[0].Equal(now.Add(-90*24*time.Hour)) {
		t.Fatalf("unexpected event cutoff: %v", events.cutoffs)
	}
}

func TestRunSkipsMissingStores(t *testing.T) {
	job := NewJob(nil, nil, nil, Config{})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job without stores: %v", err)
	}
}
