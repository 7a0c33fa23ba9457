/*
scheduler.go - Automated holiday materialization

PURPOSE:
  Periodically recomputes the holiday calendar for the current year and
  the configured horizon, and stores the results so they can be served
  without evaluating rules.

DESIGN:
  - Cron-driven (robfig/cron), UTC schedule
  - Runs once immediately on Start
  - Materialization replaces whole years, so overlapping or repeated runs
    converge to the same stored rows

CONFIGURATION:
  - Spec:         Standard 5-field cron spec or descriptor (default: @daily)
  - HorizonYears: Years after the current one to materialize (default: 1)
  - Enabled:      Whether scheduler is active (default: true)

USAGE:
  scheduler := NewMaterializationScheduler(handler.Calendar, "@daily", 1, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: MaterializeHolidays endpoint (manual materialization)
  - holiday/calendar.go: Calendar.Materialize
*/
package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/warp/recurrence-engine/generic"
	"github.com/warp/recurrence-engine/holiday"
)

// MaterializationScheduler keeps stored holidays current.
type MaterializationScheduler struct {
	Calendar     *holiday.Calendar
	Spec         string
	HorizonYears int
	Enabled      bool
	Logger       *slog.Logger

	// Now is the clock; tests replace it.
	Now func() time.Time

	cron *cron.Cron
	wg   sync.WaitGroup
	mu   sync.Mutex
}

// NewMaterializationScheduler creates a new scheduler.
func NewMaterializationScheduler(cal *holiday.Calendar, spec string, horizonYears int, logger *slog.Logger) *MaterializationScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MaterializationScheduler{
		Calendar:     cal,
		Spec:         spec,
		HorizonYears: horizonYears,
		Enabled:      true,
		Logger:       logger.With("component", "scheduler"),
		Now:          time.Now,
	}
}

// Start begins the scheduler.
func (ms *MaterializationScheduler) Start() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if !ms.Enabled {
		ms.Logger.Info("disabled, not starting")
		return nil
	}
	if ms.cron != nil {
		return nil
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(ms.Spec, ms.tick); err != nil {
		return fmt.Errorf("schedule %q: %w", ms.Spec, err)
	}
	ms.cron = c

	// Run immediately on start
	ms.wg.Add(1)
	go func() {
		defer ms.wg.Done()
		ms.tick()
	}()

	c.Start()
	ms.Logger.Info("started", "spec", ms.Spec, "horizon_years", ms.HorizonYears)
	return nil
}

// Stop stops the scheduler and waits for a running materialization.
func (ms *MaterializationScheduler) Stop() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.cron == nil {
		return
	}
	<-ms.cron.Stop().Done()
	ms.wg.Wait()
	ms.cron = nil
	ms.Logger.Info("stopped")
}

// NextRuns returns the next n scheduled times after from.
func (ms *MaterializationScheduler) NextRuns(from time.Time, n int) ([]time.Time, error) {
	schedule, err := cron.ParseStandard(ms.Spec)
	if err != nil {
		return nil, err
	}
	runs := make([]time.Time, 0, n)
	next := from.UTC()
	for i := 0; i < n; i++ {
		next = schedule.Next(next)
		runs = append(runs, next)
	}
	return runs, nil
}

// RunOnce materializes the current year through the horizon and returns
// rows written per year. It stops at the first failing year.
func (ms *MaterializationScheduler) RunOnce(ctx context.Context) (map[int]int, error) {
	current := ms.Now().UTC().Year()
	written := make(map[int]int, ms.HorizonYears+1)
	for year := current; year <= current+ms.HorizonYears; year++ {
		n, err := ms.Calendar.Materialize(ctx, year)
		if err != nil {
			return written, err
		}
		written[year] = n
	}
	return written, nil
}

func (ms *MaterializationScheduler) tick() {
	start := ms.Now()
	written, err := ms.RunOnce(context.Background())
	if err != nil {
		ms.Logger.Error("materialization failed", "err", err, "kind", errorKind(err))
		return
	}
	ms.Logger.Info("materialization completed", "years", len(written), "elapsed", ms.Now().Sub(start))
}

func errorKind(err error) string {
	if generic.IsDomainError(err) {
		return "domain"
	}
	return "store"
}
