// Package store provides HolidayStore implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/recurrence-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	holidays map[string][]generic.Holiday // by calendar, sorted by date then name
}

func NewMemory() *Memory {
	return &Memory{holidays: make(map[string][]generic.Holiday)}
}

// SaveHolidays upserts on (calendar, date, name).
func (m *Memory) SaveHolidays(_ context.Context, holidays []generic.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range holidays {
		m.upsertLocked(h)
	}
	return nil
}

func (m *Memory) upsertLocked(h generic.Holiday) {
	list := m.holidays[h.CalendarID]
	day := dayOf(h.Date)

	for i := range list {
		if dayOf(list[i].Date) == day && list[i].Name == h.Name {
			list[i] = h
			return
		}
	}

	// Binary search for insertion point
	i := sort.Search(len(list), func(i int) bool {
		d := dayOf(list[i].Date)
		return d > day || (d == day && list[i].Name > h.Name)
	})
	list = append(list, generic.Holiday{})
	copy(list[i+1:], list[i:])
	list[i] = h
	m.holidays[h.CalendarID] = list
}

// LoadHolidays returns holidays in [from, to).
func (m *Memory) LoadHolidays(_ context.Context, calendarID string, from, to generic.TimePoint) ([]generic.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []generic.Holiday
	for _, h := range m.holidays[calendarID] {
		if h.Date.AfterOrEqual(from) && h.Date.Before(to) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *Memory) IsHoliday(_ context.Context, calendarID string, date generic.TimePoint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	day := dayOf(date)
	for _, h := range m.holidays[calendarID] {
		if dayOf(h.Date) == day {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) DeleteYear(_ context.Context, calendarID string, year int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.holidays[calendarID][:0]
	for _, h := range m.holidays[calendarID] {
		if h.Date.Year() != year {
			kept = append(kept, h)
		}
	}
	m.holidays[calendarID] = kept
	return nil
}

// ReplaceYear swaps the stored year under one lock.
func (m *Memory) ReplaceYear(_ context.Context, calendarID string, year int, holidays []generic.Holiday) error {
	for _, h := range holidays {
		if h.CalendarID != calendarID || h.Date.Year() != year {
			return fmt.Errorf("replace %s %d: holiday %s outside the year", calendarID, year, h.ID)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []generic.Holiday
	for _, h := range m.holidays[calendarID] {
		if h.Date.Year() != year {
			kept = append(kept, h)
		}
	}
	m.holidays[calendarID] = kept
	for _, h := range holidays {
		m.upsertLocked(h)
	}
	return nil
}

func dayOf(tp generic.TimePoint) string {
	return tp.Time.Format("2006-01-02")
}
