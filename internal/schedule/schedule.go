package schedule

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/wheelibin/daysched/internal/models"
)

// Schedule is an immutable, sorted set of non-overlapping periods repeating every day.
// It is safe for concurrent use once constructed.
type Schedule struct {
	periods []Period
}

// New builds a schedule from config periods. Time parse failures are returned as they are
// (*TimeParseError); overlapping periods fail with *InvalidScheduleError.
func New(periods []models.PeriodConfig) (*Schedule, error) {
	parsed := make([]Period, 0, len(periods))
	for _, pc := range periods {
		p, err := NewPeriod(pc.Start, pc.End)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, p)
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].Start < parsed[j].Start
	})

	s := &Schedule{periods: parsed}
	if err := s.validate(periods); err != nil {
		return nil, err
	}
	return s, nil
}

// validate relies on the periods being sorted by start: overlap can then only happen between
// neighbours, or between a wrapping last period and the first one.
func (s *Schedule) validate(attempted []models.PeriodConfig) error {
	n := len(s.periods)
	if n < 2 {
		return nil
	}

	for i := 0; i < n-1; i++ {
		cur, next := s.periods[i], s.periods[i+1]
		if !(cur.Start < cur.End && cur.End <= next.Start) {
			return &InvalidScheduleError{Periods: attempted, First: cur, Second: next}
		}
	}

	first, last := s.periods[0], s.periods[n-1]
	if last.End <= last.Start && last.End > first.Start {
		return &InvalidScheduleError{Periods: attempted, First: last, Second: first}
	}

	return nil
}

func (s *Schedule) Containing(t TimeOfDay) bool {
	return lo.ContainsBy(s.periods, func(p Period) bool {
		return p.Containing(t)
	})
}

func (s *Schedule) ContainingTime(t time.Time) bool {
	return s.Containing(TimeOfDayOf(t))
}

func (s *Schedule) Periods() []Period {
	return append([]Period(nil), s.periods...)
}

func (s *Schedule) Len() int {
	return len(s.periods)
}

func (s *Schedule) ToList() []models.PeriodConfig {
	return lo.Map(s.periods, func(p Period, _ int) models.PeriodConfig {
		return p.ToConfig()
	})
}

// Boundaries returns every start and end time, deduplicated and ascending.
func (s *Schedule) Boundaries() []TimeOfDay {
	all := make([]TimeOfDay, 0, len(s.periods)*2)
	for _, p := range s.periods {
		all = append(all, p.Start, p.End)
	}
	boundaries := lo.Uniq(all)
	sort.Slice(boundaries, func(i, j int) bool {
		return boundaries[i] < boundaries[j]
	})
	return boundaries
}

// NextUpdate returns the next instant strictly after reference at which containment may change,
// also across daylight saving changes in reference's location.
// The bool is false when the schedule has no periods and so never changes.
// A reference exactly on a boundary counts as past it.
func (s *Schedule) NextUpdate(reference time.Time) (time.Time, bool) {
	boundaries := s.Boundaries()
	if len(boundaries) == 0 {
		return time.Time{}, false
	}

	t := TimeOfDayOf(reference)
	previous := TimeOfDay(0)
	for _, current := range boundaries {
		if previous <= t && t < current {
			// On resolves a repeated wall clock hour to its first offset, which can be behind
			// reference after a fall back. Keep scanning the later boundaries of the day.
			if next := current.On(reference); next.After(reference) {
				return next, true
			}
			continue
		}
		previous = current
	}

	tomorrow := time.Date(reference.Year(), reference.Month(), reference.Day()+1, 0, 0, 0, 0, reference.Location())
	return boundaries[0].On(tomorrow), true
}
