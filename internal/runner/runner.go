package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/wheelibin/daysched/internal/constants"
	"github.com/wheelibin/daysched/internal/models"
	"github.com/wheelibin/daysched/internal/schedule"
)

type publisher interface {
	Publish(transition models.Transition)
}

type scheduleBuilder interface {
	Build(cfg models.ScheduleConfig, date time.Time) (*schedule.Schedule, error)
}

type entry struct {
	cfg         models.ScheduleConfig
	schedule    *schedule.Schedule
	on          bool
	lastChanged time.Time
	next        *time.Time
}

// Runner keeps the on/off state of every enabled schedule and publishes a transition each time one changes.
type Runner struct {
	logger    *log.Logger
	builder   scheduleBuilder
	publisher publisher

	mu       sync.RWMutex
	entries  []*entry
	builtFor time.Time
}

func NewRunner(
	logger *log.Logger,
	schedules []models.ScheduleConfig,
	builder scheduleBuilder,
	publisher publisher,
) *Runner {

	// filter out any disabled schedules
	enabled := lo.Filter(schedules, func(s models.ScheduleConfig, _ int) bool {
		return !s.Disabled
	})

	return &Runner{
		logger:    logger,
		builder:   builder,
		publisher: publisher,
		entries: lo.Map(enabled, func(s models.ScheduleConfig, _ int) *entry {
			return &entry{cfg: s}
		}),
	}
}

// Initialise builds every schedule for the date of now and publishes its starting state.
func (r *Runner) Initialise(now time.Time) error {
	r.logger.Debug("Runner.Initialise")

	r.mu.Lock()
	transitions := make([]models.Transition, 0, len(r.entries))
	for _, e := range r.entries {
		sch, err := r.builder.Build(e.cfg, now)
		if err != nil {
			r.mu.Unlock()
			return fmt.Errorf("error building schedule (%s): %w", e.cfg.Name, err)
		}
		r.logger.Debug("Schedule built", "schedule", e.cfg.Name, "periods", sch.Len())
		e.schedule = sch
		e.on = sch.ContainingTime(now)
		e.lastChanged = now
		e.next = nextUpdate(sch, now)
		transitions = append(transitions, e.transition(now, true))
	}
	r.builtFor = startOfDay(now)
	r.mu.Unlock()

	for _, t := range transitions {
		r.logger.Info("Schedule initialised", "schedule", t.Schedule, "on", t.On, "next", t.NextUpdate)
		r.publisher.Publish(t)
	}
	return nil
}

// Evaluate re-checks every schedule at now, publishing any state changes,
// and returns when it should next be called.
func (r *Runner) Evaluate(now time.Time) time.Time {
	r.mu.Lock()
	if !startOfDay(now).Equal(r.builtFor) {
		r.rebuild(now)
	}

	transitions := []models.Transition{}
	for _, e := range r.entries {
		if e.schedule == nil {
			continue
		}
		e.next = nextUpdate(e.schedule, now)
		on := e.schedule.ContainingTime(now)
		if on == e.on {
			continue
		}
		e.on = on
		e.lastChanged = now
		transitions = append(transitions, e.transition(now, false))
	}
	wake := r.nextWake(now)
	r.mu.Unlock()

	for _, t := range transitions {
		r.logger.Info("Schedule changed state", "schedule", t.Schedule, "on", t.On, "next", t.NextUpdate)
		r.publisher.Publish(t)
	}
	return wake
}

// rebuild recalculates the schedules for a new day, dynamic schedules move with the sun.
// A schedule that fails to build keeps its previous periods.
func (r *Runner) rebuild(now time.Time) {
	r.logger.Debug("Rebuilding schedules", "date", now.Format(time.DateOnly))
	for _, e := range r.entries {
		sch, err := r.builder.Build(e.cfg, now)
		if err != nil {
			r.logger.Error("Error rebuilding schedule, keeping previous periods", "schedule", e.cfg.Name, "err", err)
			continue
		}
		r.logger.Debug("Schedule rebuilt", "schedule", e.cfg.Name, "periods", sch.Len())
		e.schedule = sch
	}
	r.builtFor = startOfDay(now)
}

func (r *Runner) nextWake(now time.Time) time.Time {
	wake := now.Add(constants.MaxSleepInterval)
	midnight := startOfDay(now).AddDate(0, 0, 1)
	if midnight.Before(wake) {
		wake = midnight
	}
	for _, e := range r.entries {
		if e.next != nil && e.next.After(now) && e.next.Before(wake) {
			wake = *e.next
		}
	}
	return wake
}

func (r *Runner) Run(ctx context.Context) {
	r.logger.Debug("Runner.Run")

	// evaluate straight away
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Runner.Run: stop signal received")
			return

		case <-timer.C:
			wake := r.Evaluate(time.Now())
			r.logger.Debug("Runner.Run: sleeping", "until", wake)
			timer.Reset(time.Until(wake))
		}
	}
}

// Snapshot returns the current state of every schedule, safe to call while Run is active.
func (r *Runner) Snapshot() []models.ScheduleState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.entries, func(e *entry, _ int) models.ScheduleState {
		state := models.ScheduleState{
			Name:        e.cfg.Name,
			On:          e.on,
			LastChanged: e.lastChanged,
			NextUpdate:  e.next,
		}
		if e.schedule != nil {
			state.Periods = e.schedule.ToList()
		}
		return state
	})
}

func (e *entry) transition(at time.Time, initial bool) models.Transition {
	return models.Transition{
		Schedule:   e.cfg.Name,
		On:         e.on,
		At:         at,
		Initial:    initial,
		NextUpdate: e.next,
	}
}

func nextUpdate(sch *schedule.Schedule, now time.Time) *time.Time {
	next, ok := sch.NextUpdate(now)
	if !ok {
		return nil
	}
	return &next
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
