package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/wheelibin/daysched/internal/models"
)

// Check with errors.Is:
//
//	if errors.Is(err, schedule.ErrInvalidSchedule) {
//	    // ask for corrected periods
//	}
var (
	// ErrInvalidTime is returned when a start or end value is not an ISO-8601 time of day.
	ErrInvalidTime = errors.New("schedule: invalid time")

	// ErrInvalidSchedule is returned when periods overlap each other, including across midnight.
	ErrInvalidSchedule = errors.New("schedule: invalid schedule")
)

type TimeParseError struct {
	Value  string
	Reason string
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidTime, e.Value, e.Reason)
}

func (e *TimeParseError) Unwrap() error {
	return ErrInvalidTime
}

// InvalidScheduleError carries every period that was attempted along with the first offending pair.
type InvalidScheduleError struct {
	Periods []models.PeriodConfig
	First   Period
	Second  Period
}

func (e *InvalidScheduleError) Error() string {
	attempted := lo.Map(e.Periods, func(p models.PeriodConfig, _ int) string {
		return p.Start + "-" + p.End
	})
	return fmt.Sprintf("%s: period %s overlaps %s (periods: %s)",
		ErrInvalidSchedule, e.First, e.Second, strings.Join(attempted, ", "))
}

func (e *InvalidScheduleError) Unwrap() error {
	return ErrInvalidSchedule
}
