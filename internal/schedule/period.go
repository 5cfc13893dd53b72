package schedule

import (
	"github.com/wheelibin/daysched/internal/models"
)

// Period is one contiguous on-interval of the day. Start is included and End excluded;
// End <= Start wraps past midnight, and End == Start covers the entire day.
type Period struct {
	Start TimeOfDay
	End   TimeOfDay
}

func NewPeriod(start string, end string) (Period, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Period{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Period{}, err
	}
	return Period{Start: s, End: e}, nil
}

func (p Period) Containing(t TimeOfDay) bool {
	if p.Start < p.End {
		return p.Start <= t && t < p.End
	}
	// wraps midnight or entire day
	return p.Start <= t || t < p.End
}

func (p Period) Wraps() bool {
	return p.End < p.Start
}

func (p Period) EntireDay() bool {
	return p.Start == p.End
}

func (p Period) ToConfig() models.PeriodConfig {
	return models.PeriodConfig{Start: p.Start.String(), End: p.End.String()}
}

func (p Period) String() string {
	return p.Start.String() + "-" + p.End.String()
}
