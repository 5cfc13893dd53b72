package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nathan-osman/go-sunrise"
	"github.com/wheelibin/daysched/internal/constants"
	"github.com/wheelibin/daysched/internal/models"
)

type ScheduleService struct {
	logger      *log.Logger
	geoLocation string
}

// geoLocation is "lat,lng" and is only needed by dynamic schedules
func NewScheduleService(logger *log.Logger, geoLocation string) *ScheduleService {
	return &ScheduleService{logger: logger, geoLocation: geoLocation}
}

// Build resolves any pattern times in cfg for the given date and constructs the schedule.
func (s *ScheduleService) Build(cfg models.ScheduleConfig, date time.Time) (*Schedule, error) {
	if cfg.Type != constants.ScheduleTypeDynamic {
		return New(cfg.Periods)
	}

	sunrise, sunset, err := s.CalculateSunriseSunset(cfg, date)
	if err != nil {
		return nil, err
	}

	resolved := make([]models.PeriodConfig, 0, len(cfg.Periods))
	for _, p := range cfg.Periods {
		start, err := ResolvePatternTime(p.Start, sunrise, sunset)
		if err != nil {
			return nil, fmt.Errorf("schedule (%s): %w", cfg.Name, err)
		}
		end, err := ResolvePatternTime(p.End, sunrise, sunset)
		if err != nil {
			return nil, fmt.Errorf("schedule (%s): %w", cfg.Name, err)
		}
		resolved = append(resolved, models.PeriodConfig{Start: start, End: end})
	}
	s.logger.Debug("Resolved dynamic schedule", "name", cfg.Name, "date", date.Format(time.DateOnly), "periods", resolved)

	return New(resolved)
}

// CalculateSunriseSunset returns the sunrise and sunset for date, in date's location,
// constrained by the schedule's min/max settings.
func (s *ScheduleService) CalculateSunriseSunset(cfg models.ScheduleConfig, date time.Time) (time.Time, time.Time, error) {
	lat, lng, err := parseGeoLocation(s.geoLocation)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	rise, set := sunrise.SunriseSunset(lat, lng, date.Year(), date.Month(), date.Day())
	if rise.IsZero() || set.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("no sunrise or sunset at (%s) on %s", s.geoLocation, date.Format(time.DateOnly))
	}
	rise = rise.In(date.Location())
	set = set.In(date.Location())
	s.logger.Info("Calculated local sunrise and sunset",
		"sunrise", rise.Format(constants.TimeOfDayFormat),
		"sunset", set.Format(constants.TimeOfDayFormat),
	)

	if rise, err = clamp(rise, cfg.SunriseMin, cfg.SunriseMax, date); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("schedule (%s) sunrise limits: %w", cfg.Name, err)
	}
	if set, err = clamp(set, cfg.SunsetMin, cfg.SunsetMax, date); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("schedule (%s) sunset limits: %w", cfg.Name, err)
	}
	return rise, set, nil
}

func clamp(t time.Time, lower string, upper string, date time.Time) (time.Time, error) {
	if lower != "" {
		l, err := TimeFromConfigTimeString(lower, date)
		if err != nil {
			return t, err
		}
		if t.Before(l) {
			t = l
		}
	}
	if upper != "" {
		u, err := TimeFromConfigTimeString(upper, date)
		if err != nil {
			return t, err
		}
		if t.After(u) {
			t = u
		}
	}
	return t, nil
}

func parseGeoLocation(geoLocation string) (float64, float64, error) {
	latLng := strings.Split(geoLocation, ",")
	if len(latLng) != 2 {
		return 0, 0, fmt.Errorf("invalid geoLocation (%s), expected \"lat,lng\"", geoLocation)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latLng[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid geoLocation latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(latLng[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid geoLocation longitude: %w", err)
	}
	return lat, lng, nil
}

// returns the time of day (HH:MM:SS) for a pattern time e.g ("sunset-1h", sunset 21:43:18) -> 20:43:18
// plain times are returned unchanged and parsed later with the rest of the schedule
func ResolvePatternTime(patternTime string, sunrise time.Time, sunset time.Time) (string, error) {
	switch {
	case strings.HasPrefix(patternTime, constants.PatternSunrise):
		return timeFromAstronomicalPatternTime(patternTime, constants.PatternSunrise, sunrise)
	case strings.HasPrefix(patternTime, constants.PatternSunset):
		return timeFromAstronomicalPatternTime(patternTime, constants.PatternSunset, sunset)
	case patternTime == constants.PatternStartOfDay:
		return TimeOfDay(0).String(), nil
	}
	return patternTime, nil
}

func timeFromAstronomicalPatternTime(patternTime string, event string, eventTime time.Time) (string, error) {
	offset := time.Duration(0)
	if patternTime != event {
		rest := patternTime[len(event):]
		if rest[0] != '+' && rest[0] != '-' {
			return "", fmt.Errorf("invalid pattern time (%s), expected %s+/-offset", patternTime, event)
		}
		var err error
		offset, err = time.ParseDuration(rest)
		if err != nil {
			return "", fmt.Errorf("invalid pattern time offset (%s): %w", patternTime, err)
		}
		if offset <= -secondsPerDay*time.Second || offset >= secondsPerDay*time.Second {
			return "", fmt.Errorf("pattern time offset (%s) must be less than a day", patternTime)
		}
	}
	return TimeOfDayOf(eventTime.Add(offset)).String(), nil
}

// returns a Time built from the supplied time string (e.g. "06:30") on the date of baseDate
func TimeFromConfigTimeString(timeString string, baseDate time.Time) (time.Time, error) {
	tod, err := ParseTimeOfDay(timeString)
	if err != nil {
		return time.Time{}, err
	}
	return tod.On(baseDate), nil
}
