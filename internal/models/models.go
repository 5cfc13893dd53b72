package models

import "time"

// a single on-period as it appears in config, e.g {"start": "22:00:00", "end": "05:00:00"}
type PeriodConfig struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ScheduleConfig struct {
	Name     string `json:"name"`
	Disabled bool   `json:"disabled"`
	// "fixed" (default) or "dynamic"; dynamic periods may use sunrise/sunset pattern times
	Type       string         `json:"type"`
	SunriseMin string         `json:"sunriseMin"`
	SunriseMax string         `json:"sunriseMax"`
	SunsetMin  string         `json:"sunsetMin"`
	SunsetMax  string         `json:"sunsetMax"`
	Periods    []PeriodConfig `json:"periods"`
}

// the state of a schedule changed (or was evaluated for the first time)
type Transition struct {
	Schedule string    `json:"schedule"`
	On       bool      `json:"on"`
	At       time.Time `json:"at"`
	Initial  bool      `json:"initial,omitempty"`
	// when the schedule will next change state, nil if it never does
	NextUpdate *time.Time `json:"nextUpdate,omitempty"`
}

type ScheduleState struct {
	Name        string         `json:"name"`
	On          bool           `json:"on"`
	Periods     []PeriodConfig `json:"periods"`
	LastChanged time.Time      `json:"lastChanged"`
	NextUpdate  *time.Time     `json:"nextUpdate,omitempty"`
}
