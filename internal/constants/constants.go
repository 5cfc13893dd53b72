package constants

import "time"

// the longest the runner will sleep between evaluations, guards against wall clock jumps
const MaxSleepInterval = time.Minute

const TimeOfDayFormat = "15:04:05"

// schedule types
const ScheduleTypeFixed = "fixed"
const ScheduleTypeDynamic = "dynamic"

// pattern times usable in dynamic schedules
const PatternSunrise = "sunrise"
const PatternSunset = "sunset"
const PatternStartOfDay = "startofday"

// event stream
const TransitionStream = "transitions"
const EventTypeTransition = "transition"

const DefaultListenAddress = ":8089"
const DefaultLogLevel = "info"
