package config

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/wheelibin/daysched/internal/constants"
	"github.com/wheelibin/daysched/internal/models"
)

type Config struct {
	GeoLocation   string
	ListenAddress string
	LogFile       string
	LogLevel      string
	Schedules     []models.ScheduleConfig
}

// InitialiseConfig reads the config file, searching the usual locations when configFile is empty.
// Values can be overridden with DAYSCHED_ prefixed environment variables, e.g DAYSCHED_LOGLEVEL.
func InitialiseConfig(configFile string) error {
	viper.SetDefault("listenAddress", constants.DefaultListenAddress)
	viper.SetDefault("logLevel", constants.DefaultLogLevel)

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")                  // name of config file (without extension)
		viper.SetConfigType("json")                    // REQUIRED if the config file does not have the extension in the name
		viper.AddConfigPath("/etc/daysched/")          // path to look for the config file in
		viper.AddConfigPath("$HOME/.config/daysched/") // call multiple times to add many search paths
		viper.AddConfigPath(".")                       // optionally look for config in the working directory
	}

	viper.SetEnvPrefix("daysched")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

func ReadConfig() (*Config, error) {
	schedules, err := ReadSchedules()
	if err != nil {
		return nil, err
	}
	return &Config{
		GeoLocation:   viper.GetString("geoLocation"),
		ListenAddress: viper.GetString("listenAddress"),
		LogFile:       viper.GetString("logFile"),
		LogLevel:      viper.GetString("logLevel"),
		Schedules:     schedules,
	}, nil
}

// ReadSchedules returns the configured schedules, checking names and types but not periods.
func ReadSchedules() ([]models.ScheduleConfig, error) {
	var schedules []models.ScheduleConfig
	if err := viper.UnmarshalKey("schedules", &schedules); err != nil {
		return nil, fmt.Errorf("error reading schedules from config: %w", err)
	}

	seen := map[string]bool{}
	for i, s := range schedules {
		if s.Name == "" {
			return nil, fmt.Errorf("schedule %d has no name", i+1)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("schedule (%s) is configured more than once", s.Name)
		}
		seen[s.Name] = true

		switch s.Type {
		case "":
			schedules[i].Type = constants.ScheduleTypeFixed
		case constants.ScheduleTypeFixed, constants.ScheduleTypeDynamic:
		default:
			return nil, fmt.Errorf("schedule (%s) has unknown type (%s)", s.Name, s.Type)
		}
	}
	return schedules, nil
}

// FindSchedule returns the named schedule config.
func FindSchedule(schedules []models.ScheduleConfig, name string) (models.ScheduleConfig, error) {
	for _, s := range schedules {
		if s.Name == name {
			return s, nil
		}
	}
	return models.ScheduleConfig{}, fmt.Errorf("schedule (%s) not found in config", name)
}
