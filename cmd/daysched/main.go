// Package main provides the daysched command line tool for checking and querying schedules.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/wheelibin/daysched/internal/config"
	"github.com/wheelibin/daysched/internal/events"
	"github.com/wheelibin/daysched/internal/models"
	"github.com/wheelibin/daysched/internal/schedule"
)

// errInvalidConfig is returned by check when at least one schedule fails to build.
var errInvalidConfig = errors.New("config contains invalid schedules")

// App holds the CLI application state.
type App struct {
	cfgFile string
	at      string
	date    string
	from    string
	url     string
	now     func() time.Time
	rootCmd *cobra.Command
}

// NewApp creates a new CLI application instance.
func NewApp() *App {
	app := &App{now: time.Now}
	app.rootCmd = app.buildRootCmd()
	app.setupFlags()
	app.addCommands()
	return app
}

func (a *App) buildRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daysched",
		Short: "Check and query daily schedules",
		Long: `daysched reads the same config as dayschedd and answers questions about
its schedules: are they valid, are they on at a given time, and when do they
next change state.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func (a *App) setupFlags() {
	a.rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default: search /etc/daysched, ~/.config/daysched, .)")
}

func (a *App) addCommands() {
	a.rootCmd.AddCommand(a.buildCheckCmd())
	a.rootCmd.AddCommand(a.buildContainsCmd())
	a.rootCmd.AddCommand(a.buildNextCmd())
	a.rootCmd.AddCommand(a.buildWatchCmd())
}

func (a *App) buildCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate every configured schedule",
		Long: `Build every configured schedule and print its normalized periods.

Dynamic schedules are resolved for --date (default today).`,
		Args: cobra.NoArgs,
		RunE: a.runCheck,
	}
	cmd.Flags().StringVar(&a.date, "date", "", "date to resolve dynamic schedules for (YYYY-MM-DD)")
	return cmd
}

func (a *App) buildContainsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contains <schedule>",
		Short: "Print whether a schedule is on at a time of day",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runContains,
	}
	cmd.Flags().StringVar(&a.at, "at", "", "time of day (HH:MM:SS, default now)")
	cmd.Flags().StringVar(&a.date, "date", "", "date to resolve dynamic schedules for (YYYY-MM-DD)")
	return cmd
}

func (a *App) buildNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next <schedule>",
		Short: "Print when a schedule next changes state",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runNext,
	}
	cmd.Flags().StringVar(&a.from, "from", "", "reference time (RFC3339, default now)")
	return cmd
}

func (a *App) buildWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print transitions published by a running dayschedd",
		Args:  cobra.NoArgs,
		RunE:  a.runWatch,
	}
	cmd.Flags().StringVar(&a.url, "url", "http://localhost:8089/events", "dayschedd event stream url")
	return cmd
}

func (a *App) loadSchedules() ([]models.ScheduleConfig, *schedule.ScheduleService, error) {
	if err := config.InitialiseConfig(a.cfgFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.ReadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})
	return cfg.Schedules, schedule.NewScheduleService(logger, cfg.GeoLocation), nil
}

func (a *App) referenceDate() (time.Time, error) {
	if a.date == "" {
		return a.now(), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, a.date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date: %w", err)
	}
	return d, nil
}

func (a *App) runCheck(cmd *cobra.Command, _ []string) error {
	schedules, ss, err := a.loadSchedules()
	if err != nil {
		return err
	}
	date, err := a.referenceDate()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	invalid := 0
	for _, s := range schedules {
		sch, err := ss.Build(s, date)
		if err != nil {
			invalid++
			fmt.Fprintf(out, "%s: INVALID: %v\n", s.Name, err)
			continue
		}
		status := "ok"
		if s.Disabled {
			status = "ok (disabled)"
		}
		fmt.Fprintf(out, "%s: %s: %s\n", s.Name, status, formatPeriods(sch.ToList()))
	}

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", errInvalidConfig, invalid, len(schedules))
	}
	return nil
}

func (a *App) runContains(cmd *cobra.Command, args []string) error {
	date, err := a.referenceDate()
	if err != nil {
		return err
	}
	sch, err := a.buildNamed(args[0], date)
	if err != nil {
		return err
	}

	tod := schedule.TimeOfDayOf(a.now())
	if a.at != "" {
		if tod, err = schedule.ParseTimeOfDay(a.at); err != nil {
			return err
		}
	}

	state := "off"
	if sch.Containing(tod) {
		state = "on"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s at %s: %s\n", args[0], tod, state)
	return nil
}

func (a *App) runNext(cmd *cobra.Command, args []string) error {
	from := a.now()
	if a.from != "" {
		var err error
		// an offset matching the local zone keeps time.Local, so tomorrow follows its DST rules
		if from, err = time.ParseInLocation(time.RFC3339, a.from, time.Local); err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
	}

	sch, err := a.buildNamed(args[0], from)
	if err != nil {
		return err
	}

	next, ok := sch.NextUpdate(from)
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: never changes\n", args[0])
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], next.Format(time.RFC3339))
	return nil
}

func (a *App) buildNamed(name string, date time.Time) (*schedule.Schedule, error) {
	schedules, ss, err := a.loadSchedules()
	if err != nil {
		return nil, err
	}
	cfg, err := config.FindSchedule(schedules, name)
	if err != nil {
		return nil, err
	}
	return ss.Build(cfg, date)
}

func (a *App) runWatch(cmd *cobra.Command, _ []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.InfoLevel, ReportTimestamp: true})
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	return events.NewConsumer(logger, a.url).Subscribe(ctx, func(t models.Transition) {
		state := "off"
		if t.On {
			state = "on"
		}
		next := "never"
		if t.NextUpdate != nil {
			next = t.NextUpdate.Format(time.RFC3339)
		}
		fmt.Fprintf(out, "%s %s: %s (next %s)\n", t.At.Format(time.RFC3339), t.Schedule, state, next)
	})
}

func formatPeriods(periods []models.PeriodConfig) string {
	if len(periods) == 0 {
		return "no periods"
	}
	return strings.Join(lo.Map(periods, func(p models.PeriodConfig, _ int) string {
		return p.Start + "-" + p.End
	}), ", ")
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

func main() {
	app := NewApp()
	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
