package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	rideweather "ride-weather/agents/ride-weather"
	"ride-weather/shared/config"
	"ride-weather/shared/scheduler"
	"ride-weather/shared/weatherkit"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ride-weather <MM.DD.YY>",
	Short: "Render a weather map for a day's ride",
	Long: `ride-weather finds Morning_Ride<MM.DD.YY>.gpx or Afternoon_Ride<MM.DD.YY>.gpx,
looks up WeatherKit conditions for every point recorded on the hour and
writes an annotated map to map_with_weather.html.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRender,
}

var watchCmd = &cobra.Command{
	Use:           "watch",
	Short:         "Render today's ride map on the configured schedule",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// newAgent builds the weather client first so missing credentials fail fast
func newAgent() (*config.Config, *rideweather.RideWeatherAgent, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	client, err := weatherkit.NewClient(&cfg.WeatherKit)
	if err != nil {
		return nil, nil, err
	}

	return cfg, rideweather.NewRideWeatherAgent(cfg, client), nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, agent, err := newAgent()
	if err != nil {
		return err
	}
	agent.SetDate(args[0])

	if err := agent.Initialize(); err != nil {
		return err
	}

	return scheduler.New(cfg, agent).RunOnce(cmd.Context())
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, agent, err := newAgent()
	if err != nil {
		return err
	}

	return scheduler.New(cfg, agent).Start(cmd.Context())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Fatalf("ride-weather failed: %v", err)
	}
}
