package rideweather

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"ride-weather/shared/config"
	"ride-weather/shared/scheduler"
)

// RideMetrics represents the metrics collected during a map run
type RideMetrics struct {
	TrackFile      string `json:"track_file"`
	HourlyPoints   int    `json:"hourly_points"`
	WeatherFetched int    `json:"weather_fetched"`
	OutputFile     string `json:"output_file"`
}

// GetSummary implements the scheduler.Metrics interface
func (m RideMetrics) GetSummary() string {
	return fmt.Sprintf("%d hourly point(s) from %s, map written to %s",
		m.HourlyPoints, filepath.Base(m.TrackFile), m.OutputFile)
}

// RideWeatherAgent implements the scheduler.Agent interface
type RideWeatherAgent struct {
	config   *config.Config
	weather  WeatherFetcher
	renderer *MapRenderer
	date     string
	now      func() time.Time
}

// NewRideWeatherAgent takes a ready weather client so credential problems surface
// before any date is processed.
func NewRideWeatherAgent(cfg *config.Config, weather WeatherFetcher) *RideWeatherAgent {
	return &RideWeatherAgent{
		config:  cfg,
		weather: weather,
		now:     time.Now,
	}
}

func (a *RideWeatherAgent) Name() string {
	return "Ride Weather Agent"
}

// SetDate pins the ride date (MM.DD.YY). Without it each run uses today's date.
func (a *RideWeatherAgent) SetDate(date string) {
	a.date = date
}

func (a *RideWeatherAgent) Initialize() error {
	log.Printf("Initializing %s...", a.Name())

	if a.weather == nil {
		return fmt.Errorf("weather client must be provided")
	}

	if a.renderer == nil {
		a.renderer = NewMapRenderer(&a.config.Map)
		log.Println("Map renderer initialized")
	}

	info, err := os.Stat(a.config.Track.Dir)
	if err != nil {
		return fmt.Errorf("track directory %s is not accessible: %w", a.config.Track.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("track directory %s is not a directory", a.config.Track.Dir)
	}

	log.Printf("Reading tracks from %s, writing map to %s", a.config.Track.Dir, a.config.Map.OutputFile)
	return nil
}

func (a *RideWeatherAgent) rideDate() string {
	if a.date != "" {
		return a.date
	}
	return a.now().Format(RideDateLayout)
}

func (a *RideWeatherAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	err := a.run(ctx, startTime, events)
	if err != nil && events != nil && events.OnCriticalFailure != nil {
		events.OnCriticalFailure(err, time.Since(startTime))
	}
	return err
}

func (a *RideWeatherAgent) run(ctx context.Context, startTime time.Time, events *scheduler.AgentEvents) error {
	if a.renderer == nil {
		a.renderer = NewMapRenderer(&a.config.Map)
	}

	dateString := a.rideDate()
	metrics := RideMetrics{OutputFile: a.config.Map.OutputFile}

	date, err := ParseRideDate(dateString)
	if err != nil {
		return fmt.Errorf("failed to parse ride date: %w", err)
	}

	log.Printf("Loading track for %s...", date.Format(RideDateLayout))
	track, trackFile, err := LoadTrack(a.config.Track.Dir, dateString)
	if err != nil {
		return fmt.Errorf("failed to load track: %w", err)
	}
	metrics.TrackFile = trackFile

	points := ExtractHourlyPoints(track)
	metrics.HourlyPoints = len(points)
	log.Printf("Found %d hourly point(s) in %s", len(points), trackFile)

	log.Println("Fetching weather data...")
	records, err := FetchWeather(ctx, a.weather, points)
	if err != nil {
		return fmt.Errorf("failed to fetch weather data: %w", err)
	}
	metrics.WeatherFetched = len(records)

	report, err := BuildMapReport(date, trackFile, a.config.Map.ZoomStart, points, records)
	if err != nil {
		return fmt.Errorf("failed to build map: %w", err)
	}

	if err := a.renderer.WriteFile(report, a.config.Map.OutputFile); err != nil {
		return fmt.Errorf("failed to save map: %w", err)
	}

	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}

	log.Printf("Ride weather map complete: points=%d, output=%s", metrics.HourlyPoints, metrics.OutputFile)
	return nil
}
