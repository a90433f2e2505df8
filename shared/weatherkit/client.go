package weatherkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ride-weather/internal/models"
	"ride-weather/shared/config"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

var (
	// ErrWeatherService covers transport, auth, rate-limit and server failures
	ErrWeatherService = errors.New("weather service error")
	// ErrMalformedWeatherPayload means the response lacks fields the report needs
	ErrMalformedWeatherPayload = errors.New("malformed weather payload")
)

// dataSets requested for every point
const dataSets = "currentWeather,forecastDaily"

// Client handles interactions with the WeatherKit REST API
type Client struct {
	config  *config.WeatherKitConfig
	client  *http.Client
	limiter *rate.Limiter
	circuit *gobreaker.CircuitBreaker
}

// NewClient reads the private key and prepares an authenticated HTTP client.
// It fails before any request is made when the key cannot be loaded.
func NewClient(cfg *config.WeatherKitConfig) (*Client, error) {
	key, err := loadPrivateKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}

	tokens := oauth2.ReuseTokenSource(nil, newDeveloperTokenSource(cfg.Team, cfg.Service, cfg.KeyID, key))

	return newClient(cfg, tokens), nil
}

func newClient(cfg *config.WeatherKitConfig, tokens oauth2.TokenSource) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	// Trips only after repeated failures, which matters across scheduled runs
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "weatherkit",
		Timeout: 2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: tokens,
				Base:   http.DefaultTransport,
			},
		},
		limiter: rate.NewLimiter(limit, 1),
		circuit: cb,
	}
}

// GetWeather fetches current conditions and the daily forecast for a single point
func (c *Client) GetWeather(ctx context.Context, lat, lon float64) (*models.WeatherRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait canceled: %v", ErrWeatherService, err)
	}

	endpoint := c.weatherURL(lat, lon)
	log.Printf("Fetching weather data for %.4f, %.4f", lat, lon)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.fetch(ctx, endpoint)
	})
	if err != nil {
		if errors.Is(err, ErrMalformedWeatherPayload) || errors.Is(err, ErrWeatherService) {
			return nil, err
		}
		// gobreaker.ErrOpenState and gobreaker.ErrTooManyRequests
		return nil, fmt.Errorf("%w: %v", ErrWeatherService, err)
	}

	record, ok := result.(*models.WeatherRecord)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type from circuit breaker", ErrWeatherService)
	}
	return record, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (*models.WeatherRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create weather request: %v", ErrWeatherService, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch weather data: %v", ErrWeatherService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: weather API returned status %d: %s", ErrWeatherService, resp.StatusCode, body)
	}

	var record models.WeatherRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("%w: failed to decode weather response: %v", ErrMalformedWeatherPayload, err)
	}

	return &record, nil
}

func (c *Client) weatherURL(lat, lon float64) string {
	values := url.Values{}
	values.Set("dataSets", dataSets)
	values.Set("timezone", "UTC")

	return fmt.Sprintf("%s/api/v1/weather/%s/%s/%s?%s",
		c.config.BaseURL,
		url.PathEscape(c.config.Language),
		strconv.FormatFloat(lat, 'f', 4, 64),
		strconv.FormatFloat(lon, 'f', 4, 64),
		values.Encode())
}
