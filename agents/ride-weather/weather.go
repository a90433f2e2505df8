package rideweather

import (
	"context"
	"fmt"

	"ride-weather/internal/models"
)

// WeatherFetcher returns the weather for one point. *weatherkit.Client implements it.
type WeatherFetcher interface {
	GetWeather(ctx context.Context, lat, lon float64) (*models.WeatherRecord, error)
}

// FetchWeather calls the fetcher once per point, in order. The first failure aborts.
func FetchWeather(ctx context.Context, fetcher WeatherFetcher, points []models.GeoPoint) ([]*models.WeatherRecord, error) {
	records := make([]*models.WeatherRecord, 0, len(points))
	for i, p := range points {
		record, err := fetcher.GetWeather(ctx, p.Latitude, p.Longitude)
		if err != nil {
			return nil, fmt.Errorf("point %d (%.4f, %.4f): %w", i, p.Latitude, p.Longitude, err)
		}
		records = append(records, record)
	}
	return records, nil
}
