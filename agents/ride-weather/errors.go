package rideweather

import (
	"errors"

	"ride-weather/shared/weatherkit"
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format, expected MM.DD.YY")
	ErrTrackFileNotFound = errors.New("track file not found")
	ErrTrackParse        = errors.New("failed to parse track file")
	ErrEmptyPointSet     = errors.New("no hourly points to render")
	ErrMisalignedRecords = errors.New("weather records do not match hourly points")

	// Re-exported so callers only need this package for errors.Is checks
	ErrWeatherService          = weatherkit.ErrWeatherService
	ErrMalformedWeatherPayload = weatherkit.ErrMalformedWeatherPayload
)
