package models

// WeatherRecord is the subset of a WeatherKit weather response used for map annotations
type WeatherRecord struct {
	CurrentWeather *CurrentWeather `json:"currentWeather"`
	ForecastDaily  *DailyForecast  `json:"forecastDaily"`
}

// CurrentWeather represents the currentWeather data set
type CurrentWeather struct {
	AsOf          string  `json:"asOf"`
	ConditionCode string  `json:"conditionCode"`
	Temperature   float64 `json:"temperature"`   // Celsius
	WindSpeed     float64 `json:"windSpeed"`
	WindGust      float64 `json:"windGust"`
	WindDirection float64 `json:"windDirection"` // degrees
}

// DailyForecast represents the forecastDaily data set
type DailyForecast struct {
	Days []DayWeatherConditions `json:"days"`
}

type DayWeatherConditions struct {
	ForecastStart string `json:"forecastStart"`
	ForecastEnd   string `json:"forecastEnd"`
	Sunrise       string `json:"sunrise"`
	Sunset        string `json:"sunset"` // e.g. "2024-03-15T23:12:00Z"
}
