package models

// WeatherData is the current-weather snapshot for a coordinate pair.
type WeatherData struct {
	TemperatureC float64 `json:"temperatureC"`
	WindspeedKmh float64 `json:"windspeedKmh"`
	WeatherCode  int     `json:"weatherCode"`
	Description  string  `json:"description"`
}

// WeatherResponse echoes the queried coordinates alongside the weather.
// Weather is nil when the upstream weather service failed; the lookup itself
// still succeeds.
type WeatherResponse struct {
	Latitude  string       `json:"latitude"`
	Longitude string       `json:"longitude"`
	Weather   *WeatherData `json:"weather,omitempty"`
}
