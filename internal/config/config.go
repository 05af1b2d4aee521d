package config

import "github.com/spf13/viper"

// Config holds all configuration for the application, read from an app.env
// file with environment variable overrides.
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	DBSource      string `mapstructure:"DB_SOURCE"`

	// Engine side.
	BackendBaseURL  string `mapstructure:"BACKEND_BASE_URL"`
	GeocodeProvider string `mapstructure:"GEOCODE_PROVIDER"` // "google" or "nominatim"
	GoogleAPIKey    string `mapstructure:"GOOGLE_API_KEY"`
	NominatimServer string `mapstructure:"NOMINATIM_SERVER"`
	GeolocateURL    string `mapstructure:"GEOLOCATE_URL"`
	DebounceMs      int    `mapstructure:"DEBOUNCE_MS"`

	// Weather upstream used by the backend's weather endpoint.
	WeatherBaseURL string `mapstructure:"WEATHER_BASE_URL"`
}

// LoadConfig reads configuration from the app.env file in path, overridden by
// matching environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	viper.SetDefault("BACKEND_BASE_URL", "http://localhost:8080/api")
	viper.SetDefault("GEOCODE_PROVIDER", "nominatim")
	viper.SetDefault("NOMINATIM_SERVER", "https://nominatim.openstreetmap.org")
	viper.SetDefault("GEOLOCATE_URL", "http://ip-api.com/json/")
	viper.SetDefault("DEBOUNCE_MS", 300)
	viper.SetDefault("WEATHER_BASE_URL", "https://api.open-meteo.com/v1/forecast")

	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing {
			return
		}
		// Defaults and environment variables are enough to run the engine.
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
