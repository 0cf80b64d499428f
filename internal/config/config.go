package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Weather providers selectable through WEATHER_PROVIDER.
const (
	WeatherOpenWeather = "openweather"
	WeatherOpenMeteo   = "openmeteo"
	WeatherAPI         = "weatherapi"
	WeatherNone        = "none"
)

type AppConfig struct {
	Port     string `yaml:"port" validate:"required,numeric"`
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	AddressAPIBaseURL string `yaml:"address_api_base_url" validate:"required,url"`

	// WeatherProviders lists enrichment sources in fallback order; empty disables enrichment.
	WeatherProviders   []string `yaml:"weather_providers" validate:"dive,oneof=openweather openmeteo weatherapi"`
	OpenWeatherAPIKey  string   `yaml:"openweather_api_key"`
	OpenWeatherBaseURL string   `yaml:"openweather_base_url" validate:"required,url"`
	WeatherAPIKey      string   `yaml:"weatherapi_api_key"`
	WeatherAPIBaseURL  string   `yaml:"weatherapi_base_url" validate:"required,url"`
	OpenMeteoBaseURL   string   `yaml:"openmeteo_base_url" validate:"required,url"`
	GeocoderAPIKey     string   `yaml:"geocoder_api_key"`
	GeocoderCountry    string   `yaml:"geocoder_country"`

	StorageDriver string `yaml:"storage_driver" validate:"oneof=sqlite memory"`
	StorageDSN    string `yaml:"storage_dsn" validate:"required_if=StorageDriver sqlite"`
	HistoryKey    string `yaml:"history_key" validate:"required"`

	// HTTPTimeout bounds outbound calls; 0 leaves the transport defaults in charge.
	HTTPTimeout time.Duration `yaml:"http_timeout" validate:"gte=0"`

	// MaintenanceInterval controls the storage upkeep job while serving.
	MaintenanceInterval time.Duration `yaml:"maintenance_interval" validate:"gte=0"`
}

var validate = validator.New()

// Defaults returns the configuration used when nothing is set.
func Defaults() *AppConfig {
	return &AppConfig{
		Port:                "8080",
		LogLevel:            "info",
		AddressAPIBaseURL:   "https://viacep.com.br/ws",
		WeatherProviders:    []string{WeatherOpenWeather},
		OpenWeatherBaseURL:  "https://api.openweathermap.org/data/2.5/weather",
		WeatherAPIBaseURL:   "https://api.weatherapi.com/v1/forecast.json",
		OpenMeteoBaseURL:    "https://api.open-meteo.com/v1/forecast",
		GeocoderCountry:     "Brazil",
		StorageDriver:       "sqlite",
		StorageDSN:          "cep-lookup.db",
		HistoryKey:          "searchHistory",
		MaintenanceInterval: time.Hour,
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE and the environment, in that order. A .env file in the working
// directory is loaded first if present.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() error {
	c.Port = getenvDefault("PORT", c.Port)
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)
	c.AddressAPIBaseURL = getenvDefault("ADDRESS_API_BASE_URL", c.AddressAPIBaseURL)

	if v := os.Getenv("WEATHER_PROVIDER"); v != "" {
		c.WeatherProviders = parseProviders(v)
	}
	c.OpenWeatherAPIKey = getenvDefault("OPENWEATHER_API_KEY", c.OpenWeatherAPIKey)
	c.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", c.OpenWeatherBaseURL)
	c.WeatherAPIKey = getenvDefault("WEATHERAPI_API_KEY", c.WeatherAPIKey)
	c.WeatherAPIBaseURL = getenvDefault("WEATHERAPI_BASE_URL", c.WeatherAPIBaseURL)
	c.OpenMeteoBaseURL = getenvDefault("OPENMETEO_BASE_URL", c.OpenMeteoBaseURL)
	c.GeocoderAPIKey = getenvDefault("GEOCODER_API_KEY", c.GeocoderAPIKey)
	c.GeocoderCountry = getenvDefault("GEOCODER_COUNTRY", c.GeocoderCountry)

	c.StorageDriver = getenvDefault("STORAGE_DRIVER", c.StorageDriver)
	c.StorageDSN = getenvDefault("STORAGE_DSN", c.StorageDSN)
	c.HistoryKey = getenvDefault("HISTORY_KEY", c.HistoryKey)

	var err error
	if c.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", c.HTTPTimeout); err != nil {
		return err
	}
	if c.MaintenanceInterval, err = getenvDuration("MAINTENANCE_INTERVAL", c.MaintenanceInterval); err != nil {
		return err
	}
	return nil
}

// parseProviders reads a comma separated provider list; "none" yields an empty list.
func parseProviders(v string) []string {
	out := []string{}
	for _, name := range strings.Split(v, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || name == WeatherNone {
			continue
		}
		out = append(out, name)
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
