package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/i474232898/cep-lookup/internal/config"
	"github.com/i474232898/cep-lookup/internal/history"
	"github.com/i474232898/cep-lookup/internal/lookup"
	"github.com/i474232898/cep-lookup/internal/lookup/providers"
	"github.com/i474232898/cep-lookup/internal/store"
)

// app bundles the wired core shared by every command.
type app struct {
	store   store.Store
	history *history.Store
	session *lookup.Session
}

func newApp(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*app, error) {
	kv, err := store.Open(ctx, cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		return nil, err
	}

	// Shared HTTP client for outbound calls; a zero timeout means none.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	hist := history.NewStore(kv, cfg.HistoryKey)
	addresses := providers.NewViaCEPClient(httpClient, cfg.AddressAPIBaseURL)
	enricher := lookup.NewEnricher(logger, weatherProviders(cfg, httpClient, logger)...)

	return &app{
		store:   kv,
		history: hist,
		session: lookup.NewSession(hist, addresses, enricher, logger),
	}, nil
}

// weatherProviders builds the enrichment chain in the configured order,
// skipping providers that lack credentials.
func weatherProviders(cfg *config.AppConfig, client *http.Client, logger *zap.Logger) []lookup.WeatherProvider {
	var provs []lookup.WeatherProvider
	for _, name := range cfg.WeatherProviders {
		switch name {
		case config.WeatherOpenWeather:
			if cfg.OpenWeatherAPIKey == "" {
				logger.Warn("OPENWEATHER_API_KEY is not set; skipping openweather")
				continue
			}
			provs = append(provs, providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL))
		case config.WeatherAPI:
			if cfg.WeatherAPIKey == "" {
				logger.Warn("WEATHERAPI_API_KEY is not set; skipping weatherapi")
				continue
			}
			provs = append(provs, providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey, cfg.WeatherAPIBaseURL))
		case config.WeatherOpenMeteo:
			// Open-Meteo is keyless, but geocoding the city requires a Google API key.
			// The geocoder library makes its own request with the default HTTP
			// client: HTTP_TIMEOUT does not apply to it, and a cancelled search
			// only stops waiting for it.
			geocode := providers.GoogleGeocoder(cfg.GeocoderAPIKey, cfg.GeocoderCountry)
			provs = append(provs, providers.NewOpenMeteoProvider(client, cfg.OpenMeteoBaseURL, geocode))
		}
	}
	if len(provs) == 0 {
		logger.Info("weather enrichment disabled")
	}
	return provs
}

func (a *app) Close() error {
	return a.store.Close()
}
