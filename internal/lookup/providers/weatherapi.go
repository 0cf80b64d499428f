package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/cep-lookup/internal/lookup"
)

const DefaultWeatherAPIBaseURL = "https://api.weatherapi.com/v1/forecast.json"

// WeatherAPIProvider implements lookup.WeatherProvider for WeatherAPI.com.
// The one-day forecast endpoint is used because it carries the daily
// extremes and astronomy data alongside current conditions.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey, baseURL string) *WeatherAPIProvider {
	if baseURL == "" {
		baseURL = DefaultWeatherAPIBaseURL
	}
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, city string) (lookup.WeatherSnapshot, error) {
	if p.apiKey == "" {
		return lookup.WeatherSnapshot{}, fmt.Errorf("weatherapi api key is not configured")
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", city)
	values.Set("days", "1")
	values.Set("lang", "pt")

	resp, err := doRequest(ctx, p.client, p.circuit, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()))
	if err != nil {
		return lookup.WeatherSnapshot{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Location struct {
			TzID string `json:"tz_id"`
		} `json:"location"`
		Current *struct {
			TempC      float64 `json:"temp_c"`
			FeelsLikeC float64 `json:"feelslike_c"`
			Humidity   float64 `json:"humidity"`
			PressureMb float64 `json:"pressure_mb"`
			Condition  struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
		Forecast struct {
			Forecastday []struct {
				Date string `json:"date"`
				Day  struct {
					MaxTempC float64 `json:"maxtemp_c"`
					MinTempC float64 `json:"mintemp_c"`
				} `json:"day"`
				Astro struct {
					Sunrise string `json:"sunrise"`
					Sunset  string `json:"sunset"`
				} `json:"astro"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return lookup.WeatherSnapshot{}, err
	}
	if payload.Current == nil {
		return lookup.WeatherSnapshot{}, fmt.Errorf("weatherapi response has no current block")
	}

	snap := lookup.WeatherSnapshot{
		City:        city,
		Provider:    p.name,
		Description: payload.Current.Condition.Text,
		Temperature: payload.Current.TempC,
		FeelsLike:   payload.Current.FeelsLikeC,
		Humidity:    payload.Current.Humidity,
		Pressure:    payload.Current.PressureMb,
	}

	if len(payload.Forecast.Forecastday) > 0 {
		day := payload.Forecast.Forecastday[0]
		snap.TempMax = day.Day.MaxTempC
		snap.TempMin = day.Day.MinTempC

		loc, err := time.LoadLocation(payload.Location.TzID)
		if err != nil {
			loc = time.UTC
		}
		snap.Sunrise = astroEpoch(day.Date, day.Astro.Sunrise, loc)
		snap.Sunset = astroEpoch(day.Date, day.Astro.Sunset, loc)
	}
	return snap, nil
}

// astroEpoch turns WeatherAPI's "2006-01-02" date and "03:04 PM" clock, both
// local to the forecast location, into epoch seconds. Unparsable input gives 0.
func astroEpoch(date, clock string, loc *time.Location) int64 {
	t, err := time.ParseInLocation("2006-01-02 03:04 PM", date+" "+clock, loc)
	if err != nil {
		return 0
	}
	return t.Unix()
}
