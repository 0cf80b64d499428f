package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/cep-lookup/internal/lookup"
)

const DefaultOpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

// GeocodeFunc resolves a city to coordinates.
type GeocodeFunc func(ctx context.Context, city string) (lat, lon float64, err error)

// googleGeocoding is swapped in tests.
var googleGeocoding = geocoder.Geocoding

// GoogleGeocoder returns a GeocodeFunc backed by the Google Geocoding API.
// country narrows the search, e.g. "Brazil".
//
// The geocoder package keeps its key in a package variable, so it is set here
// once; the returned func only reads it. The package also issues its request
// with the default HTTP client, so neither ctx nor the shared client's timeout
// reach that request: a cancelled ctx makes the call return early while the
// request itself runs on in the background.
func GoogleGeocoder(apiKey, country string) GeocodeFunc {
	if apiKey != "" {
		geocoder.ApiKey = apiKey
	}
	geocoding := googleGeocoding
	return func(ctx context.Context, city string) (float64, float64, error) {
		if apiKey == "" {
			return 0, 0, fmt.Errorf("geocoder api key is not configured")
		}
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}

		type result struct {
			loc geocoder.Location
			err error
		}
		done := make(chan result, 1)
		go func() {
			loc, err := geocoding(geocoder.Address{
				City:    city,
				Country: country,
			})
			done <- result{loc: loc, err: err}
		}()

		select {
		case <-ctx.Done():
			return 0, 0, fmt.Errorf("geocode %q: %w", city, ctx.Err())
		case r := <-done:
			if r.err != nil {
				return 0, 0, fmt.Errorf("geocode %q: %w", city, r.err)
			}
			return r.loc.Latitude, r.loc.Longitude, nil
		}
	}
}

// OpenMeteoProvider implements lookup.WeatherProvider for Open-Meteo. Open-Meteo
// needs coordinates, so the city is geocoded first.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	geocode GeocodeFunc
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, baseURL string, geocode GeocodeFunc) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoBaseURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		geocode: geocode,
		client:  client,
		circuit: newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, city string) (lookup.WeatherSnapshot, error) {
	if p.geocode == nil {
		return lookup.WeatherSnapshot{}, fmt.Errorf("openmeteo requires a geocoder")
	}
	lat, lon, err := p.geocode(ctx, city)
	if err != nil {
		return lookup.WeatherSnapshot{}, err
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("current", strings.Join([]string{
		"temperature_2m", "apparent_temperature", "relative_humidity_2m", "surface_pressure",
	}, ","))
	values.Set("daily", strings.Join([]string{
		"sunrise", "sunset", "temperature_2m_max", "temperature_2m_min",
	}, ","))
	values.Set("timeformat", "unixtime")
	values.Set("timezone", "auto")
	values.Set("forecast_days", "1")

	resp, err := doRequest(ctx, p.client, p.circuit, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()))
	if err != nil {
		return lookup.WeatherSnapshot{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current *struct {
			Temperature         float64 `json:"temperature_2m"`
			ApparentTemperature float64 `json:"apparent_temperature"`
			RelativeHumidity    float64 `json:"relative_humidity_2m"`
			SurfacePressure     float64 `json:"surface_pressure"`
		} `json:"current"`
		Daily struct {
			Sunrise []int64   `json:"sunrise"`
			Sunset  []int64   `json:"sunset"`
			TempMax []float64 `json:"temperature_2m_max"`
			TempMin []float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return lookup.WeatherSnapshot{}, err
	}
	if payload.Current == nil {
		return lookup.WeatherSnapshot{}, fmt.Errorf("openmeteo response has no current block")
	}

	snap := lookup.WeatherSnapshot{
		City:        city,
		Provider:    p.name,
		Temperature: payload.Current.Temperature,
		FeelsLike:   payload.Current.ApparentTemperature,
		Humidity:    payload.Current.RelativeHumidity,
		Pressure:    payload.Current.SurfacePressure,
	}
	// Daily arrays hold one entry per forecast day; only today is requested.
	if len(payload.Daily.Sunrise) > 0 {
		snap.Sunrise = payload.Daily.Sunrise[0]
	}
	if len(payload.Daily.Sunset) > 0 {
		snap.Sunset = payload.Daily.Sunset[0]
	}
	if len(payload.Daily.TempMax) > 0 {
		snap.TempMax = payload.Daily.TempMax[0]
	}
	if len(payload.Daily.TempMin) > 0 {
		snap.TempMin = payload.Daily.TempMin[0]
	}
	return snap, nil
}
