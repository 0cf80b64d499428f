package lookup

import (
	"context"
)

// AddressClient resolves postal codes.
//
// Resolve returns ErrNotFound when the API reports the code does not exist
// and an error wrapping ErrLookupFailed for any other failure.
type AddressClient interface {
	Resolve(ctx context.Context, code string) (AddressRecord, error)
}

// WeatherProvider fetches current conditions for a city
// (e.g. OpenWeatherMap, Open-Meteo).
type WeatherProvider interface {
	Name() string
	Fetch(ctx context.Context, city string) (WeatherSnapshot, error)
}

// Enricher is the best-effort weather lookup used after a successful address
// lookup. It has no error result: ok=false means no snapshot is available.
type Enricher interface {
	Enrich(ctx context.Context, city string) (snapshot WeatherSnapshot, ok bool)
}
