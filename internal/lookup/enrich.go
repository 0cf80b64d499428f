package lookup

import (
	"context"

	"go.uber.org/zap"
)

// BestEffort is an Enricher over an ordered list of weather providers.
// The first provider that answers wins; failures are logged and swallowed.
type BestEffort struct {
	providers []WeatherProvider
	logger    *zap.Logger
}

// NewEnricher creates a BestEffort enricher. With no providers every Enrich
// call reports ok=false.
func NewEnricher(logger *zap.Logger, providers ...WeatherProvider) *BestEffort {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BestEffort{
		providers: providers,
		logger:    logger,
	}
}

func (e *BestEffort) Enrich(ctx context.Context, city string) (WeatherSnapshot, bool) {
	if city == "" {
		return WeatherSnapshot{}, false
	}

	for _, p := range e.providers {
		snap, err := p.Fetch(ctx, city)
		if err != nil {
			e.logger.Debug("weather provider failed",
				zap.String("provider", p.Name()),
				zap.String("city", city),
				zap.Error(err))
			continue
		}

		if snap.Provider == "" {
			snap.Provider = p.Name()
		}
		if snap.City == "" {
			snap.City = city
		}
		if snap.Sunrise != 0 {
			snap.SunriseText = FormatClock(snap.Sunrise)
		}
		if snap.Sunset != 0 {
			snap.SunsetText = FormatClock(snap.Sunset)
		}
		return snap, true
	}

	return WeatherSnapshot{}, false
}
