package lookup

import (
	"strconv"
	"strings"
)

// AddressRecord is a postal code resolved to an address.
type AddressRecord struct {
	PostalCode   string `json:"postalCode"`
	Street       string `json:"street"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	IBGE         string `json:"ibge,omitempty"`
	DDD          string `json:"ddd,omitempty"`
}

// WeatherSnapshot holds current conditions for a city.
// Sunrise and Sunset are epoch seconds; the Text fields are local H:MM clocks.
type WeatherSnapshot struct {
	City        string  `json:"city"`
	Provider    string  `json:"provider"`
	Description string  `json:"description,omitempty"`
	Temperature float64 `json:"temperatureC"`
	FeelsLike   float64 `json:"feelsLikeC"`
	Humidity    float64 `json:"humidityPercent"`
	Pressure    float64 `json:"pressureHpa"`
	TempMin     float64 `json:"tempMinC"`
	TempMax     float64 `json:"tempMaxC"`
	Sunrise     int64   `json:"sunrise"`
	Sunset      int64   `json:"sunset"`
	SunriseText string  `json:"sunriseText"`
	SunsetText  string  `json:"sunsetText"`
}

// PostalCodeLength is the number of digits in a CEP.
const PostalCodeLength = 8

// PostalCodeRule is the validator rule input surfaces check a normalized code
// against.
var PostalCodeRule = "required,numeric,len=" + strconv.Itoa(PostalCodeLength)

// NormalizePostalCode strips blanks and the "-" separator, so "01310-000"
// becomes "01310000". It does not check the result.
func NormalizePostalCode(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t', '\n', '\r', '.':
			return -1
		}
		return r
	}, raw)
}
