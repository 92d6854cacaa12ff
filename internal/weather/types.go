package weather

import (
	"context"
	"math"
	"time"
)

const (
	DateLayout  = "02-01-06"
	ClockLayout = "15:04"
)

// Current is the present conditions for a city. Temperatures are in Celsius,
// wind speed in km/h.
type Current struct {
	City        string
	Temperature float64
	Humidity    float64
	MinTemp     float64
	MaxTemp     float64
	FeelsLike   float64
	WindSpeed   float64
	Cloudiness  string
	Icon        string
	Sunrise     time.Time
	Sunset      time.Time
	Lat         float64
	Lon         float64
}

func (c Current) SunriseClock() string { return c.Sunrise.Format(ClockLayout) }
func (c Current) SunsetClock() string  { return c.Sunset.Format(ClockLayout) }

type ForecastDay struct {
	Date        time.Time
	Temperature float64
	Icon        string
}

func (d ForecastDay) DateLabel() string { return d.Date.Format(DateLayout) }

// Source fetches weather. A false ok means the provider answered but reported
// no data for the request; err is reserved for transport and decode failures.
type Source interface {
	Current(ctx context.Context, city string) (Current, bool, error)
	Forecast(ctx context.Context, lat, lon float64) ([]ForecastDay, bool, error)
}

func KelvinToCelsius(k float64) float64 {
	return round(k-273.15, 2)
}

func MetersPerSecondToKMH(v float64) float64 {
	return round(v*3.6, 1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
