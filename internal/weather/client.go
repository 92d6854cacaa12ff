package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	APIKey      string
	CurrentURL  string
	ForecastURL string
	// IconURL is a format string taking the icon code.
	IconURL  string
	Timezone string
	Timeout  time.Duration
}

// Client talks to the OpenWeatherMap current weather and one-call endpoints.
// Responses are requested in the default Kelvin units and converted here.
type Client struct {
	apiKey      string
	currentURL  string
	forecastURL string
	iconURL     string
	location    *time.Location
	httpClient  *http.Client
	logger      *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("weather API key is not set")
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid display timezone %q: %w", cfg.Timezone, err)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	iconURL := cfg.IconURL
	if iconURL == "" {
		iconURL = "https://openweathermap.org/img/wn/%s@2x.png"
	}

	return &Client{
		apiKey:      cfg.APIKey,
		currentURL:  cfg.CurrentURL,
		forecastURL: cfg.ForecastURL,
		iconURL:     iconURL,
		location:    loc,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

type currentResponse struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      float64 `json:"temp"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main string `json:"main"`
		Icon string `json:"icon"`
	} `json:"weather"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

type forecastResponse struct {
	Daily []struct {
		Dt   int64 `json:"dt"`
		Temp struct {
			Day float64 `json:"day"`
		} `json:"temp"`
		Weather []struct {
			Icon string `json:"icon"`
		} `json:"weather"`
	} `json:"daily"`
}

// Current fetches present conditions for a city.
func (c *Client) Current(ctx context.Context, city string) (Current, bool, error) {
	params := url.Values{}
	params.Add("q", strings.TrimSpace(city))
	params.Add("appid", c.apiKey)

	var response currentResponse
	ok, err := c.get(ctx, c.currentURL, params, &response)
	if err != nil || !ok {
		return Current{}, ok, err
	}

	cloudiness, icon := "", ""
	if len(response.Weather) > 0 {
		cloudiness = response.Weather[0].Main
		icon = c.icon(response.Weather[0].Icon)
	}

	return Current{
		City:        response.Name,
		Temperature: KelvinToCelsius(response.Main.Temp),
		Humidity:    response.Main.Humidity,
		MinTemp:     KelvinToCelsius(response.Main.TempMin),
		MaxTemp:     KelvinToCelsius(response.Main.TempMax),
		FeelsLike:   KelvinToCelsius(response.Main.FeelsLike),
		WindSpeed:   MetersPerSecondToKMH(response.Wind.Speed),
		Cloudiness:  cloudiness,
		Icon:        icon,
		Sunrise:     time.Unix(response.Sys.Sunrise, 0).In(c.location),
		Sunset:      time.Unix(response.Sys.Sunset, 0).In(c.location),
		Lat:         response.Coord.Lat,
		Lon:         response.Coord.Lon,
	}, true, nil
}

// Forecast fetches the daily forecast for a coordinate, dropping the first
// entry which describes today.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]ForecastDay, bool, error) {
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Add("exclude", "current,minutely,hourly,alerts")
	params.Add("appid", c.apiKey)

	var response forecastResponse
	ok, err := c.get(ctx, c.forecastURL, params, &response)
	if err != nil || !ok {
		return nil, ok, err
	}

	if len(response.Daily) <= 1 {
		return []ForecastDay{}, true, nil
	}

	days := make([]ForecastDay, 0, len(response.Daily)-1)
	for _, d := range response.Daily[1:] {
		icon := ""
		if len(d.Weather) > 0 {
			icon = c.icon(d.Weather[0].Icon)
		}
		days = append(days, ForecastDay{
			Date:        time.Unix(d.Dt, 0).In(c.location),
			Temperature: KelvinToCelsius(d.Temp.Day),
			Icon:        icon,
		})
	}

	return days, true, nil
}

// get issues one GET and decodes a 200 body into out. Any other status is
// reported as ok == false.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Info("weather provider returned no data",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return false, nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}

	return true, nil
}

func (c *Client) icon(code string) string {
	if code == "" {
		return ""
	}
	return fmt.Sprintf(c.iconURL, code)
}

var _ Source = (*Client)(nil)
