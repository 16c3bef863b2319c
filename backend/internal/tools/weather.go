package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"lifegraph/backend/pkg/logger"
)

// openMeteoWeather implements Weather against the Open-Meteo API (free, no
// API key needed)
type openMeteoWeather struct {
	httpClient  *http.Client
	geocodeURL  string
	forecastURL string
	logger      *zap.Logger
}

// NewWeather creates the weather tool. The URLs override the Open-Meteo
// endpoints, mainly for tests.
func NewWeather(geocodeURL, forecastURL string) Weather {
	if geocodeURL == "" {
		geocodeURL = "https://geocoding-api.open-meteo.com/v1/search"
	}
	if forecastURL == "" {
		forecastURL = "https://api.open-meteo.com/v1/forecast"
	}
	return &openMeteoWeather{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		geocodeURL:  geocodeURL,
		forecastURL: forecastURL,
		logger:      logger.Named("tools.weather"),
	}
}

func (w *openMeteoWeather) Name() string {
	return ToolWeather
}

// Current resolves a place name to coordinates and fetches its current
// conditions
func (w *openMeteoWeather) Current(ctx context.Context, location string) (*WeatherReport, error) {
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}

	lat, lon, resolvedName, err := w.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	requestURL := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current_weather=true", w.forecastURL, lat, lon)
	var forecast struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WindSpeed   float64 `json:"windspeed"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	if err := w.getJSON(ctx, requestURL, &forecast); err != nil {
		return nil, fmt.Errorf("weather lookup failed: %w", err)
	}

	report := &WeatherReport{
		Location:    resolvedName,
		Temperature: forecast.CurrentWeather.Temperature,
		WindSpeed:   forecast.CurrentWeather.WindSpeed,
		Condition:   weatherCondition(forecast.CurrentWeather.WeatherCode),
	}

	w.logger.Debug("Weather fetched",
		zap.String("location", report.Location),
		zap.Float64("temperature_c", report.Temperature),
	)
	return report, nil
}

func (w *openMeteoWeather) geocode(ctx context.Context, location string) (lat, lon float64, name string, err error) {
	requestURL := fmt.Sprintf("%s?name=%s&count=1", w.geocodeURL, url.QueryEscape(location))
	var geo struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := w.getJSON(ctx, requestURL, &geo); err != nil {
		return 0, 0, "", fmt.Errorf("geocoding failed: %w", err)
	}
	if len(geo.Results) == 0 {
		return 0, 0, "", fmt.Errorf("unknown location: %s", location)
	}
	result := geo.Results[0]
	return result.Latitude, result.Longitude, result.Name, nil
}

func (w *openMeteoWeather) getJSON(ctx context.Context, requestURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return err
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// weatherCondition maps WMO weather codes to readable labels
func weatherCondition(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 3:
		return "partly cloudy"
	case code <= 48:
		return "fog"
	case code <= 57:
		return "drizzle"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "rain showers"
	case code <= 86:
		return "snow showers"
	default:
		return "thunderstorm"
	}
}
