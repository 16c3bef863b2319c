package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeather_Current(t *testing.T) {
	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Seattle", r.URL.Query().Get("name"))
		w.Write([]byte(`{"results":[{"name":"Seattle","latitude":47.6062,"longitude":-122.3321}]}`))
	}))
	defer geocode.Close()

	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "47.6062", r.URL.Query().Get("latitude"))
		w.Write([]byte(`{"current_weather":{"temperature":14.5,"windspeed":11.2,"weathercode":61}}`))
	}))
	defer forecast.Close()

	weather := NewWeather(geocode.URL, forecast.URL)
	report, err := weather.Current(context.Background(), "Seattle")
	require.NoError(t, err)

	assert.Equal(t, "Seattle", report.Location)
	assert.Equal(t, 14.5, report.Temperature)
	assert.Equal(t, 11.2, report.WindSpeed)
	assert.Equal(t, "rain", report.Condition)
}

func TestWeather_UnknownLocation(t *testing.T) {
	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer geocode.Close()

	weather := NewWeather(geocode.URL, "http://unused")
	_, err := weather.Current(context.Background(), "Nowhereville")
	assert.Error(t, err)
}

func TestWeather_EmptyLocation(t *testing.T) {
	weather := NewWeather("http://unused", "http://unused")
	_, err := weather.Current(context.Background(), "")
	assert.Error(t, err)
}

func TestWeatherCondition(t *testing.T) {
	assert.Equal(t, "clear", weatherCondition(0))
	assert.Equal(t, "partly cloudy", weatherCondition(2))
	assert.Equal(t, "rain", weatherCondition(63))
	assert.Equal(t, "snow", weatherCondition(73))
	assert.Equal(t, "thunderstorm", weatherCondition(95))
}
