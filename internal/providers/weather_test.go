package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"main": {"temp": 28.4, "feels_like": 30.1, "humidity": 65},
			"weather": [{"main": "Clear", "description": "clear sky"}],
			"wind": {"speed": 3.2}
		}`))
	}))
	defer srv.Close()

	c := NewWeatherClientWithBase("test-key", srv.URL)
	weather, err := c.Forecast(context.Background(), 19.076, 72.8777, "")
	require.NoError(t, err)
	require.NotNil(t, weather)

	assert.Equal(t, 28.4, weather.Temperature)
	assert.Equal(t, "Clear", weather.Condition)
	assert.Equal(t, "Clear sky", weather.Description)
	assert.Equal(t, 65, weather.Humidity)
	assert.Nil(t, weather.RainProbability)
	assert.Contains(t, weather.Suggestion, "Perfect weather for outdoor dining")
}

func TestWeatherRainProbability(t *testing.T) {
	t.Run("rain volume present", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"main": {"temp": 24},
				"weather": [{"main": "Rain", "description": "moderate rain"}],
				"rain": {"1h": 2.5}
			}`))
		}))
		defer srv.Close()

		weather, err := NewWeatherClientWithBase("k", srv.URL).Forecast(context.Background(), 0, 0, "")
		require.NoError(t, err)
		require.NotNil(t, weather.RainProbability)
		assert.Equal(t, 80.0, *weather.RainProbability)
		assert.Contains(t, weather.Suggestion, "carry an umbrella")
	})

	t.Run("rain condition only", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"main": {"temp": 24},
				"weather": [{"main": "Rain", "description": "light rain"}]
			}`))
		}))
		defer srv.Close()

		weather, err := NewWeatherClientWithBase("k", srv.URL).Forecast(context.Background(), 0, 0, "")
		require.NoError(t, err)
		require.NotNil(t, weather.RainProbability)
		assert.Equal(t, 60.0, *weather.RainProbability)
	})
}

func TestWeatherErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := NewWeatherClient("").Forecast(context.Background(), 0, 0, "")
		assert.Error(t, err)
	})

	t.Run("api error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := NewWeatherClientWithBase("bad-key", srv.URL).Forecast(context.Background(), 0, 0, "")
		assert.Error(t, err)
	})
}

func TestWeatherSuggestionRules(t *testing.T) {
	tests := []struct {
		name      string
		temp      float64
		condition string
		want      string
	}{
		{"cold", 12, "Clouds", "Bring a jacket - it's quite cool"},
		{"cool", 18, "Clouds", "Wear a light sweater"},
		{"hot", 38, "Clear", "Dress light - it's hot outside"},
		{"cloudy", 25, "Clouds", "Pleasant weather for an outing"},
		{"plain", 25, "Haze", "Weather looks good for your outing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := weatherSuggestion(tt.temp, tt.condition, nil)
			assert.Contains(t, got, tt.want)
		})
	}
}
