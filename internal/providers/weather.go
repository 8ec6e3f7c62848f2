// Package providers holds the HTTP clients for the external data sources
// queried by the executor: OpenWeatherMap, Google Places and Unsplash.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rahul/rendezvous/internal/schema"
)

const weatherBaseURL = "https://api.openweathermap.org/data/2.5"

// WeatherClient talks to the OpenWeatherMap current-weather endpoint.
type WeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewWeatherClient(apiKey string) *WeatherClient {
	return &WeatherClient{
		apiKey:  apiKey,
		baseURL: weatherBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWeatherClientWithBase is used by tests to point at a local server.
func NewWeatherClientWithBase(apiKey, baseURL string) *WeatherClient {
	c := NewWeatherClient(apiKey)
	c.baseURL = baseURL
	return c
}

type owResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain map[string]float64 `json:"rain"`
}

// Forecast fetches the current weather for a location. The target datetime
// is accepted for interface compatibility but the current-weather endpoint
// ignores it.
func (c *WeatherClient) Forecast(ctx context.Context, lat, lon float64, targetDatetime string) (*schema.Weather, error) {
	log.Printf("[WeatherClient] Fetching weather: lat=%g, lon=%g, datetime=%q", lat, lon, targetDatetime)

	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%g", lat))
	params.Set("lon", fmt.Sprintf("%g", lon))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	reqURL := c.baseURL + "/weather?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather request returned status %d", resp.StatusCode)
	}

	var data owResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	weather := c.parse(data)
	log.Printf("[WeatherClient] Weather fetched: %s, %.1f°C", weather.Condition, weather.Temperature)
	return weather, nil
}

func (c *WeatherClient) parse(data owResponse) *schema.Weather {
	condition := "Unknown"
	description := ""
	if len(data.Weather) > 0 {
		condition = data.Weather[0].Main
		description = capitalize(data.Weather[0].Description)
	}

	// Rain probability is an approximation: the free endpoint has no direct
	// probability field.
	var rainProbability *float64
	if len(data.Rain) > 0 {
		p := 80.0
		rainProbability = &p
	} else if strings.Contains(strings.ToLower(condition), "rain") ||
		strings.Contains(strings.ToLower(description), "drizzle") {
		p := 60.0
		rainProbability = &p
	}

	return &schema.Weather{
		Temperature:     data.Main.Temp,
		FeelsLike:       data.Main.FeelsLike,
		Condition:       condition,
		Description:     description,
		Humidity:        data.Main.Humidity,
		WindSpeed:       data.Wind.Speed,
		RainProbability: rainProbability,
		Suggestion:      weatherSuggestion(data.Main.Temp, condition, rainProbability),
	}
}

func weatherSuggestion(temperature float64, condition string, rainProb *float64) string {
	var suggestions []string

	switch {
	case temperature < 15:
		suggestions = append(suggestions, "Bring a jacket - it's quite cool")
	case temperature < 20:
		suggestions = append(suggestions, "Wear a light sweater")
	case temperature > 32:
		suggestions = append(suggestions,
			"Dress light - it's hot outside",
			"Choose an air-conditioned venue")
	}

	lower := strings.ToLower(condition)
	if rainProb != nil && *rainProb > 50 {
		suggestions = append(suggestions,
			"High chance of rain - carry an umbrella",
			"Consider indoor activities or venues with covered seating")
	} else if strings.Contains(lower, "rain") {
		suggestions = append(suggestions, "Rain expected - plan for indoor activities")
	}

	if strings.Contains(lower, "clear") || strings.Contains(lower, "sunny") {
		suggestions = append(suggestions, "Perfect weather for outdoor dining")
	} else if strings.Contains(lower, "cloud") {
		suggestions = append(suggestions, "Pleasant weather for an outing")
	}

	if len(suggestions) == 0 {
		return "Weather looks good for your outing"
	}
	return strings.Join(suggestions, " | ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
