package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/rahul/rendezvous/internal/schema"
)

const placesBaseURL = "https://places.googleapis.com/v1"

const placesFieldMask = "places.displayName,places.formattedAddress,places.rating," +
	"places.priceLevel,places.currentOpeningHours,places.internationalPhoneNumber," +
	"places.websiteUri,places.photos,places.types,places.accessibilityOptions," +
	"places.id,places.location"

// PlacesClient talks to the Google Places (New) Text Search API. Without an
// API key it runs in demo mode and serves deterministic sample venues, so
// the rest of the pipeline stays exercisable.
type PlacesClient struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	demoMode bool
}

func NewPlacesClient(apiKey string) *PlacesClient {
	demo := apiKey == "" || apiKey == "demo_mode"
	if demo {
		log.Printf("[PlacesClient] Using demo venues (Google Places API not configured)")
	}
	return &PlacesClient{
		apiKey:   apiKey,
		baseURL:  placesBaseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		demoMode: demo,
	}
}

// NewPlacesClientWithBase is used by tests to point at a local server.
func NewPlacesClientWithBase(apiKey, baseURL string) *PlacesClient {
	c := NewPlacesClient(apiKey)
	c.baseURL = baseURL
	return c
}

type placesSearchRequest struct {
	TextQuery    string `json:"textQuery"`
	LocationBias struct {
		Circle struct {
			Center struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"center"`
			Radius float64 `json:"radius"`
		} `json:"circle"`
	} `json:"locationBias"`
	MaxResultCount int `json:"maxResultCount"`
}

type placesSearchResponse struct {
	Places []placeRecord `json:"places"`
}

type placeRecord struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress string   `json:"formattedAddress"`
	Rating           *float64 `json:"rating"`
	PriceLevel       string   `json:"priceLevel"`
	CurrentHours     *struct {
		OpenNow             *bool    `json:"openNow"`
		WeekdayDescriptions []string `json:"weekdayDescriptions"`
	} `json:"currentOpeningHours"`
	Phone      string `json:"internationalPhoneNumber"`
	WebsiteURI string `json:"websiteUri"`
	Photos     []struct {
		Name string `json:"name"`
	} `json:"photos"`
	Types         []string `json:"types"`
	Accessibility *struct {
		WheelchairAccessibleEntrance *bool `json:"wheelchairAccessibleEntrance"`
	} `json:"accessibilityOptions"`
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

var priceLevelNames = map[string]int{
	"PRICE_LEVEL_FREE":           0,
	"PRICE_LEVEL_INEXPENSIVE":    1,
	"PRICE_LEVEL_MODERATE":       2,
	"PRICE_LEVEL_EXPENSIVE":      3,
	"PRICE_LEVEL_VERY_EXPENSIVE": 4,
}

var cuisineKeywords = []string{"restaurant", "cafe", "bar", "bakery", "food"}

// SearchVenues runs a text search near the given coordinates. It never
// propagates transport errors: any failure is logged and an empty list
// returned, which the executor reports as a partial result.
func (c *PlacesClient) SearchVenues(ctx context.Context, query string, lat, lon float64, radius int, venueType string, maxResults int) ([]schema.Venue, error) {
	log.Printf("[PlacesClient] Searching venues: query=%q, lat=%g, lon=%g", query, lat, lon)

	if c.demoMode {
		log.Printf("[PlacesClient] Demo mode active - returning sample venues")
		return c.demoVenues(lat, lon, maxResults), nil
	}

	body := placesSearchRequest{
		TextQuery:      query + " " + venueType,
		MaxResultCount: maxResults,
	}
	body.LocationBias.Circle.Center.Latitude = lat
	body.LocationBias.Circle.Center.Longitude = lon
	body.LocationBias.Circle.Radius = float64(radius)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", placesFieldMask)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[PlacesClient] Error searching venues: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[PlacesClient] Search returned status %d: %s", resp.StatusCode, text)
		return nil, nil
	}

	var data placesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Printf("[PlacesClient] Error decoding venues: %v", err)
		return nil, nil
	}

	venues := make([]schema.Venue, 0, len(data.Places))
	for _, place := range data.Places {
		venues = append(venues, c.parsePlace(place))
	}
	log.Printf("[PlacesClient] Found %d venues", len(venues))
	return venues, nil
}

func (c *PlacesClient) parsePlace(place placeRecord) schema.Venue {
	name := place.DisplayName.Text
	if name == "" {
		name = "Unknown"
	}
	address := place.FormattedAddress
	if address == "" {
		address = "Address not available"
	}

	var priceLevel *int
	if lvl, ok := priceLevelNames[place.PriceLevel]; ok {
		priceLevel = &lvl
	}

	var openNow *bool
	var openingHours []string
	if place.CurrentHours != nil {
		openNow = place.CurrentHours.OpenNow
		openingHours = place.CurrentHours.WeekdayDescriptions
	}

	var mapsURL string
	if place.Location != nil {
		mapsURL = fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%g,%g&query_place_id=%s",
			place.Location.Latitude, place.Location.Longitude, place.ID)
	} else if place.ID != "" {
		mapsURL = "https://www.google.com/maps/place/?q=place_id:" + place.ID
	}

	var photos []string
	for i, photo := range place.Photos {
		if i == 3 {
			break
		}
		if photo.Name != "" {
			photos = append(photos, fmt.Sprintf(
				"https://places.googleapis.com/v1/%s/media?maxHeightPx=400&maxWidthPx=400&key=%s",
				photo.Name, c.apiKey))
		}
	}

	var cuisineType string
	for _, t := range place.Types {
		for _, keyword := range cuisineKeywords {
			if t == keyword {
				cuisineType = capitalize(t)
				break
			}
		}
		if cuisineType != "" {
			break
		}
	}

	var wheelchair *bool
	if place.Accessibility != nil {
		wheelchair = place.Accessibility.WheelchairAccessibleEntrance
	}

	return schema.Venue{
		Name:                 name,
		Address:              address,
		Rating:               place.Rating,
		PriceLevel:           priceLevel,
		OpenNow:              openNow,
		OpeningHours:         openingHours,
		Phone:                place.Phone,
		Website:              place.WebsiteURI,
		MapsURL:              mapsURL,
		Photos:               photos,
		CuisineType:          cuisineType,
		WheelchairAccessible: wheelchair,
	}
}

// demoVenues fabricates sample venues so the pipeline works end to end
// without a Places API key. The city label is guessed from coordinates.
func (c *PlacesClient) demoVenues(lat, lon float64, maxResults int) []schema.Venue {
	city := "City"
	switch {
	case lat > 18.5 && lat < 19.5 && lon > 72.5 && lon < 73.5:
		city = "Mumbai"
	case lat > 12.5 && lat < 13.5 && lon > 77.0 && lon < 78.0:
		city = "Bangalore"
	case lat > 18.3 && lat < 18.7 && lon > 73.5 && lon < 74.0:
		city = "Pune"
	}

	rating := func(r float64) *float64 { return &r }
	level := func(l int) *int { return &l }
	open := true
	accessible := true
	notAccessible := false
	mapsURL := fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%g,%g", lat, lon)

	venues := []schema.Venue{
		{
			Name:                 "Sample Restaurant 1 - " + city,
			Address:              "123 Main Street, " + city,
			Rating:               rating(4.5),
			PriceLevel:           level(2),
			OpenNow:              &open,
			OpeningHours:         []string{"Monday-Sunday: 11:00 AM – 11:00 PM"},
			Phone:                "+91-1234567890",
			Website:              "https://example.com/restaurant1",
			MapsURL:              mapsURL,
			Photos:               []string{"https://images.unsplash.com/photo-1517248135467-4c7edcad34c4"},
			CuisineType:          "Indian Vegetarian",
			WheelchairAccessible: &accessible,
		},
		{
			Name:                 "Demo Cafe - " + city,
			Address:              "456 Park Avenue, " + city,
			Rating:               rating(4.3),
			PriceLevel:           level(2),
			OpenNow:              &open,
			OpeningHours:         []string{"Monday-Sunday: 10:00 AM – 10:00 PM"},
			Phone:                "+91-9876543210",
			Website:              "https://example.com/cafe",
			MapsURL:              mapsURL,
			Photos:               []string{"https://images.unsplash.com/photo-1554118811-1e0d58224f24"},
			CuisineType:          "Cafe",
			WheelchairAccessible: &accessible,
		},
		{
			Name:                 "Sample Bistro - " + city,
			Address:              "789 Garden Road, " + city,
			Rating:               rating(4.7),
			PriceLevel:           level(3),
			OpenNow:              &open,
			OpeningHours:         []string{"Monday-Sunday: 12:00 PM – 11:00 PM"},
			Phone:                "+91-5555555555",
			Website:              "https://example.com/bistro",
			MapsURL:              mapsURL,
			Photos:               []string{"https://images.unsplash.com/photo-1592861956120-e524fc739696"},
			CuisineType:          "Continental",
			WheelchairAccessible: &notAccessible,
		},
	}

	if maxResults < len(venues) {
		venues = venues[:maxResults]
	}
	return venues
}
