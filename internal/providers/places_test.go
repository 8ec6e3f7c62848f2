package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlacesDemoMode(t *testing.T) {
	c := NewPlacesClient("")
	venues, err := c.SearchVenues(context.Background(), "rooftop restaurant", 19.076, 72.8777, 3000, "restaurant", 5)
	require.NoError(t, err)
	require.Len(t, venues, 3)

	assert.Equal(t, "Sample Restaurant 1 - Mumbai", venues[0].Name)
	require.NotNil(t, venues[0].Rating)
	assert.Equal(t, 4.5, *venues[0].Rating)
	require.NotNil(t, venues[0].WheelchairAccessible)
	assert.True(t, *venues[0].WheelchairAccessible)
	require.NotNil(t, venues[2].WheelchairAccessible)
	assert.False(t, *venues[2].WheelchairAccessible)

	// max_results truncates the demo list.
	fewer, err := c.SearchVenues(context.Background(), "cafe", 12.97, 77.59, 3000, "cafe", 2)
	require.NoError(t, err)
	require.Len(t, fewer, 2)
	assert.Contains(t, fewer[0].Name, "Bangalore")

	// Unknown coordinates label generically.
	generic, err := c.SearchVenues(context.Background(), "bar", 51.5, -0.1, 3000, "bar", 5)
	require.NoError(t, err)
	assert.Contains(t, generic[0].Name, "City")
}

func TestPlacesSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places:searchText", r.URL.Path)
		assert.Equal(t, "real-key", r.Header.Get("X-Goog-Api-Key"))
		assert.NotEmpty(t, r.Header.Get("X-Goog-FieldMask"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rooftop restaurant", req["textQuery"])

		w.Write([]byte(`{"places": [{
			"id": "abc123",
			"displayName": {"text": "Skyline Lounge"},
			"formattedAddress": "1 High St, Mumbai",
			"rating": 4.6,
			"priceLevel": "PRICE_LEVEL_EXPENSIVE",
			"currentOpeningHours": {"openNow": true, "weekdayDescriptions": ["Monday: 5 PM - 1 AM"]},
			"internationalPhoneNumber": "+91 11111",
			"websiteUri": "https://skyline.example.com",
			"photos": [{"name": "places/abc123/photos/p1"}, {"name": "places/abc123/photos/p2"}],
			"types": ["bar", "establishment"],
			"accessibilityOptions": {"wheelchairAccessibleEntrance": true},
			"location": {"latitude": 19.07, "longitude": 72.88}
		}]}`))
	}))
	defer srv.Close()

	c := NewPlacesClientWithBase("real-key", srv.URL)
	venues, err := c.SearchVenues(context.Background(), "rooftop", 19.076, 72.8777, 3000, "restaurant", 5)
	require.NoError(t, err)
	require.Len(t, venues, 1)

	v := venues[0]
	assert.Equal(t, "Skyline Lounge", v.Name)
	assert.Equal(t, "1 High St, Mumbai", v.Address)
	require.NotNil(t, v.Rating)
	assert.Equal(t, 4.6, *v.Rating)
	require.NotNil(t, v.PriceLevel)
	assert.Equal(t, 3, *v.PriceLevel)
	require.NotNil(t, v.OpenNow)
	assert.True(t, *v.OpenNow)
	assert.Equal(t, "Bar", v.CuisineType)
	require.NotNil(t, v.WheelchairAccessible)
	assert.True(t, *v.WheelchairAccessible)
	assert.Contains(t, v.MapsURL, "query_place_id=abc123")
	assert.Len(t, v.Photos, 2)
}

func TestPlacesSparseRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"places": [{}]}`))
	}))
	defer srv.Close()

	venues, err := NewPlacesClientWithBase("real-key", srv.URL).SearchVenues(context.Background(), "q", 0, 0, 3000, "restaurant", 5)
	require.NoError(t, err)
	require.Len(t, venues, 1)

	v := venues[0]
	assert.Equal(t, "Unknown", v.Name)
	assert.Equal(t, "Address not available", v.Address)
	assert.Nil(t, v.Rating)
	assert.Nil(t, v.PriceLevel)
	assert.Empty(t, v.MapsURL)
}

func TestPlacesAPIErrorReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "quota exceeded"}`))
	}))
	defer srv.Close()

	venues, err := NewPlacesClientWithBase("real-key", srv.URL).SearchVenues(context.Background(), "q", 0, 0, 3000, "restaurant", 5)
	assert.NoError(t, err)
	assert.Empty(t, venues)
}

func TestPlacesPhotoCap(t *testing.T) {
	c := NewPlacesClient("real-key")
	place := placeRecord{}
	place.DisplayName.Text = "Photo Heavy"
	for _, name := range []string{"p1", "p2", "p3", "p4", "p5"} {
		place.Photos = append(place.Photos, struct {
			Name string `json:"name"`
		}{Name: name})
	}

	v := c.parsePlace(place)
	assert.Len(t, v.Photos, 3)
}
