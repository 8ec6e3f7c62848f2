package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsplashSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "romantic restaurant dinner", r.URL.Query().Get("query"))
		assert.Equal(t, "3", r.URL.Query().Get("per_page"))
		assert.Equal(t, "landscape", r.URL.Query().Get("orientation"))
		assert.Equal(t, "Client-ID test-key", r.Header.Get("Authorization"))

		w.Write([]byte(`{"results": [
			{"urls": {"regular": "https://img/1"}, "user": {"name": "Priya"}, "description": "candlelight dinner"},
			{"urls": {"regular": "https://img/2"}, "user": {"name": ""}, "description": "", "alt_description": "rooftop table"},
			{"urls": {"regular": ""}, "user": {"name": "Skipped"}}
		]}`))
	}))
	defer srv.Close()

	c := NewUnsplashClientWithBase("test-key", srv.URL)
	images, err := c.SearchImages(context.Background(), "romantic restaurant dinner", 3)
	require.NoError(t, err)
	require.Len(t, images, 2)

	assert.Equal(t, "https://img/1", images[0].URL)
	assert.Equal(t, "Priya", images[0].Photographer)
	assert.Equal(t, "candlelight dinner", images[0].Description)

	// Missing fields fall back; entries without a URL are dropped.
	assert.Equal(t, "Unknown", images[1].Photographer)
	assert.Equal(t, "rooftop table", images[1].Description)
}

func TestUnsplashMissingKey(t *testing.T) {
	images, err := NewUnsplashClient("").SearchImages(context.Background(), "q", 3)
	assert.NoError(t, err)
	assert.Nil(t, images)
}

func TestUnsplashAPIErrorReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	images, err := NewUnsplashClientWithBase("k", srv.URL).SearchImages(context.Background(), "q", 3)
	assert.NoError(t, err)
	assert.Empty(t, images)
}
