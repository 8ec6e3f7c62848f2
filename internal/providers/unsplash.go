package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/rahul/rendezvous/internal/schema"
)

const unsplashBaseURL = "https://api.unsplash.com"

// UnsplashClient searches Unsplash for inspiration photos.
type UnsplashClient struct {
	accessKey string
	baseURL   string
	client    *http.Client
}

func NewUnsplashClient(accessKey string) *UnsplashClient {
	return &UnsplashClient{
		accessKey: accessKey,
		baseURL:   unsplashBaseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewUnsplashClientWithBase is used by tests to point at a local server.
func NewUnsplashClientWithBase(accessKey, baseURL string) *UnsplashClient {
	c := NewUnsplashClient(accessKey)
	c.baseURL = baseURL
	return c
}

type unsplashSearchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
		Description    string `json:"description"`
		AltDescription string `json:"alt_description"`
	} `json:"results"`
}

// SearchImages returns up to count landscape photos for the query. Errors
// are logged and reported as an empty list; images are nice to have, never
// load bearing.
func (c *UnsplashClient) SearchImages(ctx context.Context, query string, count int) ([]schema.Image, error) {
	log.Printf("[UnsplashClient] Searching images: query=%q, count=%d", query, count)

	if c.accessKey == "" {
		log.Printf("[UnsplashClient] Access key not configured, skipping image search")
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprintf("%d", count))
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[UnsplashClient] Error searching images: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[UnsplashClient] Search returned status %d", resp.StatusCode)
		return nil, nil
	}

	var data unsplashSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Printf("[UnsplashClient] Error decoding images: %v", err)
		return nil, nil
	}

	var images []schema.Image
	for _, result := range data.Results {
		if result.URLs.Regular == "" {
			continue
		}
		photographer := result.User.Name
		if photographer == "" {
			photographer = "Unknown"
		}
		description := result.Description
		if description == "" {
			description = result.AltDescription
		}
		images = append(images, schema.Image{
			URL:          result.URLs.Regular,
			Photographer: photographer,
			Description:  description,
		})
	}

	log.Printf("[UnsplashClient] Found %d images", len(images))
	return images, nil
}
