package openfoodfacts

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public Open Food Facts API host.
const DefaultBaseURL = "https://world.openfoodfacts.org"

// ProductData is the catalog data returned by a UPC lookup.
type ProductData struct {
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
}

// Client calls the Open Food Facts product API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client. An empty baseURL falls back to the public API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type productResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName string `json:"product_name"`
		Brands      string `json:"brands"`
		Categories  string `json:"categories"`
	} `json:"product"`
}

// FetchProductData looks up a UPC. Transport failures, non-200 responses and
// unknown products all return an error; callers treat every failure uniformly
// as "enrichment unavailable".
func (c *Client) FetchProductData(upc string) (*ProductData, error) {
	u := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(upc))

	resp, err := c.client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("failed to call Open Food Facts: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Open Food Facts response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open Food Facts API error %d: %s", resp.StatusCode, string(body))
	}

	var pr productResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("failed to parse Open Food Facts JSON: %w", err)
	}
	if pr.Status != 1 {
		return nil, fmt.Errorf("no product found for UPC %s", upc)
	}

	return &ProductData{
		Name:     pr.Product.ProductName,
		Brand:    pr.Product.Brands,
		Category: pr.Product.Categories,
	}, nil
}
