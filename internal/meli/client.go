package meli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Houeta/promo-relay/internal/models"
)

const (
	defaultBaseURL = "https://api.mercadolibre.com"

	// searchLimit is the fixed page size of one keyword query.
	searchLimit = 50
)

// Client queries the Mercado Livre public search API for one site
// (MLB for Brazil).
type Client struct {
	log     *slog.Logger
	client  *http.Client
	baseURL string
	siteID  string
}

// NewClient creates a search client with the given per-request timeout.
func NewClient(log *slog.Logger, siteID string, timeout time.Duration) *Client {
	return &Client{
		log:     log,
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultBaseURL,
		siteID:  siteID,
	}
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price"`
	SoldQuantity  int     `json:"sold_quantity"`
	Permalink     string  `json:"permalink"`
	Thumbnail     string  `json:"thumbnail"`
}

// Search runs one new-condition search for the keyword and returns the
// raw offers. Discount computation and ranking belong to the collector.
func (c *Client) Search(ctx context.Context, keyword string) ([]models.Offer, error) {
	const opn = "meli.Search"

	query := url.Values{}
	query.Set("q", keyword)
	query.Set("condition", "new")
	query.Set("limit", strconv.Itoa(searchLimit))

	reqURL := fmt.Sprintf("%s/sites/%s/search?%s", c.baseURL, c.siteID, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", opn, err)
	}
	req.Header.Add("User-Agent", "Mozilla/5.0 (compatible; GoHttpClient/1.0)")

	c.log.DebugContext(ctx, "Send request", "method", req.Method, "URL", req.URL)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to request %s: %w", opn, reqURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status code error: [%d] %s", opn, res.StatusCode, res.Status)
	}

	var parsed searchResponse
	if err = json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s: failed to decode search response: %w", opn, err)
	}

	offers := make([]models.Offer, 0, len(parsed.Results))
	for _, result := range parsed.Results {
		offers = append(offers, models.Offer{
			ID:            result.ID,
			Title:         result.Title,
			Price:         result.Price,
			OriginalPrice: result.OriginalPrice,
			SoldQuantity:  result.SoldQuantity,
			Permalink:     result.Permalink,
			Thumbnail:     result.Thumbnail,
		})
	}

	c.log.DebugContext(ctx, "Search finished", "keyword", keyword, "results", len(offers))

	return offers, nil
}
