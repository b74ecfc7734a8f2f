package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// TitleResolver looks up a human-readable product title for a link.
type TitleResolver interface {
	ResolveTitle(ctx context.Context, link string) (string, error)
}

// Scraper fetches a product page and extracts its title. It is a
// best-effort enrichment for queued links; callers fall back to the raw
// URL when resolution fails.
type Scraper struct {
	log    *slog.Logger
	client *http.Client
}

// NewScraper creates a Scraper with the given per-request timeout.
func NewScraper(log *slog.Logger, timeout time.Duration) *Scraper {
	return &Scraper{log: log, client: &http.Client{Timeout: timeout}}
}

// titleSelectors are tried in order. The first two cover Mercado Livre
// and Amazon product pages, the rest are generic fallbacks.
var titleSelectors = []string{
	"h1.ui-pdp-title",
	"#productTitle",
	"h1[data-testid='title']",
	"h1",
}

// ResolveTitle downloads the page behind the link and returns the
// product title, or an empty string when none could be found.
func (s *Scraper) ResolveTitle(ctx context.Context, link string) (string, error) {
	const opn = "scraper.ResolveTitle"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cleanURL(link), nil)
	if err != nil {
		return "", fmt.Errorf("%s: failed to create request: %w", opn, err)
	}

	// Store fronts refuse default Go client headers.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7")

	res, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: failed to request %s: %w", opn, link, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: status code error: [%d] %s", opn, res.StatusCode, res.Status)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", fmt.Errorf("%s: data cannot be parsed as HTML: %w", opn, err)
	}

	title := extractTitle(doc)
	s.log.DebugContext(ctx, "Resolved product title", "link", link, "title", title)

	return title, nil
}

func extractTitle(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		if title := strings.TrimSpace(doc.Find(selector).First().Text()); title != "" {
			return title
		}
	}

	if title, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		return strings.TrimSpace(title)
	}

	return strings.TrimSpace(doc.Find("title").First().Text())
}

// cleanURL drops the fragment, which store pages use for UI state only.
func cleanURL(link string) string {
	if idx := strings.Index(link, "#"); idx >= 0 {
		return link[:idx]
	}

	return link
}
