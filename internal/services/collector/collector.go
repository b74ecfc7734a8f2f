package collector

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/Houeta/promo-relay/internal/affiliate"
	"github.com/Houeta/promo-relay/internal/models"
)

// SearchClient is the marketplace query boundary.
type SearchClient interface {
	Search(ctx context.Context, keyword string) ([]models.Offer, error)
}

// Collector gathers discounted offers across the configured keywords.
type Collector struct {
	log         *slog.Logger
	client      SearchClient
	norm        *affiliate.Normalizer
	keywords    []string
	minDiscount float64
}

type Interface interface {
	// Collect runs every keyword search and returns the deduplicated,
	// filtered and ranked offer list.
	Collect(ctx context.Context) ([]models.Offer, error)
}

// New creates a Collector over the given search client.
func New(
	log *slog.Logger,
	client SearchClient,
	norm *affiliate.Normalizer,
	keywords []string,
	minDiscount float64,
) *Collector {
	return &Collector{log: log, client: client, norm: norm, keywords: keywords, minDiscount: minDiscount}
}

// Collect runs every keyword search and merges the results. A failed
// keyword is logged and skipped; the run continues with the remaining
// keywords. The first occurrence of an item id wins. Offers below the
// minimum discount are dropped and the rest are ranked by discount,
// then sold quantity, both descending.
func (c *Collector) Collect(ctx context.Context) ([]models.Offer, error) {
	const opn = "collector.Collect"
	log := c.log.With("op", opn)

	byID := make(map[string]models.Offer)
	var order []string

	for _, keyword := range c.keywords {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: collection canceled: %w", opn, err)
		}

		results, err := c.client.Search(ctx, keyword)
		if err != nil {
			log.WarnContext(ctx, "Keyword search failed, skipping", "keyword", keyword, "error", err)
			continue
		}

		for _, offer := range results {
			if _, seen := byID[offer.ID]; seen {
				continue
			}
			offer.Discount = DiscountPercent(offer.Price, offer.OriginalPrice)
			offer.Permalink = c.norm.Normalize(offer.Permalink)
			byID[offer.ID] = offer
			order = append(order, offer.ID)
		}
	}

	offers := make([]models.Offer, 0, len(order))
	for _, id := range order {
		if offer := byID[id]; offer.Discount >= c.minDiscount {
			offers = append(offers, offer)
		}
	}

	sort.SliceStable(offers, func(i, j int) bool {
		if offers[i].Discount != offers[j].Discount {
			return offers[i].Discount > offers[j].Discount
		}
		return offers[i].SoldQuantity > offers[j].SoldQuantity
	})

	log.InfoContext(ctx, "Collection complete", "keywords", len(c.keywords), "offers", len(offers))

	return offers, nil
}

// DiscountPercent computes the discount of price against originalPrice
// as a percentage rounded to two decimals. Items with no original price
// or no actual markdown yield zero.
func DiscountPercent(price, originalPrice float64) float64 {
	if originalPrice <= 0 || originalPrice <= price {
		return 0
	}

	const hundredths = 100.0

	return math.Round((originalPrice-price)/originalPrice*100*hundredths) / hundredths
}
