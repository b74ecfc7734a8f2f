package affiliate_test

import (
	"testing"

	"github.com/Houeta/promo-relay/internal/affiliate"
	"github.com/stretchr/testify/assert"
)

func TestNormalizer_Normalize(t *testing.T) {
	norm := affiliate.New(affiliate.Config{
		AmazonTag:   "promo-20",
		ShopeeParam: "af_id",
		ShopeeValue: "promotech",
		MeliTag:     "promotech",
	})

	testCases := []struct {
		name     string
		link     string
		expected string
	}{
		{
			name:     "amazon link without query string",
			link:     "https://www.amazon.com.br/dp/B0ABC",
			expected: "https://www.amazon.com.br/dp/B0ABC?tag=promo-20",
		},
		{
			name:     "amazon link with existing query string",
			link:     "https://www.amazon.com.br/dp/B0ABC?th=1",
			expected: "https://www.amazon.com.br/dp/B0ABC?th=1&tag=promo-20",
		},
		{
			name:     "amazon short link",
			link:     "https://amzn.to/3xYzAbC",
			expected: "https://amzn.to/3xYzAbC?tag=promo-20",
		},
		{
			name:     "already tagged amazon link passes through",
			link:     "https://www.amazon.com.br/dp/B0ABC?tag=promo-20",
			expected: "https://www.amazon.com.br/dp/B0ABC?tag=promo-20",
		},
		{
			name:     "shopee link",
			link:     "https://shopee.com.br/item/123",
			expected: "https://shopee.com.br/item/123?af_id=promotech",
		},
		{
			name:     "shopee link with existing query string",
			link:     "https://shopee.com/item/123?sp_atk=x",
			expected: "https://shopee.com/item/123?sp_atk=x&af_id=promotech",
		},
		{
			name:     "mercado livre link gets aff_tag",
			link:     "https://www.mercadolivre.com.br/p/MLB123",
			expected: "https://www.mercadolivre.com.br/p/MLB123?aff_tag=promotech",
		},
		{
			name:     "unknown store passes through",
			link:     "https://example.com/deal",
			expected: "https://example.com/deal",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := norm.Normalize(tc.link)
			assert.Equal(t, tc.expected, got)

			// Re-normalizing an already tagged link must be a no-op.
			assert.Equal(t, got, norm.Normalize(got))
		})
	}
}

func TestNormalizer_Normalize_Unconfigured(t *testing.T) {
	norm := affiliate.New(affiliate.Config{})

	testCases := []string{
		"https://www.amazon.com.br/dp/B0ABC",
		"https://shopee.com.br/item/123",
		"https://www.mercadolivre.com.br/p/MLB123",
	}

	for _, link := range testCases {
		assert.Equal(t, link, norm.Normalize(link))
	}
}

func TestNormalizer_Normalize_PartialShopeeConfig(t *testing.T) {
	// Shopee tagging requires both the parameter name and its value.
	norm := affiliate.New(affiliate.Config{ShopeeParam: "af_id"})

	link := "https://shopee.com.br/item/123"
	assert.Equal(t, link, norm.Normalize(link))
}
