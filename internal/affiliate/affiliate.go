package affiliate

import "strings"

// Config holds the per-store affiliate identifiers. Empty values disable
// tagging for the corresponding store.
type Config struct {
	AmazonTag   string
	ShopeeParam string
	ShopeeValue string
	MeliTag     string
}

// Normalizer appends affiliate query parameters to outbound store links.
type Normalizer struct {
	cfg Config
}

// New creates a Normalizer from the given affiliate configuration.
func New(cfg Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Normalize tags a single trimmed URL for its store. Links from unknown
// stores and links that already carry the parameter pass through
// unchanged, which makes the operation idempotent.
func (n *Normalizer) Normalize(link string) string {
	switch {
	case containsAny(link, "amazon.com.br", "amzn.to"):
		if n.cfg.AmazonTag != "" && !strings.Contains(link, "tag=") {
			return appendParam(link, "tag="+n.cfg.AmazonTag)
		}
	case containsAny(link, "shopee.com.br", "shopee.com"):
		if n.cfg.ShopeeParam != "" && n.cfg.ShopeeValue != "" &&
			!strings.Contains(link, n.cfg.ShopeeParam+"=") {
			return appendParam(link, n.cfg.ShopeeParam+"="+n.cfg.ShopeeValue)
		}
	case containsAny(link, "mercadolivre.com", "mercadolibre.com"):
		if n.cfg.MeliTag != "" && !strings.Contains(link, "aff_tag=") {
			return appendParam(link, "aff_tag="+n.cfg.MeliTag)
		}
	}

	return link
}

// appendParam follows the raw-string separator rule: "&" when the link
// already has a query string, "?" otherwise. The link is deliberately
// not re-parsed, so existing parameters keep their exact byte form.
func appendParam(link, param string) string {
	if strings.Contains(link, "?") {
		return link + "&" + param
	}

	return link + "?" + param
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
