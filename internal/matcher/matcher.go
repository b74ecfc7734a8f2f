package matcher

import (
	"regexp"
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// allowedStores are matched by substring containment, not exact host.
// The permissive policy favors recall: shortened and redirected store
// links still carry the store domain somewhere in the URL.
var allowedStores = []string{
	"mercadolivre.com",
	"mercadolibre.com",
	"amazon.com.br",
	"amzn.to",
	"shopee.com.br",
	"shopee.com",
}

// trailingPunct holds the characters a pasted URL commonly drags along
// from the surrounding sentence.
const trailingPunct = " ,;)"

// Extract returns every store link found in free-form message text, in
// order of appearance. Duplicates are kept; the queue dedups on insert.
func Extract(text string) []string {
	if text == "" {
		return nil
	}

	var links []string
	for _, raw := range urlPattern.FindAllString(text, -1) {
		clean := strings.Trim(raw, trailingPunct)
		if clean == "" {
			continue
		}
		if fromAllowedStore(clean) {
			links = append(links, clean)
		}
	}

	return links
}

// FromEntities returns the link URLs carried by rich-text message
// entities. Entity links are accepted without the store filter: the
// sender attached them as explicit links.
func FromEntities(text string, entities []tgbotapi.MessageEntity) []string {
	var links []string
	for _, entity := range entities {
		switch entity.Type {
		case "text_link":
			if entity.URL != "" {
				links = append(links, entity.URL)
			}
		case "url":
			if link := sliceUTF16(text, entity.Offset, entity.Length); link != "" {
				links = append(links, strings.Trim(link, trailingPunct))
			}
		}
	}

	return links
}

func fromAllowedStore(link string) bool {
	for _, store := range allowedStores {
		if strings.Contains(link, store) {
			return true
		}
	}

	return false
}

// sliceUTF16 cuts the substring addressed by a Telegram entity, whose
// offset and length count UTF-16 code units rather than bytes or runes.
func sliceUTF16(s string, offset, length int) string {
	units := utf16.Encode([]rune(s))
	if offset < 0 || length <= 0 || offset >= len(units) {
		return ""
	}

	end := offset + length
	if end > len(units) {
		end = len(units)
	}

	return string(utf16.Decode(units[offset:end]))
}
