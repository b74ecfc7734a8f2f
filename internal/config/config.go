package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrEmptyToken = errors.New("error getting PR_TELEGRAM_TOKEN: variable not specified or contains an empty string")

// defaultKeywords are the stock Brazilian electronics search terms used
// when PR_KEYWORDS is not set.
var defaultKeywords = []string{
	"smartphone",
	"notebook",
	"fone de ouvido bluetooth",
	"smart tv",
	"ssd",
	"placa de vídeo",
	"monitor gamer",
	"cadeira gamer",
	"echo dot",
}

type Config struct {
	Env string // Env is the current environment: local, development, production.
	// ClientTimeout bounds every outbound HTTP call (Telegram,
	// marketplace API, page scraping).
	ClientTimeout time.Duration
	Tg            Telegram
	HTTP          HTTP
	Store         Store
	Affiliate     Affiliate
	Search        Search
	Dispatch      Dispatch
}

type Telegram struct {
	Token         string // Token is the unique telegram bot token.
	Channel       string // Channel is the relay destination: numeric id or @username.
	WebhookSecret string // WebhookSecret guards the webhook path segment.
	AllowedUserID int64  // AllowedUserID restricts the webhook to one sender; 0 allows everyone.
}

type HTTP struct {
	Addr string // Addr is the listen address of the HTTP surface.
}

type Store struct {
	QueuePath   string // QueuePath is the flat JSON file holding the link queue.
	SentIDsPath string // SentIDsPath is the flat JSON file holding dispatched offer ids.
}

type Affiliate struct {
	AmazonTag   string
	ShopeeParam string
	ShopeeValue string
	MeliTag     string
}

type Search struct {
	SiteID      string   // SiteID is the marketplace site, MLB for Brazil.
	Keywords    []string // Keywords are the search terms of one collection run.
	MinDiscount float64  // MinDiscount is the percent threshold an offer must reach.
}

type Dispatch struct {
	BatchSize int           // BatchSize caps the items sent per run.
	SendDelay time.Duration // SendDelay is the fixed spacing between sends.
	Cron      string        // Cron optionally schedules queue dispatch runs.
}

// MustLoad loads the configuration from environment variables and returns a Config struct.
func MustLoad() *Config {
	// Automatically binds environment variables to config keys
	viper.SetEnvPrefix("PR")
	viper.AutomaticEnv()

	// optional args
	viper.SetDefault("ENV", "production")
	viper.SetDefault("CLIENT_TIMEOUT", "15s")
	viper.SetDefault("CHANNEL_ID", "@PromoTechBrasil")
	viper.SetDefault("WEBHOOK_SECRET", "changeme")
	viper.SetDefault("HTTP_ADDR", ":8000")
	viper.SetDefault("QUEUE_PATH", "links_queue.json")
	viper.SetDefault("SENT_IDS_PATH", "sent_ids.json")
	viper.SetDefault("MELI_SITE", "MLB")
	viper.SetDefault("KEYWORDS", strings.Join(defaultKeywords, ","))
	viper.SetDefault("MIN_DISCOUNT", 15.0)
	viper.SetDefault("BATCH_SIZE", 10)
	viper.SetDefault("SEND_DELAY", "2s")

	if viper.GetString("TELEGRAM_TOKEN") == "" {
		panic(ErrEmptyToken)
	}

	return &Config{
		Env:           viper.GetString("ENV"),
		ClientTimeout: viper.GetDuration("CLIENT_TIMEOUT"),
		Tg: Telegram{
			Token:         viper.GetString("TELEGRAM_TOKEN"),
			Channel:       viper.GetString("CHANNEL_ID"),
			WebhookSecret: viper.GetString("WEBHOOK_SECRET"),
			AllowedUserID: viper.GetInt64("ALLOWED_USER_ID"),
		},
		HTTP: HTTP{
			Addr: viper.GetString("HTTP_ADDR"),
		},
		Store: Store{
			QueuePath:   viper.GetString("QUEUE_PATH"),
			SentIDsPath: viper.GetString("SENT_IDS_PATH"),
		},
		Affiliate: Affiliate{
			AmazonTag:   viper.GetString("AMAZON_TAG"),
			ShopeeParam: viper.GetString("SHOPEE_PARAM"),
			ShopeeValue: viper.GetString("SHOPEE_VALUE"),
			MeliTag:     viper.GetString("MELI_TAG"),
		},
		Search: Search{
			SiteID:      viper.GetString("MELI_SITE"),
			Keywords:    splitKeywords(viper.GetString("KEYWORDS")),
			MinDiscount: viper.GetFloat64("MIN_DISCOUNT"),
		},
		Dispatch: Dispatch{
			BatchSize: viper.GetInt("BATCH_SIZE"),
			SendDelay: viper.GetDuration("SEND_DELAY"),
			Cron:      viper.GetString("DISPATCH_CRON"),
		},
	}
}

// splitKeywords parses the comma-separated keyword list, dropping empty
// entries.
func splitKeywords(raw string) []string {
	var keywords []string
	for _, keyword := range strings.Split(raw, ",") {
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			keywords = append(keywords, keyword)
		}
	}

	return keywords
}
