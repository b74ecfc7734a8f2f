package dispatcher

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Houeta/promo-relay/internal/models"
	"github.com/Houeta/promo-relay/internal/repository"
	"github.com/Houeta/promo-relay/internal/scraper"
	"github.com/Houeta/promo-relay/internal/services/collector"
	"github.com/Houeta/promo-relay/internal/telegram"
	"golang.org/x/time/rate"
)

// Dispatcher owns the batch send loop shared by both trigger paths:
// draining the link queue and posting collected search offers.
type Dispatcher struct {
	log       *slog.Logger
	sender    telegram.Sender
	queue     repository.QueueRepository
	sent      repository.SentRepository
	source    collector.Interface
	titles    scraper.TitleResolver // optional, may be nil
	batchSize int
	limiter   *rate.Limiter
}

type Interface interface {
	// DispatchQueue drains up to one batch of pending links into the channel.
	DispatchQueue(ctx context.Context) (*models.QueueResult, error)
	// DispatchOffers posts up to one batch of fresh search offers.
	DispatchOffers(ctx context.Context) (*models.OfferResult, error)
}

// New creates a Dispatcher. The titles resolver may be nil, in which
// case queued links are posted without a title line. sendDelay is the
// fixed spacing between consecutive sends.
func New(
	log *slog.Logger,
	sender telegram.Sender,
	queue repository.QueueRepository,
	sent repository.SentRepository,
	source collector.Interface,
	titles scraper.TitleResolver,
	batchSize int,
	sendDelay time.Duration,
) *Dispatcher {
	return &Dispatcher{
		log:       log,
		sender:    sender,
		queue:     queue,
		sent:      sent,
		source:    source,
		titles:    titles,
		batchSize: batchSize,
		limiter:   rate.NewLimiter(rate.Every(sendDelay), 1),
	}
}

// DispatchQueue pops up to one batch from the front of the link queue,
// posts each link to the channel with the fixed inter-message delay and
// persists the remainder. A failed send is logged and the link is
// carried back into the remainder instead of being lost.
func (d *Dispatcher) DispatchQueue(ctx context.Context) (*models.QueueResult, error) {
	const opn = "dispatcher.DispatchQueue"
	log := d.log.With("op", opn)

	log.InfoContext(ctx, "Consuming link queue")

	queue, err := d.queue.LoadQueue(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load queue: %w", opn, err)
	}
	if len(queue) == 0 {
		log.InfoContext(ctx, "Queue is empty, nothing to send")
		return &models.QueueResult{Message: "Fila vazia."}, nil
	}

	batch := queue
	if len(batch) > d.batchSize {
		batch = queue[:d.batchSize]
	}
	remaining := queue[len(batch):]

	sent := 0
	var failed []string
	for idx, link := range batch {
		if err = d.limiter.Wait(ctx); err != nil {
			// Canceled mid-batch: everything not yet sent goes back.
			failed = append(failed, batch[idx:]...)
			break
		}

		if err = d.sender.SendToChannel(ctx, d.queueMessage(ctx, idx+1, link)); err != nil {
			log.ErrorContext(ctx, "Failed to send link", "link", link, "error", err)
			failed = append(failed, link)
			continue
		}

		log.InfoContext(ctx, "Link sent", "link", link)
		sent++
	}

	// Non-nil so the persisted queue is always a JSON array.
	rest := make([]string, 0, len(failed)+len(remaining))
	rest = append(rest, failed...)
	rest = append(rest, remaining...)
	if err = d.queue.SaveQueue(ctx, rest); err != nil {
		// Persistence is best-effort; the send already happened.
		log.ErrorContext(ctx, "Failed to persist remaining queue", "error", err)
	}

	log.InfoContext(ctx, "Queue run finished", "sent", sent, "remaining", len(rest))

	return &models.QueueResult{Sent: sent, Remaining: len(rest)}, nil
}

// DispatchOffers collects the current search offers, drops the ones
// already posted and sends up to one batch of the rest. Successfully
// sent ids are recorded so the next run skips them.
func (d *Dispatcher) DispatchOffers(ctx context.Context) (*models.OfferResult, error) {
	const opn = "dispatcher.DispatchOffers"
	log := d.log.With("op", opn)

	offers, err := d.source.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to collect offers: %w", opn, err)
	}

	sentIDs, err := d.sent.LoadSentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load sent ids: %w", opn, err)
	}

	fresh := offers[:0:0]
	for _, offer := range offers {
		if _, already := sentIDs[offer.ID]; !already {
			fresh = append(fresh, offer)
		}
	}
	if len(fresh) > d.batchSize {
		fresh = fresh[:d.batchSize]
	}

	var titles, sentNow []string
	for _, offer := range fresh {
		if err = d.limiter.Wait(ctx); err != nil {
			break
		}

		if err = d.sender.SendToChannel(ctx, offerMessage(offer)); err != nil {
			log.ErrorContext(ctx, "Failed to send offer", "id", offer.ID, "error", err)
			continue
		}

		log.InfoContext(ctx, "Offer sent", "id", offer.ID, "title", offer.Title)
		titles = append(titles, offer.Title)
		sentNow = append(sentNow, offer.ID)
	}

	if err = d.sent.MarkSent(ctx, sentNow); err != nil {
		log.ErrorContext(ctx, "Failed to persist sent ids", "error", err)
	}

	log.InfoContext(ctx, "Offer run finished", "sent", len(sentNow))

	return &models.OfferResult{Sent: len(sentNow), Titles: titles}, nil
}

// queueMessage formats one queued link for the channel, with a
// best-effort title line when a resolver is wired.
func (d *Dispatcher) queueMessage(ctx context.Context, position int, link string) string {
	if d.titles != nil {
		title, err := d.titles.ResolveTitle(ctx, link)
		if err != nil {
			d.log.DebugContext(ctx, "Title resolution failed", "link", link, "error", err)
		} else if title != "" {
			return fmt.Sprintf("🔥 Oferta #%d: %s\n%s", position, html.EscapeString(title), link)
		}
	}

	return fmt.Sprintf("🔥 Oferta #%d:\n%s", position, link)
}

// offerMessage formats one search offer as an HTML channel post.
func offerMessage(offer models.Offer) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔥 <b>%s</b>\n", html.EscapeString(offer.Title))
	if offer.Discount > 0 {
		fmt.Fprintf(&b, "💰 R$ %.2f (antes R$ %.2f) - %s%% OFF\n",
			offer.Price, offer.OriginalPrice, strconv.FormatFloat(offer.Discount, 'f', -1, 64))
	} else {
		fmt.Fprintf(&b, "💰 R$ %.2f\n", offer.Price)
	}
	b.WriteString(offer.Permalink)

	return b.String()
}
