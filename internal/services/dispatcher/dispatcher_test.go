package dispatcher_test

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Houeta/promo-relay/internal/models"
	"github.com/Houeta/promo-relay/internal/services/dispatcher"
	"github.com/Houeta/promo-relay/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type deps struct {
	sender *mocks.Sender
	queue  *mocks.QueueRepository
	sent   *mocks.SentRepository
	source *mocks.OfferCollector
}

func newDispatcher(t *testing.T, batchSize int) (*dispatcher.Dispatcher, *deps) {
	t.Helper()

	d := &deps{
		sender: new(mocks.Sender),
		queue:  new(mocks.QueueRepository),
		sent:   new(mocks.SentRepository),
		source: new(mocks.OfferCollector),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// A millisecond delay keeps the fixed-rate throttle out of the
	// test's critical path.
	return dispatcher.New(logger, d.sender, d.queue, d.sent, d.source, nil, batchSize, time.Millisecond), d
}

func containing(sub string) interface{} {
	return mock.MatchedBy(func(text string) bool { return strings.Contains(text, sub) })
}

func TestDispatcher_DispatchQueue(t *testing.T) {
	ctx := t.Context()

	t.Run("empty queue sends nothing and skips persistence", func(t *testing.T) {
		disp, d := newDispatcher(t, 10)
		d.queue.On("LoadQueue", ctx).Return(nil, nil).Once()

		result, err := disp.DispatchQueue(ctx)
		require.NoError(t, err)

		assert.Equal(t, 0, result.Sent)
		assert.Equal(t, "Fila vazia.", result.Message)
		d.queue.AssertNotCalled(t, "SaveQueue", mock.Anything, mock.Anything)
		d.sender.AssertNotCalled(t, "SendToChannel", mock.Anything, mock.Anything)
	})

	t.Run("sends min(N, B) and persists the remainder", func(t *testing.T) {
		disp, d := newDispatcher(t, 2)
		d.queue.On("LoadQueue", ctx).Return([]string{"https://a", "https://b", "https://c"}, nil).Once()
		d.sender.On("SendToChannel", ctx, containing("https://a")).Return(nil).Once()
		d.sender.On("SendToChannel", ctx, containing("https://b")).Return(nil).Once()
		d.queue.On("SaveQueue", ctx, []string{"https://c"}).Return(nil).Once()

		result, err := disp.DispatchQueue(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Sent)
		assert.Equal(t, 1, result.Remaining)
		d.sender.AssertExpectations(t)
		d.queue.AssertExpectations(t)
	})

	t.Run("queue smaller than batch drains completely", func(t *testing.T) {
		disp, d := newDispatcher(t, 10)
		d.queue.On("LoadQueue", ctx).Return([]string{"https://a"}, nil).Once()
		d.sender.On("SendToChannel", ctx, containing("https://a")).Return(nil).Once()
		d.queue.On("SaveQueue", ctx, []string{}).Return(nil).Once()

		result, err := disp.DispatchQueue(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Sent)
		assert.Equal(t, 0, result.Remaining)
	})

	t.Run("failed send is carried back into the remainder", func(t *testing.T) {
		disp, d := newDispatcher(t, 10)
		d.queue.On("LoadQueue", ctx).Return([]string{"https://a", "https://b"}, nil).Once()
		d.sender.On("SendToChannel", ctx, containing("https://a")).Return(errors.New("telegram: 429")).Once()
		d.sender.On("SendToChannel", ctx, containing("https://b")).Return(nil).Once()
		d.queue.On("SaveQueue", ctx, []string{"https://a"}).Return(nil).Once()

		result, err := disp.DispatchQueue(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Sent)
		assert.Equal(t, 1, result.Remaining)
		d.queue.AssertExpectations(t)
	})

	t.Run("messages are numbered from one", func(t *testing.T) {
		disp, d := newDispatcher(t, 10)
		d.queue.On("LoadQueue", ctx).Return([]string{"https://a", "https://b"}, nil).Once()
		d.sender.On("SendToChannel", ctx, containing("Oferta #1")).Return(nil).Once()
		d.sender.On("SendToChannel", ctx, containing("Oferta #2")).Return(nil).Once()
		d.queue.On("SaveQueue", ctx, []string{}).Return(nil).Once()

		_, err := disp.DispatchQueue(ctx)
		require.NoError(t, err)
		d.sender.AssertExpectations(t)
	})

	t.Run("load failure surfaces as an error", func(t *testing.T) {
		disp, d := newDispatcher(t, 10)
		d.queue.On("LoadQueue", ctx).Return(nil, assert.AnError).Once()

		_, err := disp.DispatchQueue(ctx)
		require.Error(t, err)
	})
}

func TestDispatcher_DispatchQueue_WithTitles(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sender := new(mocks.Sender)
	queue := new(mocks.QueueRepository)
	titles := new(mocks.TitleResolver)

	disp := dispatcher.New(logger, sender, queue, new(mocks.SentRepository), new(mocks.OfferCollector),
		titles, 10, time.Millisecond)

	queue.On("LoadQueue", ctx).Return([]string{"https://a", "https://b"}, nil).Once()
	titles.On("ResolveTitle", ctx, "https://a").Return("Echo Dot 5", nil).Once()
	titles.On("ResolveTitle", ctx, "https://b").Return("", assert.AnError).Once()
	sender.On("SendToChannel", ctx, containing("Echo Dot 5")).Return(nil).Once()
	// Title failure falls back to the bare link message.
	sender.On("SendToChannel", ctx, "🔥 Oferta #2:\nhttps://b").Return(nil).Once()
	queue.On("SaveQueue", ctx, []string{}).Return(nil).Once()

	result, err := disp.DispatchQueue(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Sent)
	sender.AssertExpectations(t)
	titles.AssertExpectations(t)
}

func TestDispatcher_DispatchOffers(t *testing.T) {
	ctx := t.Context()

	offerA := models.Offer{ID: "MLB1", Title: "Echo Dot", Price: 80, OriginalPrice: 100, Discount: 20,
		Permalink: "https://www.mercadolivre.com.br/p/MLB1"}
	offerB := models.Offer{ID: "MLB2", Title: "SSD 1TB", Price: 170, OriginalPrice: 200, Discount: 15,
		Permalink: "https://www.mercadolivre.com.br/p/MLB2"}

	t.Run("sends fresh offers and marks them sent", func(t *testing.T) {
		disp, d := newDispatcher(t, 10)
		d.source.On("Collect", ctx).Return([]models.Offer{offerA, offerB}, nil).Once()
		d.sent.On("LoadSentIDs", ctx).Return(map[string]struct{}{}, nil).Once()
		d.sender.On("SendToChannel", ctx, containing("Echo Dot")).Return(nil).Once()
		d.sender.On("SendToChannel", ctx, containing("SSD 1TB")).Return(nil).Once()
		d.sent.On("MarkSent", ctx, []string{"MLB1", "MLB2"}).Return(nil).Once()

		result, err := disp.DispatchOffers(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Sent)
		assert.Equal(t, []string{"Echo Dot", "SSD 1TB"}, result.Titles)
		d.sent.AssertExpectations(t)
	})

	t.Run("already sent ids are skipped", func(t *testing.T) {
		disp, d := newDispatcher(t, 10)
		d.source.On("Collect", ctx).Return([]models.Offer{offerA, offerB}, nil).Once()
		d.sent.On("LoadSentIDs", ctx).Return(map[string]struct{}{"MLB1": {}}, nil).Once()
		d.sender.On("SendToChannel", ctx, containing("SSD 1TB")).Return(nil).Once()
		d.sent.On("MarkSent", ctx, []string{"MLB2"}).Return(nil).Once()

		result, err := disp.DispatchOffers(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Sent)
		d.sender.AssertNotCalled(t, "SendToChannel", ctx, containing("Echo Dot"))
	})

	t.Run("batch size bounds the run", func(t *testing.T) {
		disp, d := newDispatcher(t, 1)
		d.source.On("Collect", ctx).Return([]models.Offer{offerA, offerB}, nil).Once()
		d.sent.On("LoadSentIDs", ctx).Return(map[string]struct{}{}, nil).Once()
		d.sender.On("SendToChannel", ctx, containing("Echo Dot")).Return(nil).Once()
		d.sent.On("MarkSent", ctx, []string{"MLB1"}).Return(nil).Once()

		result, err := disp.DispatchOffers(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Sent)
	})

	t.Run("failed send is not marked sent", func(t *testing.T) {
		disp, d := newDispatcher(t, 10)
		d.source.On("Collect", ctx).Return([]models.Offer{offerA, offerB}, nil).Once()
		d.sent.On("LoadSentIDs", ctx).Return(map[string]struct{}{}, nil).Once()
		d.sender.On("SendToChannel", ctx, containing("Echo Dot")).Return(errors.New("telegram: 400")).Once()
		d.sender.On("SendToChannel", ctx, containing("SSD 1TB")).Return(nil).Once()
		d.sent.On("MarkSent", ctx, []string{"MLB2"}).Return(nil).Once()

		result, err := disp.DispatchOffers(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Sent)
		d.sent.AssertExpectations(t)
	})

	t.Run("collect failure surfaces as an error", func(t *testing.T) {
		disp, d := newDispatcher(t, 10)
		d.source.On("Collect", ctx).Return(nil, assert.AnError).Once()

		_, err := disp.DispatchOffers(ctx)
		require.Error(t, err)
	})

	t.Run("offer message carries price and discount", func(t *testing.T) {
		disp, d := newDispatcher(t, 10)
		d.source.On("Collect", ctx).Return([]models.Offer{offerA}, nil).Once()
		d.sent.On("LoadSentIDs", ctx).Return(map[string]struct{}{}, nil).Once()
		d.sender.On("SendToChannel", ctx, mock.MatchedBy(func(text string) bool {
			return strings.Contains(text, "<b>Echo Dot</b>") &&
				strings.Contains(text, "R$ 80.00") &&
				strings.Contains(text, "20% OFF") &&
				strings.Contains(text, offerA.Permalink)
		})).Return(nil).Once()
		d.sent.On("MarkSent", ctx, []string{"MLB1"}).Return(nil).Once()

		_, err := disp.DispatchOffers(ctx)
		require.NoError(t, err)
		d.sender.AssertExpectations(t)
	})
}
