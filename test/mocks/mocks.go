// Package mocks provides hand-rolled testify mocks for the service
// boundaries used across the test suites.
package mocks

import (
	"context"

	"github.com/Houeta/promo-relay/internal/models"
	"github.com/stretchr/testify/mock"
)

// Sender mocks telegram.Sender.
type Sender struct {
	mock.Mock
}

func (m *Sender) SendToChannel(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

func (m *Sender) Send(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

// QueueRepository mocks repository.QueueRepository.
type QueueRepository struct {
	mock.Mock
}

func (m *QueueRepository) LoadQueue(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var links []string
	if v := args.Get(0); v != nil {
		links = v.([]string)
	}
	return links, args.Error(1)
}

func (m *QueueRepository) SaveQueue(ctx context.Context, links []string) error {
	args := m.Called(ctx, links)
	return args.Error(0)
}

func (m *QueueRepository) Enqueue(ctx context.Context, links []string) (int, error) {
	args := m.Called(ctx, links)
	return args.Int(0), args.Error(1)
}

// SentRepository mocks repository.SentRepository.
type SentRepository struct {
	mock.Mock
}

func (m *SentRepository) LoadSentIDs(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	var ids map[string]struct{}
	if v := args.Get(0); v != nil {
		ids = v.(map[string]struct{})
	}
	return ids, args.Error(1)
}

func (m *SentRepository) MarkSent(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// SearchClient mocks collector.SearchClient.
type SearchClient struct {
	mock.Mock
}

func (m *SearchClient) Search(ctx context.Context, keyword string) ([]models.Offer, error) {
	args := m.Called(ctx, keyword)
	var offers []models.Offer
	if v := args.Get(0); v != nil {
		offers = v.([]models.Offer)
	}
	return offers, args.Error(1)
}

// OfferCollector mocks collector.Interface.
type OfferCollector struct {
	mock.Mock
}

func (m *OfferCollector) Collect(ctx context.Context) ([]models.Offer, error) {
	args := m.Called(ctx)
	var offers []models.Offer
	if v := args.Get(0); v != nil {
		offers = v.([]models.Offer)
	}
	return offers, args.Error(1)
}

// TitleResolver mocks scraper.TitleResolver.
type TitleResolver struct {
	mock.Mock
}

func (m *TitleResolver) ResolveTitle(ctx context.Context, link string) (string, error) {
	args := m.Called(ctx, link)
	return args.String(0), args.Error(1)
}

// Dispatcher mocks dispatcher.Interface.
type Dispatcher struct {
	mock.Mock
}

func (m *Dispatcher) DispatchQueue(ctx context.Context) (*models.QueueResult, error) {
	args := m.Called(ctx)
	var result *models.QueueResult
	if v := args.Get(0); v != nil {
		result = v.(*models.QueueResult)
	}
	return result, args.Error(1)
}

func (m *Dispatcher) DispatchOffers(ctx context.Context) (*models.OfferResult, error) {
	args := m.Called(ctx)
	var result *models.OfferResult
	if v := args.Get(0); v != nil {
		result = v.(*models.OfferResult)
	}
	return result, args.Error(1)
}
