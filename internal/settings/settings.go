package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/venuecast/venuecast-backend/pkg/redis"
)

// PricePackage is a preset patrons can pick instead of the base price:
// pay more, stay on screen longer.
type PricePackage struct {
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	DisplaySeconds int             `json:"displaySeconds"`
}

// DisplaySettings configures every connected display surface. Stored as one
// JSON document; updates are broadcast so screens re-fetch promptly instead
// of waiting out the poll interval. SystemOn is the master switch: displays
// go dark and submission forms close while it is off.
type DisplaySettings struct {
	SystemOn            bool            `json:"systemOn"`
	EnableImages        bool            `json:"enableImages"`
	EnableText          bool            `json:"enableText"`
	BasePrice           decimal.Decimal `json:"basePrice"`
	BaseDisplaySeconds  int             `json:"baseDisplaySeconds"`
	Packages            []PricePackage  `json:"packages"`
	PollIntervalSeconds int             `json:"pollIntervalSeconds"`
	MarqueeText         string          `json:"marqueeText"`
	ShowRankings        bool            `json:"showRankings"`
	UpdatedAtMS         int64           `json:"updatedAtMs"`
}

// Defaults returns the settings a fresh venue starts with.
func Defaults() DisplaySettings {
	return DisplaySettings{
		SystemOn:            true,
		EnableImages:        true,
		EnableText:          true,
		BaseDisplaySeconds:  10,
		PollIntervalSeconds: 5,
		ShowRankings:        true,
	}
}

// Store persists the settings document.
type Store interface {
	// Load returns the saved settings or nil when none exist.
	Load(ctx context.Context) (*DisplaySettings, error)
	Save(ctx context.Context, settings DisplaySettings) error
}

// RedisStore keeps the document as a JSON blob under a fixed key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a store over the shared redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context) (*DisplaySettings, error) {
	raw, err := s.client.Get(ctx, s.client.DisplaySettingsKey())
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading display settings: %w", err)
	}
	var settings DisplaySettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("decoding display settings: %w", err)
	}
	return &settings, nil
}

func (s *RedisStore) Save(ctx context.Context, settings DisplaySettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding display settings: %w", err)
	}
	if err := s.client.Set(ctx, s.client.DisplaySettingsKey(), raw, 0); err != nil {
		return fmt.Errorf("saving display settings: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store for tests.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*DisplaySettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raw == nil {
		return nil, nil
	}
	var settings DisplaySettings
	if err := json.Unmarshal(s.raw, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *MemoryStore) Save(ctx context.Context, settings DisplaySettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.raw = raw
	s.mu.Unlock()
	return nil
}
